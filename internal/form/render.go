package form

import (
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// Translator переводит ключи сообщений.
type Translator interface {
	T(lang, key string) string
}

// Descriptor задаёт JSON-представление поля для клиента.
type Descriptor struct {
	Type     Type   `json:"type"`
	ID       string `json:"id"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Invalid  bool   `json:"invalid"`
	Error    string `json:"error,omitempty"`
	Config   any    `json:"config"`
}

// Render строит дескрипторы полей на языке lang. Поле, для которого в errs
// есть сообщения, помечается invalid и получает первое из них.
func Render(tr Translator, lang string, fields []Field, errs validation.Errors) []Descriptor {
	out := make([]Descriptor, 0, len(fields))
	for _, f := range fields {
		b := f.base()
		d := Descriptor{
			Type:     f.kind(),
			ID:       b.ID,
			Label:    tr.T(lang, b.labelKey()),
			Required: b.Required,
			Config:   f.config(),
		}
		if msg := errs.First(b.ID); msg != "" {
			d.Invalid = true
			d.Error = tr.T(lang, msg)
		}
		out = append(out, d)
	}
	return out
}
