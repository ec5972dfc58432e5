// Package i18n загружает языковые пакеты ru/en/zh и определяет язык запроса.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/language"

	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

//go:embed locales/*/*.json
var localesFS embed.FS

const (
	// CookieName хранит последний выбранный язык.
	CookieName = "locale"
	// Default используется, когда язык не удалось определить.
	Default = "ru"
)

// Supported перечисляет поддерживаемые языки; первый используется по умолчанию.
var Supported = []string{"ru", "en", "zh"}

var matcher = language.NewMatcher([]language.Tag{
	language.Russian,
	language.English,
	language.Chinese,
})

// Bundle хранит переводы: язык -> пространство имён -> ключ -> строка.
type Bundle struct {
	messages map[string]map[string]map[string]string
}

// Load читает встроенные языковые пакеты.
func Load() (*Bundle, error) {
	b := &Bundle{messages: make(map[string]map[string]map[string]string)}

	err := fs.WalkDir(localesFS, "locales", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".json" {
			return nil
		}

		data, err := localesFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		var ns map[string]string
		if err := json.Unmarshal(data, &ns); err != nil {
			return fmt.Errorf("decode %s: %w", p, err)
		}

		lang := path.Base(path.Dir(p))
		name := strings.TrimSuffix(path.Base(p), ".json")
		if b.messages[lang] == nil {
			b.messages[lang] = make(map[string]map[string]string)
		}
		b.messages[lang][name] = ns
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	return b, nil
}

// Lookup ищет перевод ключа вида "namespace.key". Если перевода нет
// в запрошенном языке, используется язык по умолчанию.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	ns, rest, ok := strings.Cut(key, ".")
	if !ok {
		return "", false
	}

	for _, l := range []string{lang, Default} {
		if msg, ok := b.messages[l][ns][rest]; ok {
			return msg, true
		}
	}
	return "", false
}

// T возвращает перевод или сам ключ.
func (b *Bundle) T(lang, key string) string {
	if msg, ok := b.Lookup(lang, key); ok {
		return msg
	}
	return key
}

// Label возвращает подпись статуса. Для неизвестных кодов возвращается "Неизвестно" и аналоги.
func (b *Bundle) Label(lang string, s model.Labeled) string {
	return b.T(lang, s.LabelKey())
}

// Errors переводит сообщения, которые являются ключами перевода.
// Остальные сообщения (например, код HTTP в serverError) остаются как есть.
func (b *Bundle) Errors(lang string, errs validation.Errors) validation.Errors {
	out := make(validation.Errors, len(errs))
	for field, msgs := range errs {
		for _, m := range msgs {
			if tr, ok := b.Lookup(lang, m); ok {
				m = tr
			}
			out.Add(field, m)
		}
	}
	return out
}

// IsSupported сообщает, поддерживается ли язык.
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// FromPath возвращает язык из первого сегмента пути, если он поддерживается.
func FromPath(p string) (string, bool) {
	seg, _, _ := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if IsSupported(seg) {
		return seg, true
	}
	return "", false
}

// Resolve определяет язык запроса: сегмент пути, cookie, Accept-Language, язык по умолчанию.
func Resolve(r *http.Request) string {
	if lang, ok := FromPath(r.URL.Path); ok {
		return lang
	}

	if c, err := r.Cookie(CookieName); err == nil && IsSupported(c.Value) {
		return c.Value
	}

	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return Supported[idx]
			}
		}
	}

	return Default
}
