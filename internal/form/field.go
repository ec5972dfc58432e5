// Package form описывает поля ввода форм портала и отдаёт их в виде
// JSON-дескрипторов с учётом языка и ошибок валидации.
package form

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Type задаёт тег варианта поля в дескрипторе.
type Type string

const (
	TypeText     Type = "text"
	TypeNumeric  Type = "numeric"
	TypeMasked   Type = "masked"
	TypeMoney    Type = "money"
	TypeFile     Type = "file"
	TypeCheckbox Type = "checkbox"
	TypeDropdown Type = "dropdown"
)

// Field объединяет варианты полей: Text, Numeric, Masked, Money, File, Checkbox, Dropdown.
// Набор вариантов закрыт.
type Field interface {
	base() Base
	kind() Type
	config() any
}

// Base содержит общую часть всех полей. ID совпадает с ключом ошибки валидации,
// Label задаёт ключ перевода, пустой Label означает "forms.<ID>".
type Base struct {
	ID       string
	Label    string
	Required bool
}

func (b Base) labelKey() string {
	if b.Label != "" {
		return b.Label
	}
	return "forms." + b.ID
}

type Text struct {
	Base
	MaxLength int
	Multiline bool
}

type Numeric struct {
	Base
	Min  *decimal.Decimal
	Max  *decimal.Decimal
	Step decimal.Decimal
}

// Masked принимает значение по фиксированному шаблону: 9 означает цифру,
// a означает букву, * означает любой символ, прочие символы литеральны.
// Prefix остаётся в нормализованном значении: для телефона это "+7".
type Masked struct {
	Base
	Mask   string
	Prefix string
}

// Money принимает денежную сумму в валюте Currency с точностью Scale знаков.
type Money struct {
	Base
	Currency string
	Scale    int32
}

type File struct {
	Base
	Accept   []string
	Multiple bool
	MaxSize  int64
}

type Checkbox struct {
	Base
	Default bool
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Dropdown предлагает выбор из списка. Nullable разрешает очистить значение,
// Searchable включает поиск по подписи вместо простого переключения.
type Dropdown struct {
	Base
	Options    []Option
	Nullable   bool
	Searchable bool
}

func (f Text) base() Base     { return f.Base }
func (f Numeric) base() Base  { return f.Base }
func (f Masked) base() Base   { return f.Base }
func (f Money) base() Base    { return f.Base }
func (f File) base() Base     { return f.Base }
func (f Checkbox) base() Base { return f.Base }
func (f Dropdown) base() Base { return f.Base }

func (Text) kind() Type     { return TypeText }
func (Numeric) kind() Type  { return TypeNumeric }
func (Masked) kind() Type   { return TypeMasked }
func (Money) kind() Type    { return TypeMoney }
func (File) kind() Type     { return TypeFile }
func (Checkbox) kind() Type { return TypeCheckbox }
func (Dropdown) kind() Type { return TypeDropdown }

func (f Text) config() any {
	return struct {
		MaxLength int  `json:"maxLength,omitempty"`
		Multiline bool `json:"multiline,omitempty"`
	}{f.MaxLength, f.Multiline}
}

func (f Numeric) config() any {
	return struct {
		Min  *decimal.Decimal `json:"min,omitempty"`
		Max  *decimal.Decimal `json:"max,omitempty"`
		Step decimal.Decimal  `json:"step"`
	}{f.Min, f.Max, f.Step}
}

func (f Masked) config() any {
	return struct {
		Mask string `json:"mask"`
	}{f.Mask}
}

func (f Money) config() any {
	return struct {
		Currency string `json:"currency"`
		Scale    int32  `json:"scale"`
	}{f.Currency, f.Scale}
}

func (f File) config() any {
	return struct {
		Accept   []string `json:"accept,omitempty"`
		Multiple bool     `json:"multiple,omitempty"`
		MaxSize  int64    `json:"maxSize,omitempty"`
	}{f.Accept, f.Multiple, f.MaxSize}
}

func (f Checkbox) config() any {
	return struct {
		Default bool `json:"default"`
	}{f.Default}
}

func (f Dropdown) config() any {
	return struct {
		Options    []Option `json:"options"`
		Nullable   bool     `json:"nullable"`
		Searchable bool     `json:"searchable"`
	}{f.Options, f.Nullable, f.Searchable}
}

// Matches проверяет значение по шаблону маски.
func (f Masked) Matches(value string) bool {
	mask, v := []rune(f.Mask), []rune(value)
	if len(mask) != len(v) {
		return false
	}
	for i, m := range mask {
		switch m {
		case '9':
			if !unicode.IsDigit(v[i]) {
				return false
			}
		case 'a':
			if !unicode.IsLetter(v[i]) {
				return false
			}
		case '*':
		default:
			if v[i] != m {
				return false
			}
		}
	}
	return true
}

// Unmask оставляет только символы, введённые пользователем.
func (f Masked) Unmask(value string) string {
	mask, v := []rune(f.Mask), []rune(value)
	var b strings.Builder
	for i, r := range v {
		if i < len(mask) && mask[i] != '9' && mask[i] != 'a' && mask[i] != '*' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize приводит значение к виду, который хранит бэкенд: оформленное по
// маске значение очищается, уже очищенное (с Prefix) принимается как есть.
func (f Masked) Normalize(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if f.Matches(value) {
		return f.Prefix + f.Unmask(value), true
	}
	rest, ok := strings.CutPrefix(value, f.Prefix)
	if ok && (Masked{Mask: f.slots()}).Matches(rest) {
		return value, true
	}
	return value, false
}

// slots возвращает маску без литералов.
func (f Masked) slots() string {
	var b strings.Builder
	for _, m := range f.Mask {
		if m == '9' || m == 'a' || m == '*' {
			b.WriteRune(m)
		}
	}
	return b.String()
}

var ErrTooPrecise = errors.New("amount has too many fractional digits")

// Parse разбирает сумму; допускается запятая в качестве разделителя.
func (f Money) Parse(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	value = strings.ReplaceAll(value, " ", "")

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Truncate(f.Scale)) {
		return decimal.Zero, ErrTooPrecise
	}
	return d, nil
}

// ParseJSON разбирает сумму из JSON: число или строку вида "1 249,90".
// Пустое значение и null дают ноль.
func (f Money) ParseJSON(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	value := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &value); err != nil {
			return decimal.Zero, err
		}
	}
	return f.Parse(value)
}

// Search отбирает варианты, подпись которых содержит query без учёта регистра.
// Пустой запрос возвращает все варианты.
func (f Dropdown) Search(query string) []Option {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return f.Options
	}
	out := make([]Option, 0, len(f.Options))
	for _, o := range f.Options {
		if strings.Contains(strings.ToLower(o.Label), query) {
			out = append(out, o)
		}
	}
	return out
}
