// Package validation содержит декларативные правила проверки полей и единый формат ошибок.
package validation

import (
	"sort"
	"strings"
)

// ServerErrorKey зарезервирован для ошибок, не относящихся к конкретному полю.
const ServerErrorKey = "serverError"

// Errors отображает имя поля в список сообщений об ошибках.
type Errors map[string][]string

// Add добавляет сообщение к полю.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge переносит все сообщения из other.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// First возвращает первое сообщение для поля или пустую строку.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has сообщает, есть ли ошибки у поля.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Empty сообщает об отсутствии ошибок.
func (e Errors) Empty() bool {
	return len(e) == 0
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], "; "))
	}
	return strings.Join(parts, ", ")
}

// ServerError строит ошибку транспортного уровня.
func ServerError(message string) Errors {
	return Errors{ServerErrorKey: {message}}
}

// Rule связывает предикат с сообщением, которое выводится при его нарушении.
type Rule struct {
	Check   func() bool
	Message string
}

// Rules описывает набор правил по полям формы.
type Rules map[string][]Rule

// Run проверяет все правила и собирает все нарушения, не останавливаясь на первом.
func (r Rules) Run() Errors {
	errs := Errors{}
	for field, rules := range r {
		for _, rule := range rules {
			if !rule.Check() {
				errs.Add(field, rule.Message)
			}
		}
	}
	return errs
}

// Required проверяет, что строка не пуста после обрезки пробелов.
func Required(v, message string) Rule {
	return Rule{
		Check:   func() bool { return strings.TrimSpace(v) != "" },
		Message: message,
	}
}

// MaxLen проверяет длину строки в символах.
func MaxLen(v string, n int, message string) Rule {
	return Rule{
		Check:   func() bool { return len([]rune(v)) <= n },
		Message: message,
	}
}

// Positive проверяет, что идентификатор или количество больше нуля.
func Positive(v int64, message string) Rule {
	return Rule{
		Check:   func() bool { return v > 0 },
		Message: message,
	}
}

// Check оборачивает произвольный предикат.
func Check(ok bool, message string) Rule {
	return Rule{
		Check:   func() bool { return ok },
		Message: message,
	}
}
