package form

import (
	"strings"

	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// Find возвращает поле формы по идентификатору.
func Find(fields []Field, id string) (Field, bool) {
	for _, f := range fields {
		if f.base().ID == id {
			return f, true
		}
	}
	return nil, false
}

// Conform нормализует значения полей с маской на месте. values связывает
// идентификатор поля с указателем на значение. Пустые значения пропускаются,
// обязательность проверяет валидация сущности.
func Conform(fields []Field, values map[string]*string) validation.Errors {
	errs := validation.Errors{}
	for id, v := range values {
		f, ok := Find(fields, id)
		if !ok {
			continue
		}
		m, ok := f.(Masked)
		if !ok || strings.TrimSpace(*v) == "" {
			continue
		}
		normalized, ok := m.Normalize(*v)
		if !ok {
			errs.Add(id, "validation.mask")
			continue
		}
		*v = normalized
	}
	return errs
}
