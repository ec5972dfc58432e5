package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("s10", func(fl validator.FieldLevel) bool {
			return IsValidTrackingNumber(fl.Field().String())
		})
	})
	return validate
}

// Struct проверяет структуру по тегам validate и переводит нарушения
// в формат Errors. Ключ поля строится по json-именам, вложенные поля
// записываются через точку: "goods[0].name". Сообщением служит ключ перевода
// вида "validation.<tag>".
func Struct(s any) Errors {
	errs := Errors{}

	err := instance().Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(ServerErrorKey, err.Error())
		return errs
	}

	for _, fe := range verrs {
		errs.Add(fieldPath(fe.Namespace()), "validation."+fe.Tag())
	}
	return errs
}

func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
