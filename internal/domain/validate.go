package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(Date); ok {
				return d.Time
			}
			return nil
		}, Date{})
		validate = v
	})
	return validate
}

func fieldErrors(prefix string, err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Path: prefix, Rule: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Field()
		if prefix != "" {
			path = prefix + "." + path
		}
		out = append(out, FieldError{Path: path, Rule: fe.Tag()})
	}
	return out
}

// Validate checks every record of the form and reports all failing fields at
// once, in category order.
func (f PassengerForm) Validate() error {
	v := validatorInstance()
	var fields []FieldError
	for _, spec := range Categories {
		for i, rec := range spec.Records(f) {
			if err := v.Struct(rec); err != nil {
				fields = append(fields, fieldErrors(fmt.Sprintf("%s[%d]", spec.FormKey, i), err)...)
			}
		}
	}
	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func (c ContactInfo) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return ValidationError{Fields: fieldErrors("contact", err)}
	}
	return nil
}
