package validation

import (
	"reflect"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"reservation-system/pkg/types"
)

// registerNullTypes lets tags such as omitempty,email look inside optional
// wrappers.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok && val.Valid {
			return val.String
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(types.Date); ok && !val.Time.IsZero() {
			return val.String()
		}
		return nil
	}, types.Date{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(types.NullDate); ok && val.Valid {
			return val.Date.String()
		}
		return nil
	}, types.NullDate{})
}
