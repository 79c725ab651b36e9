package gateway

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validationMessages = map[string]string{
	"required":        "must not be null",
	"notblank":        "must not be blank",
	"email":           "must be a well-formed email address",
	"future":          "must be a future date",
	"presentorfuture": "must be a date in the present or in the future",
}

// RegisterValidations installs the custom rules on v and reports fields
// by their JSON names.
func RegisterValidations(v *validator.Validate, now func() time.Time) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fieldTime(fl)
		return ok && t.After(now())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("presentorfuture", func(fl validator.FieldLevel) bool {
		t, ok := fieldTime(fl)
		// Wire timestamps carry whole seconds.
		return ok && !t.Before(now().Truncate(time.Second))
	})
}

func registerBindingValidations(now func() time.Time) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return RegisterValidations(v, now)
}

func fieldTime(fl validator.FieldLevel) (time.Time, bool) {
	switch v := fl.Field().Interface().(type) {
	case models.DateTime:
		return v.Time(), true
	case time.Time:
		return v, true
	default:
		return time.Time{}, false
	}
}

// fieldErrors converts validator failures into a field to message map.
// ok is false when err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, found := validationMessages[fe.Tag()]
		if !found {
			msg = "is invalid"
		}
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = msg
		}
	}
	return out, true
}
