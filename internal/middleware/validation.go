package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/crickettrack/cricket-api/internal/model"
)

// RegisterValidators installs domain validators on gin's binding engine.
// Called once at router construction.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	if err := v.RegisterValidation("alerttype", validAlertType); err != nil {
		panic(err)
	}

	// Report fields by their json name, not the Go struct field.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func validAlertType(fl validator.FieldLevel) bool {
	return model.ValidAlertType(model.AlertType(fl.Field().String()))
}
