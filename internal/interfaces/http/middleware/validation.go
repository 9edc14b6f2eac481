package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// customerRefPattern constrains customer references to a URL- and
// log-safe alphabet. References flow into list queries and structured
// logs verbatim.
var customerRefPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// SetupValidator configures the binding validator: error messages use
// JSON/form tag names, and the customer_ref tag is available on request
// structs.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("customer_ref", func(fl validator.FieldLevel) bool {
		return customerRefPattern.MatchString(fl.Field().String())
	})
}
