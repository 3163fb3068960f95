// Package validator wires go-playground validation into Gin's binding
// engine, with English translations and a custom rule for join codes.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/classgrid/classgrid-backend/internal/joincode"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// Setup registers the validator, translations and the joincode rule on
// Gin's binding engine. Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Error messages name fields by their JSON tag.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	// joincode: a 6- or 8-character code over the issuing alphabet.
	// Case-insensitive; handlers uppercase before lookup.
	v.RegisterValidation("joincode", func(fl govalidator.FieldLevel) bool {
		return IsJoinCode(fl.Field().String())
	})
	v.RegisterTranslation("joincode", trans,
		func(ut ut.Translator) error {
			return ut.Add("joincode", "{0} must be a valid join code", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T("joincode", fe.Field())
			return t
		},
	)
}

// IsJoinCode reports whether s has the shape of an issued join code.
func IsJoinCode(s string) bool {
	if len(s) != joincode.ClientCodeLength && len(s) != joincode.ServerCodeLength {
		return false
	}
	for _, r := range strings.ToUpper(s) {
		if !strings.ContainsRune(joincode.DefaultAlphabet, r) {
			return false
		}
	}
	return true
}

// TranslateErrors converts a binding error into a field → message map.
// Non-validation errors (e.g. JSON syntax) land under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
