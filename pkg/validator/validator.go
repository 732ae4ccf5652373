package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// FieldError is a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// usernamePattern is the character rule for account usernames
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

var validate *val.Validate

var messages = map[string]string{
	"required": "{field} is required",
	"max":      "{field} must be at most {param} characters",
	"min":      "{field} must be at least {param} characters",
	"email":    "enter a valid email",
	"numeric":  "{field} must be a number",
	"oneof":    "{field} must be one of {param}",
	"username": "Invalid username",
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("username", func(fl val.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Struct validates v against its `validate` tags and returns one message per failing field
func Struct(v interface{}) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve val.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe.Field(), fe.Tag(), fe.Param())})
	}
	return out
}

// Var reports whether value satisfies a single tag expression
func Var(value interface{}, tag string) bool {
	return validate.Var(value, tag) == nil
}

func message(field, tag, param string) string {
	tpl, ok := messages[tag]
	if !ok {
		tpl = "{field} is invalid"
	}
	tpl = strings.ReplaceAll(tpl, "{field}", field)
	return strings.ReplaceAll(tpl, "{param}", param)
}
