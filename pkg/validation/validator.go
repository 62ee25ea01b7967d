package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-library-api/pkg/apperror"
)

// AnyOf requires at least one of Fields (Go field names) of Type to be set.
// It backs patch bodies such as "id plus at least one other field".
type AnyOf struct {
	Type   any
	Fields []string
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
// - Rejects unknown JSON fields.
// - Registers the given AnyOf rules as struct-level validations.
func Init(rules ...AnyOf) {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
		// Aliases for common semantics
		v.RegisterAlias("pwd", "min=8") // password minimum length
		_ = v.RegisterValidation("login", validLogin)
		v.RegisterAlias("isodate", "datetime=2006-01-02")
		for _, r := range rules {
			registerAnyOf(v, r)
		}
	}
}

// validLogin accepts 3-64 printable ASCII characters without whitespace.
func validLogin(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 3 || len(s) > 64 {
		return false
	}
	for _, r := range s {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}

func jsonName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "" {
		tag = fld.Tag.Get("form")
	}
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func registerAnyOf(v *validator.Validate, r AnyOf) {
	t := reflect.TypeOf(r.Type)
	names := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if sf, ok := t.FieldByName(f); ok {
			if n := jsonName(sf); n != "" {
				names = append(names, n)
				continue
			}
		}
		names = append(names, f)
	}
	param := strings.Join(names, " ")
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cur := sl.Current()
		for _, f := range r.Fields {
			if fv := cur.FieldByName(f); fv.IsValid() && !fv.IsZero() {
				return
			}
		}
		sl.ReportError(cur.Interface(), "body", "body", "anyof", param)
	}, r.Type)
}

// ValidateBody runs struct validation on payload and returns an InvalidBody
// error describing the first violated rule.
func ValidateBody(payload any) error {
	if err := binding.Validator.ValidateStruct(payload); err != nil {
		return InvalidBody(err)
	}
	return nil
}

// InvalidBody converts a binding or validation error into an apperror with
// the first violation as message.
func InvalidBody(err error) error {
	if err == nil {
		return nil
	}
	return apperror.Wrap(apperror.KindInvalidBody, "Invalid form data: "+FirstViolation(err), err)
}

// FirstViolation describes the first problem found in err.
func FirstViolation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field() + " " + formatFieldError(fe)
	}
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	switch {
	case errors.As(err, &ute):
		return ute.Field + " has the wrong type"
	case errors.As(err, &se):
		return "invalid json"
	}
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		return "unknown field " + strings.TrimPrefix(msg, "json: unknown field ")
	}
	if err.Error() == "EOF" {
		return "body is empty"
	}
	return "invalid payload"
}

// ValidateFileExtension checks the declared content type against allowed
// image kinds such as "jpeg" or "png".
func ValidateFileExtension(contentType string, allowed []string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, kind := range allowed {
		if ct == "image/"+strings.ToLower(kind) {
			return nil
		}
	}
	exts := make([]string, 0, len(allowed))
	for _, kind := range allowed {
		exts = append(exts, "."+strings.ToUpper(kind))
	}
	return apperror.New(apperror.KindUnsupportedMediaType,
		fmt.Sprintf("Incorrect file extension. Supported file extensions: %s", strings.Join(exts, ", ")))
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gt":
		return "must be greater than " + param
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must match datetime format: " + param
	case "pwd":
		return "min length 8"
	case "login":
		return "must be 3-64 printable characters without spaces"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "anyof":
		return "must contain at least one of: " + strings.Join(strings.Fields(param), ", ")
	}
	if param != "" {
		return fmt.Sprintf("failed on '%s=%s'", fe.Tag(), param)
	}
	return fmt.Sprintf("failed on '%s'", fe.Tag())
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
