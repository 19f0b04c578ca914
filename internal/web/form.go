package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json/form field names, not go field names
	v.RegisterTagNameFunc(fieldName)
	return v
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Bind fills the form struct pointer from a JSON or an urlencoded/multipart body.
// Form fields are matched by the json tag name; string fields are trimmed.
func Bind(r *http.Request, form any) error {
	rv := reflect.ValueOf(form)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return errors.New("form must be a pointer to a struct")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(form); err != nil {
			return fmt.Errorf("decode json form: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		elem := rv.Elem()
		for i := 0; i < elem.NumField(); i++ {
			field := elem.Type().Field(i)
			name := fieldName(field)
			if name == "" || field.Type.Kind() != reflect.String {
				continue
			}
			elem.Field(i).SetString(r.PostFormValue(name))
		}
	}

	trimStrings(rv.Elem())
	return nil
}

func trimStrings(elem reflect.Value) {
	for i := 0; i < elem.NumField(); i++ {
		f := elem.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// Validate returns field errors keyed by field name, or nil when the form is valid
func Validate(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "invalid form"}
	}

	fieldErrors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fieldErrors[fe.Field()] = fieldErrorMessage(fe)
	}
	return fieldErrors
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	default:
		return "invalid value"
	}
}

// FormData is the page data of a rendered form
func FormData(form any, fieldErrors map[string]string) map[string]any {
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	return map[string]any{
		"form":   form,
		"errors": fieldErrors,
	}
}
