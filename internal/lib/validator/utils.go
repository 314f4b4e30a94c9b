package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	govalidator "github.com/go-playground/validator/v10"
)

// ValidationError reports every failed field of a payload. Error() returns the
// first violated constraint in declaration order.
type ValidationError struct {
	Errors map[string]string
	first  string
}

func (e *ValidationError) Error() string {
	return e.first
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{
		Errors: map[string]string{field: msg},
		first:  field + ": " + msg,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}

// New returns a validator configured the way all schemas of the app expect.
func New() *govalidator.Validate {
	return govalidator.New(govalidator.WithRequiredStructEnabled())
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := structType(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	fieldName = camelToSnake(origFieldName)
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if jsonName := strings.Split(tag, ",")[0]; jsonName != "" {
			fieldName = jsonName
		}
	}
	return
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) *ValidationError {
	processedErrors := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, e := range errs {
		name := getFieldName(obj, e.StructField())
		msg := GetErrorMsgForField(obj, e)
		if processedErrors.first == "" {
			processedErrors.first = name + ": " + msg
		}
		processedErrors.Errors[name] = msg
	}
	return processedErrors
}

// ValidateStruct runs the struct tags of obj and returns nil or a *ValidationError.
func ValidateStruct(validator *govalidator.Validate, obj any) error {
	err := validator.Struct(obj)
	if err == nil {
		return nil
	}
	var errs govalidator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	return ProcessValidationErrors(obj, errs)
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := structType(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		isString := err.Kind() == reflect.String
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			if isString {
				errorMsg = fmt.Sprintf("The maximum length is %s characters", err.Param())
			} else {
				errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
			}
		case "min":
			if isString {
				errorMsg = fmt.Sprintf("The minimum length is %s characters", err.Param())
			} else {
				errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
			}
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "lt":
			errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
		case "gt":
			errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "len":
			errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
		case "email":
			errorMsg = "Value must be a valid email address"
		case "uuid", "uuid4":
			errorMsg = "Value must be a valid UUID"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}
