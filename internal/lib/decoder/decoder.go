package decoder

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/gorilla/schema"

	"watchlist/proj/internal/lib/validator"
)

// URLDecoder decodes url.Values (query strings) into structs tagged with `schema:"name"`.
// Pointer fields stay nil when their key is absent.
type URLDecoder struct {
	dec *schema.Decoder
}

func New() *URLDecoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(false)
	dec.ZeroEmpty(false)
	return &URLDecoder{dec: dec}
}

func (d *URLDecoder) IgnoreUnknownKeys(i bool) {
	d.dec.IgnoreUnknownKeys(i)
}

// Decode fills dst from src. Conversion failures and unknown keys are
// reported as a *validator.ValidationError keyed by query parameter.
func (d *URLDecoder) Decode(dst any, src map[string][]string) error {
	err := d.dec.Decode(dst, src)
	if err == nil {
		return nil
	}
	var multiErr schema.MultiError
	if !errors.As(err, &multiErr) {
		return err
	}
	keys := make([]string, 0, len(multiErr))
	for key := range multiErr {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var vErr *validator.ValidationError
	for _, key := range keys {
		msg := describe(multiErr[key])
		if vErr == nil {
			vErr = validator.NewFieldError(key, msg)
			continue
		}
		vErr.Errors[key] = msg
	}
	return vErr
}

func describe(err error) string {
	var convErr schema.ConversionError
	var unknownErr schema.UnknownKeyError
	switch {
	case errors.As(err, &convErr):
		if convErr.Type == nil {
			return "This field is invalid"
		}
		typ := convErr.Type
		for typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		switch typ.Kind() {
		case reflect.Bool:
			return "Value must be a boolean"
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return "Value must be an integer"
		default:
			return fmt.Sprintf("Value must be a valid %s", typ)
		}
	case errors.As(err, &unknownErr):
		return "Unknown parameter"
	default:
		return "This field is invalid"
	}
}
