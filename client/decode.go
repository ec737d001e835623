package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/tidwall/gjson"

	"github.com/adamwoolhether/network/apierror"
)

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New()
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	err := en_translations.RegisterDefaultTranslations(validate, translator)
	if err != nil {
		panic(err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})
}

// FieldError describes a decoded field that failed its `validate` tag.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors is the cause wrapped by a decoding error when validation fails.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	d, err := json.Marshal(fe)
	if err != nil {
		return err.Error()
	}
	return string(d)
}

var (
	errTrailingData = errors.New("decoding body: data after top-level value")
	errNullBody     = errors.New("decoding body: null for non-nullable type")
)

// decode unmarshals body into dest and validates the result.
func (c *Client) decode(body []byte, dest any) error {
	d := json.NewDecoder(bytes.NewReader(body))
	if c.useJSONNumber {
		d.UseNumber()
	}

	if err := d.Decode(dest); err != nil {
		return apierror.DecodingError(fmt.Errorf("decoding body: %w", err))
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return apierror.DecodingError(errTrailingData)
	}
	if gjson.ParseBytes(body).Type == gjson.Null && !nullable(dest) {
		return apierror.DecodingError(errNullBody)
	}

	if !c.validate {
		return nil
	}

	if err := validateValue(reflect.ValueOf(dest), ""); err != nil {
		return apierror.DecodingError(fmt.Errorf("validating body: %w", err))
	}

	return nil
}

// nullable reports whether JSON null is a meaningful value for the
// element dest points to.
func nullable(dest any) bool {
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Pointer {
		return true
	}

	switch t.Elem().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}

	return false
}

// validateValue checks every struct reachable through pointers, slices,
// arrays and maps of v. prefix names the element for nested values.
func validateValue(v reflect.Value, prefix string) error {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return validateStruct(v.Interface(), prefix)
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := validateValue(v.Index(i), fmt.Sprintf("%s[%d]", prefix, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := validateValue(iter.Value(), fmt.Sprintf("%s[%v]", prefix, iter.Key())); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateStruct(val any, prefix string) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}

	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}

	if prefix != "" {
		prefix += "."
	}

	var fields FieldErrors
	for _, verror := range verrors {
		ns := verror.Namespace()
		field := FieldError{
			Field: prefix + ns[strings.Index(ns, ".")+1:],
			Err:   verror.Translate(translator),
		}
		fields = append(fields, field)
	}

	return fields
}

// extractMessage returns the first non-empty string found in body at paths.
func extractMessage(body []byte, paths []string) string {
	if len(paths) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	for _, p := range paths {
		r := gjson.GetBytes(body, p)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}

	return ""
}
