package sanitizer

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrMissingField = errors.New("sanitizer: required template field is missing")
	ErrInvalidField = errors.New("sanitizer: template field failed validation")
)

// FieldType describes the expected type of a single template field. The
// implementations form a closed set so the coercion switch in TemplateData
// stays exhaustive.
type FieldType interface {
	fieldType()
}

type (
	// StringField is free text, sanitized through ForEmail with the given
	// bound. Zero MaxLength means unbounded.
	StringField struct {
		MaxLength int
		Optional  bool
	}

	// EmailField must pass IsValidEmail and is normalized for output.
	EmailField struct{ Optional bool }

	// URLField must pass IsValidURL.
	URLField struct{ Optional bool }

	// NumberField accepts any integer or float value.
	NumberField struct{ Optional bool }

	// BoolField accepts a boolean value.
	BoolField struct{ Optional bool }

	// DateField accepts a time.Time and renders it in a fixed human-readable
	// format.
	DateField struct {
		Format   string // defaults to "Jan 2, 2006"
		Optional bool
	}
)

func (StringField) fieldType() {}
func (EmailField) fieldType()  {}
func (URLField) fieldType()    {}
func (NumberField) fieldType() {}
func (BoolField) fieldType()   {}
func (DateField) fieldType()   {}

// TemplateData validates and coerces a map of template values against a
// caller-supplied schema, returning string values safe to interpolate into
// email markup.
//
// A nil value for an optional field passes through as an absent key. A
// missing or nil required field, or an email/URL that fails format
// validation, aborts with an error naming the field. This is the one place
// sanitization surfaces structural failure instead of silently coercing,
// because template rendering downstream assumes well-typed data.
func TemplateData(data map[string]any, schema map[string]FieldType) (map[string]string, error) {
	out := make(map[string]string, len(schema))

	for field, ft := range schema {
		value, ok := data[field]
		if !ok || value == nil {
			if isOptional(ft) {
				continue
			}
			return nil, fmt.Errorf("%w: %q", ErrMissingField, field)
		}

		coerced, err := coerceField(field, value, ft)
		if err != nil {
			return nil, err
		}
		out[field] = coerced
	}

	return out, nil
}

func isOptional(ft FieldType) bool {
	switch t := ft.(type) {
	case StringField:
		return t.Optional
	case EmailField:
		return t.Optional
	case URLField:
		return t.Optional
	case NumberField:
		return t.Optional
	case BoolField:
		return t.Optional
	case DateField:
		return t.Optional
	}
	return false
}

func coerceField(field string, value any, ft FieldType) (string, error) {
	switch t := ft.(type) {
	case StringField:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("%w: %q is not a string", ErrInvalidField, field)
		}
		return ForEmail(s, Options{MaxLength: t.MaxLength}), nil

	case EmailField:
		s, ok := value.(string)
		if !ok || !IsValidEmail(s) {
			return "", fmt.Errorf("%w: %q is not a valid email address", ErrInvalidField, field)
		}
		return NormalizeEmail(s), nil

	case URLField:
		s, ok := value.(string)
		if !ok || !IsValidURL(s) {
			return "", fmt.Errorf("%w: %q is not a valid URL", ErrInvalidField, field)
		}
		return s, nil

	case NumberField:
		switch n := value.(type) {
		case int:
			return strconv.Itoa(n), nil
		case int32:
			return strconv.FormatInt(int64(n), 10), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		case float32:
			return strconv.FormatFloat(float64(n), 'f', -1, 32), nil
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		}
		return "", fmt.Errorf("%w: %q is not a number", ErrInvalidField, field)

	case BoolField:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("%w: %q is not a boolean", ErrInvalidField, field)
		}
		return strconv.FormatBool(b), nil

	case DateField:
		d, ok := value.(time.Time)
		if !ok {
			return "", fmt.Errorf("%w: %q is not a date", ErrInvalidField, field)
		}
		format := t.Format
		if format == "" {
			format = "Jan 2, 2006"
		}
		return d.Format(format), nil
	}

	return "", fmt.Errorf("%w: %q has an unknown field type", ErrInvalidField, field)
}
