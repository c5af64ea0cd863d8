package database

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"video-library/internal/video"
)

var (
	// ErrNotFound is returned for unknown video ids and metadata keys.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateVideo is returned when a filename is already in the
	// collection.
	ErrDuplicateVideo = errors.New("duplicate video")
	// ErrUnknownProperty is returned for property names without a type.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrInvalidValue is returned for property values that do not fit
	// their type.
	ErrInvalidValue = errors.New("invalid property value")
)

// ValueType is the type of a property's values.
type ValueType string

const (
	TypeString ValueType = "str"
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeBool   ValueType = "bool"
)

// ParseValueType validates a type name.
func ParseValueType(name string) (ValueType, error) {
	switch t := ValueType(name); t {
	case TypeString, TypeInt, TypeFloat, TypeBool:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown property type %q", ErrInvalidValue, name)
	}
}

// Zero returns the default used when a single-valued property type is
// created without one.
func (t ValueType) Zero() video.Value {
	switch t {
	case TypeInt:
		return 0
	case TypeFloat:
		return 0.0
	case TypeBool:
		return false
	default:
		return ""
	}
}

// Convert coerces v to t. JSON numbers arrive as float64 and are accepted
// for int properties when they are whole.
func (t ValueType) Convert(v video.Value) (video.Value, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) && !math.IsInf(x, 0) {
				return int(x), nil
			}
		case string:
			if n, err := strconv.Atoi(x); err == nil {
				return n, nil
			}
		}
	case TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			if f, err := strconv.ParseFloat(x, 64); err == nil {
				return f, nil
			}
		}
	case TypeBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			if b, err := strconv.ParseBool(x); err == nil {
				return b, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %v (%T) is not a %s", ErrInvalidValue, v, v, t)
}

// format renders a converted value for storage.
func (t ValueType) format(v video.Value) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// parse reads a stored value back.
func (t ValueType) parse(s string) (video.Value, error) {
	return t.Convert(s)
}

// PropType describes a user-defined property.
type PropType struct {
	Name     string      `json:"name"`
	Type     ValueType   `json:"type"`
	Multiple bool        `json:"multiple"`
	Default  video.Value `json:"default"`
}
