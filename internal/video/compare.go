package video

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// kind ranks value types so that values of different types still order
// deterministically.
func kind(v Value) int {
	switch v.(type) {
	case bool:
		return 0
	case int, int64, float64:
		return 1
	case time.Time:
		return 2
	case string:
		return 3
	case nil:
		return 5
	default:
		return 4
	}
}

func asFloat(v Value) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// CompareValues orders two values. nil sorts after everything else.
func CompareValues(a, b Value) int {
	ka, kb := kind(a), kind(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch x := a.(type) {
	case nil:
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int, int64, float64:
		if xi, ok := a.(int); ok {
			if yi, ok := b.(int); ok {
				return cmp.Compare(xi, yi)
			}
		}
		if xi, ok := a.(int64); ok {
			if yi, ok := b.(int64); ok {
				return cmp.Compare(xi, yi)
			}
		}
		return cmp.Compare(asFloat(a), asFloat(b))
	case time.Time:
		return x.Compare(b.(time.Time))
	case string:
		return strings.Compare(x, b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// CompareValueLists orders value lists lexicographically; a shorter prefix
// sorts first.
func CompareValueLists(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// FormatValue renders a value the way it is printed to users.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
