package expr

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

/**
 * CastValue converts a raw dataset value to the rule's declared
 * variable type. A value that cannot be converted comes back nil, the
 * same shape as a blank cell, callers tell the two apart by checking
 * the raw value. Unrecognized type names pass the value through.
 */
func CastValue(value any, variableType string) any {
	if value == nil {
		return nil
	}
	switch strings.ToLower(variableType) {
	case "float", "double", "number":
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil
		}
		return f

	case "int", "integer":
		// integers travel as truncated floats, 12.7 declared int is 12
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil
		}
		return math.Trunc(f)

	case "str", "string", "text":
		return cast.ToString(value)

	case "bool", "boolean":
		return castBool(value)
	}
	return value
}

func castBool(value any) any {
	switch t := value.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true
		case "false":
			return false
		}
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return nil
		}
		return f != 0
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil
	}
	return f != 0
}
