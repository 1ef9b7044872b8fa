package expr

import (
	"math"

	"github.com/juju/errors"
)

/**
 * builtins is the complete function table. Calls to anything else fail
 * at compile time, the table is never extended at runtime.
 */
var builtins = map[string]builtinFunc{
	"abs":   builtinAbs,
	"min":   builtinMin,
	"max":   builtinMax,
	"round": builtinRound,
	"len":   builtinLen,
}

type builtinFunc func(args []any) (any, error)

func builtinAbs(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("expects 1 argument, got %d", len(args))
	}
	f, ok := numericValue(args[0])
	if !ok {
		return nil, errors.Errorf("expects a number, got %s", typeName(args[0]))
	}
	return math.Abs(f), nil
}

func builtinMin(args []any) (any, error) {
	return pickExtreme(args, true)
}

func builtinMax(args []any) (any, error) {
	return pickExtreme(args, false)
}

func pickExtreme(args []any, min bool) (any, error) {
	if len(args) == 0 {
		return nil, errors.Errorf("expects at least 1 argument")
	}
	best := args[0]
	for _, arg := range args[1:] {
		op := tokGt
		if min {
			op = tokLt
		}
		less, err := compareValues(op, arg, best)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if less {
			best = arg
		}
	}
	return best, nil
}

func builtinRound(args []any) (any, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, errors.Errorf("expects 1 or 2 arguments, got %d", len(args))
	}
	f, ok := numericValue(args[0])
	if !ok {
		return nil, errors.Errorf("expects a number, got %s", typeName(args[0]))
	}
	if len(args) == 1 {
		return math.Round(f), nil
	}
	digits, ok := numericValue(args[1])
	if !ok {
		return nil, errors.Errorf("digit count must be a number, got %s", typeName(args[1]))
	}
	shift := math.Pow(10, math.Trunc(digits))
	return math.Round(f*shift) / shift, nil
}

func builtinLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("expects 1 argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, errors.Errorf("expects a string, got %s", typeName(args[0]))
	}
	return float64(len(s)), nil
}
