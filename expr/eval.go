package expr

import (
	"math"

	"github.com/juju/errors"
)

// Scope holds the values an expression may reference, keyed by
// identifier. Values are nil, bool, float64 or string.
type Scope map[string]any

// Eval runs the program against scope and returns the raw value.
func (p *Program) Eval(scope Scope) (any, error) {
	v, err := p.root.eval(scope)
	if err != nil {
		return nil, errors.Annotatef(err, "evaluate %q", p.source)
	}
	return v, nil
}

// EvalBool runs the program and reduces the result to a truth value:
// false for nil, zero and the empty string, true otherwise.
func (p *Program) EvalBool(scope Scope) (bool, error) {
	v, err := p.Eval(scope)
	if err != nil {
		return false, errors.Trace(err)
	}
	return truth(v), nil
}

type node interface {
	eval(scope Scope) (any, error)
}

type literalNode struct {
	value any
}

func (n *literalNode) eval(Scope) (any, error) {
	return n.value, nil
}

type identNode struct {
	name string
}

func (n *identNode) eval(scope Scope) (any, error) {
	v, exists := scope[n.name]
	if !exists {
		return nil, &UnresolvedError{Name: n.name}
	}
	return v, nil
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval(scope Scope) (any, error) {
	v, err := n.operand.eval(scope)
	if err != nil {
		return nil, errors.Trace(err)
	}
	switch n.op {
	case tokNot:
		return !truth(v), nil
	case tokMinus:
		f, ok := numericValue(v)
		if !ok {
			return nil, errors.Errorf("cannot negate %s", typeName(v))
		}
		return -f, nil
	}
	return nil, errors.Errorf("bad unary operator")
}

type binaryNode struct {
	op    tokenKind
	left  node
	right node
}

func (n *binaryNode) eval(scope Scope) (any, error) {
	left, err := n.left.eval(scope)
	if err != nil {
		return nil, errors.Trace(err)
	}

	// and/or short circuit on the left value
	switch n.op {
	case tokAnd:
		if !truth(left) {
			return false, nil
		}
		right, err := n.right.eval(scope)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return truth(right), nil
	case tokOr:
		if truth(left) {
			return true, nil
		}
		right, err := n.right.eval(scope)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return truth(right), nil
	}

	right, err := n.right.eval(scope)
	if err != nil {
		return nil, errors.Trace(err)
	}

	switch n.op {
	case tokEq, tokNe, tokLt, tokGt, tokLe, tokGe:
		return compareValues(n.op, left, right)
	case tokPlus, tokMinus, tokStar, tokSlash, tokPercent:
		return arithmetic(n.op, left, right)
	}
	return nil, errors.Errorf("bad binary operator")
}

type callNode struct {
	name string
	args []node
}

func (n *callNode) eval(scope Scope) (any, error) {
	fn := builtins[n.name]
	args := make([]any, len(n.args))
	for i, argNode := range n.args {
		v, err := argNode.eval(scope)
		if err != nil {
			return nil, errors.Trace(err)
		}
		args[i] = v
	}
	v, err := fn(args)
	if err != nil {
		return nil, errors.Annotatef(err, "%s()", n.name)
	}
	return v, nil
}

func truth(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return v != nil
}

// numericValue widens bool to 1/0 so booleans take part in arithmetic
// and ordering comparisons.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	}
	return "value"
}

func compareValues(op tokenKind, left, right any) (bool, error) {
	// equality with null is answerable, ordering is not
	if left == nil || right == nil {
		switch op {
		case tokEq:
			return left == nil && right == nil, nil
		case tokNe:
			return !(left == nil && right == nil), nil
		}
		return false, errors.Errorf("cannot order null value")
	}

	lf, lok := numericValue(left)
	rf, rok := numericValue(right)
	if lok && rok {
		switch op {
		case tokEq:
			return lf == rf, nil
		case tokNe:
			return lf != rf, nil
		case tokLt:
			return lf < rf, nil
		case tokGt:
			return lf > rf, nil
		case tokLe:
			return lf <= rf, nil
		case tokGe:
			return lf >= rf, nil
		}
	}

	ls, lsok := left.(string)
	rs, rsok := right.(string)
	if lsok && rsok {
		switch op {
		case tokEq:
			return ls == rs, nil
		case tokNe:
			return ls != rs, nil
		case tokLt:
			return ls < rs, nil
		case tokGt:
			return ls > rs, nil
		case tokLe:
			return ls <= rs, nil
		case tokGe:
			return ls >= rs, nil
		}
	}

	// mixed types: equality is simply false, ordering is a fault
	switch op {
	case tokEq:
		return false, nil
	case tokNe:
		return true, nil
	}
	return false, errors.Errorf("cannot compare %s with %s", typeName(left), typeName(right))
}

func arithmetic(op tokenKind, left, right any) (any, error) {
	if op == tokPlus {
		ls, lsok := left.(string)
		rs, rsok := right.(string)
		if lsok && rsok {
			return ls + rs, nil
		}
	}

	lf, lok := numericValue(left)
	rf, rok := numericValue(right)
	if !lok || !rok {
		return nil, errors.Errorf("cannot apply arithmetic to %s and %s", typeName(left), typeName(right))
	}

	switch op {
	case tokPlus:
		return lf + rf, nil
	case tokMinus:
		return lf - rf, nil
	case tokStar:
		return lf * rf, nil
	case tokSlash:
		if rf == 0 {
			return nil, errors.Errorf("division by zero")
		}
		return lf / rf, nil
	case tokPercent:
		if rf == 0 {
			return nil, errors.Errorf("division by zero")
		}
		return math.Mod(lf, rf), nil
	}
	return nil, errors.Errorf("bad arithmetic operator")
}
