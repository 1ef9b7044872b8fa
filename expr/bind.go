package expr

import (
	"fmt"
)

var (
	_ error = &MissingColumnError{}
	_ error = &CoercionError{}
	_ error = &UnresolvedError{}
)

// MissingColumnError reports an identifier the bound row has no column
// for. The dispatcher decides whether that fails the row or just the
// rule.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not present in row", e.Column)
}

// CoercionError reports a cell value that refused to convert to the
// rule's declared type.
type CoercionError struct {
	Column string
	Value  any
	Type   string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %q: cannot convert %v to %s", e.Column, e.Value, e.Type)
}

// UnresolvedError reports an identifier with no bound value. With
// BindRow building the scope this only fires on a scope the caller
// assembled by hand.
type UnresolvedError struct {
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("identifier %q is not defined", e.Name)
}

/**
 * BindRow builds the evaluation scope for one row. Every identifier the
 * program references must be a row column, its value is coerced to the
 * rule's declared variable type. A blank cell binds nil and surfaces
 * later as an ordering fault, a cell that refuses to convert is a
 * CoercionError right away.
 */
func (p *Program) BindRow(row map[string]any, variableType string) (Scope, error) {
	scope := make(Scope, len(p.idents))
	for _, name := range p.idents {
		raw, exists := row[name]
		if !exists {
			return nil, &MissingColumnError{Column: name}
		}
		v := CastValue(raw, variableType)
		if v == nil && raw != nil {
			return nil, &CoercionError{Column: name, Value: raw, Type: variableType}
		}
		scope[name] = v
	}
	return scope, nil
}
