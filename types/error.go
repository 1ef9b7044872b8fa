package types

import (
	"strings"

	"github.com/juju/errors"
)

var (
	_ error = &LoadError{}
	_ error = &CycleError{}
)

// NewLoadError wraps a workflow description defect found at load time.
func NewLoadError(otherErr error) error {
	return &LoadError{baseError: newBaseErr(otherErr)}
}

func NewLoadErrorf(format string, args ...interface{}) error {
	return NewLoadError(errors.Errorf(format, args...))
}

/**
 * NewCycleError reports that the graph has no complete topological
 * order. nodes holds the ids the order could not reach, sorted by the
 * caller for stable messages.
 */
func NewCycleError(nodes []string) error {
	return &CycleError{
		baseError: newBaseErr(errors.Errorf(
			"workflow contains a cycle involving nodes: %s", strings.Join(nodes, ", "))),
		Nodes: nodes,
	}
}

func newBaseErr(otherErr error) *baseError {
	return &baseError{unwrapErr(otherErr)}
}

func unwrapErr(err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := err.(wrappedErr); ok {
		return unwrapErr(ue.UnwrapLocal())
	}
	return err
}

type wrappedErr interface {
	UnwrapLocal() error
}

type baseError struct {
	BaseErr error
}

func (e *baseError) Error() string {
	return e.BaseErr.Error()
}

func (e *baseError) UnwrapLocal() error {
	return e.BaseErr
}

type LoadError struct {
	*baseError
}

type CycleError struct {
	*baseError
	Nodes []string
}

// IsLoadError reports whether err carries a LoadError anywhere in its
// chain, errors.Trace wrapping included.
func IsLoadError(err error) bool {
	for err != nil {
		if _, ok := err.(*LoadError); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// AsCycleError digs a CycleError out of err so callers can reach the
// implicated node ids.
func AsCycleError(err error) (*CycleError, bool) {
	for err != nil {
		if ce, ok := err.(*CycleError); ok {
			return ce, true
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}
