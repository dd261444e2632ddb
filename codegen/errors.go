package codegen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStack reports a stack value outside the curated registry.
// Callers treat it as a client error, not a server failure.
var ErrUnknownStack = errors.New("unknown stack")

// UnknownStackError carries the rejected stack value so callers can
// echo the allowed set back to the client.
type UnknownStackError struct {
	Stack string
}

func (e *UnknownStackError) Error() string {
	values := make([]string, len(stacks))
	for i, s := range stacks {
		values[i] = s.Value
	}
	return fmt.Sprintf("unknown stack %q (known stacks: %s)", e.Stack, strings.Join(values, ", "))
}

func (e *UnknownStackError) Is(target error) bool {
	return target == ErrUnknownStack
}
