package group

import (
	"fmt"
	"strings"
)

// PanicError wraps a recovered panic with the goroutine's spawn index.
type PanicError struct {
	ID    int
	Value interface{}
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("goroutine %d panicked: %v", p.ID, p.Value)
}

// AggregateError wraps multiple errors (for CollectAll mode)
type AggregateError struct {
	Errors []error
}

func (a *AggregateError) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}
	msgs := make([]string, len(a.Errors))
	for i, err := range a.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(a.Errors), strings.Join(msgs, "; "))
}

func (a *AggregateError) Unwrap() []error {
	return a.Errors
}
