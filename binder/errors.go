package binder

import (
	"fmt"

	"github.com/wirebind/wirebind/schema"
)

// ValidationError is a single field-level binding failure. Key is the dotted
// wire-name path from the bind root, with zero-based indices for failing
// sequence elements (e.g. "other_child.val.1").
type ValidationError struct {
	Key     string        `json:"key"`
	Message string        `json:"message"`
	Source  schema.Source `json:"source,omitempty"`
}

// BindFailure is the aggregate, request-scoped failure: the non-empty
// ordered collection of every ValidationError from one bind pass.
type BindFailure struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (f *BindFailure) Error() string {
	switch len(f.Errors) {
	case 0:
		return "binding failed"
	case 1:
		return fmt.Sprintf("binding failed: %s: %s", f.Errors[0].Key, f.Errors[0].Message)
	default:
		return fmt.Sprintf("binding failed: %d validation errors", len(f.Errors))
	}
}

// Aggregator collects field errors across an entire binding pass. One
// instance per bind call, owned exclusively by that call.
type Aggregator struct {
	errors []ValidationError
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Append records a single error.
func (a *Aggregator) Append(err ValidationError) {
	a.errors = append(a.errors, err)
}

// Extend records a batch of errors, preserving their order.
func (a *Aggregator) Extend(errs []ValidationError) {
	a.errors = append(a.errors, errs...)
}

// IsEmpty reports whether any error has been recorded.
func (a *Aggregator) IsEmpty() bool {
	return len(a.errors) == 0
}

// Drain returns the collected errors in visitation order and resets the
// aggregator.
func (a *Aggregator) Drain() []ValidationError {
	errs := a.errors
	a.errors = nil
	return errs
}

// Failure returns a BindFailure holding all collected errors, or nil when
// the pass was clean.
func (a *Aggregator) Failure() error {
	if a.IsEmpty() {
		return nil
	}
	return &BindFailure{Errors: a.Drain()}
}
