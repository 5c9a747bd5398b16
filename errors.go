package beanpot

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// ErrNotFound indicates no finished or early-exposed instance exists for a name.
	ErrNotFound = errors.New("bean not found")

	// ErrCreationInFlight indicates DestroyAll was called while a creation was in progress.
	ErrCreationInFlight = errors.New("creation in flight")

	// ErrNilConstructor indicates a definition without a constructor function.
	ErrNilConstructor = errors.New("definition has no constructor")

	// ErrNilInstance indicates a constructor returned a nil instance without an error.
	ErrNilInstance = errors.New("constructor returned nil instance")

	// ErrUnsupportedScope indicates a definition with a scope other than singleton.
	ErrUnsupportedScope = errors.New("unsupported scope")
)

// CreationError wraps a failure during construction, population, or
// initialization of a named bean. Registry state for the name is rolled
// back before a CreationError propagates.
type CreationError struct {
	Name       string
	Cause      error
	Phase      Phase
	StackTrace []byte
}

func (e *CreationError) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("creating bean %q during %s: %v", e.Name, e.Phase, e.Cause)
	}
	return fmt.Sprintf("creating bean %q: %v", e.Name, e.Cause)
}

func (e *CreationError) Unwrap() error {
	return e.Cause
}

func newCreationError(name string, phase Phase, cause error) *CreationError {
	return &CreationError{
		Name:       name,
		Cause:      cause,
		Phase:      phase,
		StackTrace: debug.Stack(),
	}
}

// ConstructorCycleError reports a dependency cycle that can only be broken
// by constructor injection. No raw instance exists yet to expose early, so
// the cycle is unresolvable and the creation attempt fails fast.
type ConstructorCycleError struct {
	Cycle []string
}

func (e *ConstructorCycleError) Error() string {
	return fmt.Sprintf("constructor dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// DuplicateCreationError indicates internal bookkeeping found residue of a
// previous creation attempt for a name that is not in creation. This is a
// registry invariant violation, not user error.
type DuplicateCreationError struct {
	Name string
}

func (e *DuplicateCreationError) Error() string {
	return fmt.Sprintf("bean %q re-entered creation without rollback", e.Name)
}

// DestroyError reports a destroy callback failure during DestroyAll.
// Teardown continues past individual failures; observers see each one.
type DestroyError struct {
	Name string
	Err  error
}

func (e *DestroyError) Error() string {
	return fmt.Sprintf("destroying bean %q: %v", e.Name, e.Err)
}

func (e *DestroyError) Unwrap() error {
	return e.Err
}
