package alloc

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers can distinguish "nothing
// happened" outcomes without parsing messages.
type Kind int

const (
	// KindNotFound: a referenced application, applicant, allocation or room
	// does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidState: the operation does not apply to the entity's current
	// state, e.g. approving a non-pending application.
	KindInvalidState
	// KindCapacityRace: a room filled concurrently between selection and
	// write. Recovered inside the engine; it never reaches a caller.
	KindCapacityRace
	// KindTransaction: the underlying store failed and the whole operation
	// rolled back.
	KindTransaction
	// KindInvalidInput: unparseable caller-supplied values.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindCapacityRace:
		return "capacity_race"
	case KindTransaction:
		return "transaction"
	case KindInvalidInput:
		return "invalid_input"
	}
	return "unknown"
}

// Error is the typed error returned by every engine operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func notFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

func invalidState(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Op: op, Message: fmt.Sprintf(format, args...)}
}

func capacityRace(op, format string, args ...any) *Error {
	return &Error{Kind: KindCapacityRace, Op: op, Message: fmt.Sprintf(format, args...)}
}

// wrapStore passes engine errors through untouched and classifies everything
// else as a transaction failure with the root cause attached.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return err
	}
	return &Error{Kind: KindTransaction, Op: op, Message: "store operation failed", Err: err}
}

// KindOf returns the kind of an engine error, or 0 for foreign errors.
func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return 0
}

// IsNotFound reports whether err is a KindNotFound engine error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidState reports whether err is a KindInvalidState engine error.
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
