package booking

import (
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Sentinel errors shared across engine operations.  Handlers map
// these to HTTP statuses (404, 403, 400).
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrRoomUnavailable = errors.New("room is not available")
)

// InputError collects per-field validation messages so a response
// can report everything wrong with a request at once.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

// IsInputError unwraps err as an *InputError, or returns nil.
func IsInputError(err error) *InputError {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

func (ie *InputError) add(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) fieldCount() int { return len(ie.fields) }

// Fields exposes the collected messages keyed by field name.
func (ie *InputError) Fields() map[string][]string { return ie.fields }

func (ie *InputError) Error() string {
	return fmt.Sprintf("invalid input: %+v", ie.fields)
}

// ConflictError is returned when a requested date range overlaps an
// existing pending or confirmed booking on the same room.  It
// carries the conflicting bookings so the response can explain which
// stays block the request.
type ConflictError struct {
	Conflicts []model.Booking
}

// IsConflictError unwraps err as a *ConflictError, or returns nil.
func IsConflictError(err error) *ConflictError {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("date range conflicts with %d existing booking(s)", len(ce.Conflicts))
}

// TransitionError reports an illegal status change.  When From equals
// To the booking was asked to be modified in a state that permits no
// modification (e.g. extending a cancelled booking).
type TransitionError struct {
	From string
	To   string
}

// IsTransitionError unwraps err as a *TransitionError, or returns nil.
func IsTransitionError(err error) *TransitionError {
	var te *TransitionError
	if errors.As(err, &te) {
		return te
	}
	return nil
}

func (te *TransitionError) Error() string {
	if te.From == te.To {
		return fmt.Sprintf("booking in state %s cannot be modified", te.From)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", te.From, te.To)
}
