package domain

import "errors"

var (
	ErrNotFound       = errors.New("not_found")
	ErrDuplicate      = errors.New("duplicate")
	ErrIncompleteData = errors.New("incomplete_data")
	ErrNoUpdateData   = errors.New("no_update_data")
	ErrMissingID      = errors.New("missing_id")
	ErrMissingOwner   = errors.New("missing_owner")
	ErrInvalidID      = errors.New("invalid_id")
)

// ErrorKind groups domain errors by how callers should react to them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// KindOf classifies a non-nil error returned by the service.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindConflict
	case errors.Is(err, ErrIncompleteData),
		errors.Is(err, ErrNoUpdateData),
		errors.Is(err, ErrMissingID),
		errors.Is(err, ErrMissingOwner),
		errors.Is(err, ErrInvalidID):
		return KindValidation
	default:
		return KindInternal
	}
}
