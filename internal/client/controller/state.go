package controller

import "errors"

// Phase is the loading state of a controller.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	// PhaseFailed is terminal: the initial load failed and is not retried.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode is the dialog state. ModeClosed means no draft exists.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Level grades a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notice is a user-visible message produced by an operation.
type Notice struct {
	Level Level
	Text  string
}

var (
	// ErrBusy is returned when an operation of the same kind is in flight.
	ErrBusy = errors.New("not ready: operation in progress")
	// ErrNotReady is returned when the collection is not loaded or failed to load.
	ErrNotReady = errors.New("not ready")
	// ErrDialogClosed is returned by draft operations without an open dialog.
	ErrDialogClosed = errors.New("dialog is not open")
	// ErrReadOnlyField is returned when the view tries to change the id.
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrUnknownField is returned for a field the entity does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when input cannot be coerced to the field type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidID is returned for a search or edit id that is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotListed is returned by OpenEditByID when no displayed entity has the id.
	ErrNotListed = errors.New("entity is not listed")
)

// State is a read-only snapshot handed to the view.
type State[T any] struct {
	Phase   Phase
	Err     error
	All     []T
	Visible []T
	// Filtered is true while Visible is the result of a search.
	Filtered bool
	Query    string
	Mode     Mode
	Draft    T
	Busy     []string
}
