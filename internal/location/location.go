package location

import (
	"context"
	"errors"
)

// Value is a resolved coordinate pair. Values are published wholesale on
// each resolution and never mutated in place; consumers treat them as
// read-only.
type Value struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PermissionState tracks one resolution cycle. Pending transitions to
// exactly one of Granted or Denied; Denied is terminal for the cycle and is
// only left by starting a fresh cycle.
type PermissionState int

const (
	StatusPending PermissionState = iota
	StatusGranted
	StatusDenied
)

func (s PermissionState) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	default:
		return "pending"
	}
}

// Decision is the outcome of a permission query.
type Decision int

const (
	DecisionDenied Decision = iota
	DecisionGranted
)

// ErrUndecided reports that no consent decision has been made yet. The UI
// is expected to prompt the user and deliver the decision afterwards; the
// resolver stays Pending in the meantime.
var ErrUndecided = errors.New("location consent undecided")

// Reason classifies why a cycle ended Denied. Every reason surfaces as the
// single Denied status; the reason itself is informational display detail.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonPermissionDenied
	ReasonCapabilityUnavailable
	ReasonReadingFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "location permission denied"
	case ReasonCapabilityUnavailable:
		return "no location source available"
	case ReasonReadingFailed:
		return "location reading failed"
	default:
		return ""
	}
}

// Source supplies the asynchronous permission-and-location pipeline. Both
// calls may block and are driven from command goroutines; results come back
// through the event loop.
type Source interface {
	QueryPermission(ctx context.Context) (Decision, error)
	ReadLocation(ctx context.Context) (Value, error)
}

// Store persists the single cached-location record across sessions. Load
// returns nil without error when no record exists; Save overwrites the
// record wholesale.
type Store interface {
	Load(ctx context.Context) (*Value, error)
	Save(ctx context.Context, v Value) error
}
