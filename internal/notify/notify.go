// Package notify delivers user-visible reminder alerts. Delivery is
// capability-polymorphic: a dispatcher may send, suppress (no permission) or
// fail (transport error), and callers treat all three as non-fatal.
package notify

import "context"

// Outcome classifies one dispatch attempt.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeSuppressed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Permission mirrors the platform notification permission states.
type Permission int

const (
	PermissionGranted Permission = iota
	PermissionDenied
	PermissionDefault
	PermissionUnsupported
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	case PermissionDefault:
		return "default"
	default:
		return "unsupported"
	}
}

// Notification is one alert. Tag is a dedup key, conventionally the task id.
type Notification struct {
	Title string
	Body  string
	Tag   string
}

// Dispatcher delivers a notification and reports what happened. Suppressed is
// not an error; Failed is logged by the implementation and never rolls back
// the caller's reminded state.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) Outcome
}

// PermissionSource reports whether notifications may currently be delivered.
type PermissionSource interface {
	Status() Permission
}
