package lifecycle

import (
	"errors"
	"fmt"

	"github.com/avelar-dev/salonbook/internal/model"
)

// Op is a lifecycle operation requested against an appointment.
type Op string

const (
	OpConfirm    Op = "confirm"
	OpReschedule Op = "reschedule"
	OpCancel     Op = "cancel"
	OpComplete   Op = "complete"
	OpNoShow     Op = "no_show"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the full state machine: state x op -> next state. Anything
// absent from the table is rejected, so no undefined transition can slip
// through as a status-string comparison would allow.
var transitions = map[model.Status]map[Op]model.Status{
	model.StatusScheduled: {
		OpConfirm:    model.StatusConfirmed,
		OpReschedule: model.StatusRescheduled,
		OpCancel:     model.StatusCancelled,
		OpComplete:   model.StatusCompleted,
		OpNoShow:     model.StatusNoShow,
	},
	model.StatusPending: {
		OpConfirm:    model.StatusConfirmed,
		OpReschedule: model.StatusRescheduled,
		OpCancel:     model.StatusCancelled,
		OpComplete:   model.StatusCompleted,
		OpNoShow:     model.StatusNoShow,
	},
	model.StatusConfirmed: {
		OpReschedule: model.StatusRescheduled,
		OpCancel:     model.StatusCancelled,
		OpComplete:   model.StatusCompleted,
		OpNoShow:     model.StatusNoShow,
	},
	// Confirm is deliberately absent: only scheduled and pending
	// appointments can be confirmed.
	model.StatusRescheduled: {
		OpReschedule: model.StatusRescheduled,
		OpCancel:     model.StatusCancelled,
		OpComplete:   model.StatusCompleted,
		OpNoShow:     model.StatusNoShow,
	},
	// Terminal states have no outgoing transitions.
	model.StatusCompleted: {},
	model.StatusCancelled: {},
	model.StatusNoShow:    {},
}

// Next returns the state that applying op to current yields, or
// ErrInvalidTransition when the pair is not in the table.
func Next(current model.Status, op Op) (model.Status, error) {
	ops, ok := transitions[current]
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	next, ok := ops[op]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, current)
	}
	return next, nil
}

// IsTerminal reports whether no further lifecycle transition is permitted.
func IsTerminal(s model.Status) bool {
	switch s {
	case model.StatusCompleted, model.StatusCancelled, model.StatusNoShow:
		return true
	}
	return false
}
