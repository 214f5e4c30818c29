package lifecycle

import (
	"errors"
	"testing"

	"github.com/avelar-dev/salonbook/internal/model"
)

func TestNext_AllowedTransitions(t *testing.T) {
	cases := []struct {
		from model.Status
		op   Op
		want model.Status
	}{
		{model.StatusScheduled, OpConfirm, model.StatusConfirmed},
		{model.StatusScheduled, OpCancel, model.StatusCancelled},
		{model.StatusScheduled, OpReschedule, model.StatusRescheduled},
		{model.StatusScheduled, OpComplete, model.StatusCompleted},
		{model.StatusScheduled, OpNoShow, model.StatusNoShow},
		{model.StatusPending, OpConfirm, model.StatusConfirmed},
		{model.StatusConfirmed, OpCancel, model.StatusCancelled},
		{model.StatusConfirmed, OpComplete, model.StatusCompleted},
		{model.StatusConfirmed, OpNoShow, model.StatusNoShow},
		{model.StatusRescheduled, OpReschedule, model.StatusRescheduled},
		{model.StatusRescheduled, OpCancel, model.StatusCancelled},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.op)
		if err != nil {
			t.Fatalf("%s from %s: unexpected error: %v", tc.op, tc.from, err)
		}
		if got != tc.want {
			t.Fatalf("%s from %s: got %s, want %s", tc.op, tc.from, got, tc.want)
		}
	}
}

func TestNext_TerminalStatesRejectEverything(t *testing.T) {
	terminals := []model.Status{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow}
	ops := []Op{OpConfirm, OpReschedule, OpCancel, OpComplete, OpNoShow}
	for _, s := range terminals {
		for _, op := range ops {
			if _, err := Next(s, op); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", op, s, err)
			}
		}
	}
}

func TestNext_ConfirmOnlyFromScheduledOrPending(t *testing.T) {
	for _, s := range []model.Status{model.StatusConfirmed, model.StatusRescheduled} {
		if _, err := Next(s, OpConfirm); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("confirm from %s: expected ErrInvalidTransition, got %v", s, err)
		}
	}
}

func TestNext_UnknownStatus(t *testing.T) {
	if _, err := Next(model.Status("bogus"), OpCancel); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []model.Status{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow} {
		if !IsTerminal(s) {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []model.Status{model.StatusScheduled, model.StatusPending, model.StatusConfirmed, model.StatusRescheduled} {
		if IsTerminal(s) {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}
