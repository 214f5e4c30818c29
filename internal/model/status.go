package model

import "fmt"

// Status is an appointment's lifecycle state. Stored as lower-snake strings.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusRescheduled Status = "rescheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusPending, StatusConfirmed, StatusRescheduled,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// Active reports whether the appointment still occupies its time interval.
// Cancelled and no-show appointments do not block other bookings.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusNoShow
}
