package engine

import (
	"context"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
)

// ActiveQuery selects the conflict set for an availability check: all
// appointments of a salon that still occupy their interval, optionally
// narrowed to one staff member, optionally excluding one appointment id
// (reschedule checks against everyone but the appointment itself).
type ActiveQuery struct {
	SalonID   string
	StaffID   string
	ExcludeID string
}

// AppointmentUpdate lists the mutable appointment fields. Nil means "leave
// unchanged"; stores must apply all non-nil fields in one atomic write.
type AppointmentUpdate struct {
	StartTime            *time.Time
	EndTime              *time.Time
	StaffID              *string
	ServiceID            *string
	Status               *model.Status
	PriceCents           *int64
	CancellationReason   *string
	CancellationFeeCents *int64
	NoShowFeeCents       *int64
	Notes                *string
}

// AppointmentStore persists appointments. Create must fail with a conflict
// error when the database-level no-overlap constraint rejects the row; that
// constraint, not the preceding read, is the serialization point between
// concurrent bookings.
type AppointmentStore interface {
	Create(ctx context.Context, appt model.Appointment) (model.Appointment, error)
	Update(ctx context.Context, id string, upd AppointmentUpdate) (model.Appointment, error)
	FindByID(ctx context.Context, id string) (model.Appointment, error)
	FindActive(ctx context.Context, q ActiveQuery) ([]model.Appointment, error)
	// IsConflict and IsNotFound classify storage errors for the engine.
	IsConflict(err error) bool
	IsNotFound(err error) bool
}

// WorkingHoursStore returns a salon's window for a weekday. Implementations
// return a sensible default rather than an error when the salon has not
// seeded a schedule.
type WorkingHoursStore interface {
	Get(ctx context.Context, salonID string, weekday time.Weekday) (model.WorkingHours, error)
}

// ServiceCatalog resolves a bookable service within a salon.
type ServiceCatalog interface {
	Get(ctx context.Context, salonID, serviceID string) (model.Service, error)
}

// SalonProfileStore returns per-salon configuration (timezone, reminder
// offsets, fee overrides).
type SalonProfileStore interface {
	Get(ctx context.Context, salonID string) (model.SalonProfile, error)
}

// TimeOffStore returns staff blackout intervals intersecting [from, to).
type TimeOffStore interface {
	FindOverlapping(ctx context.Context, salonID, staffID string, from, to time.Time) ([]model.TimeOff, error)
}

// ReminderStore persists reminders. Failures here never fail the booking or
// transition that triggered them.
type ReminderStore interface {
	CreateMany(ctx context.Context, rs []model.Reminder) error
	DeleteForAppointment(ctx context.Context, appointmentID string, onlyUnsent bool) error
}

// NotificationPort emits lifecycle events. Fire-and-forget: errors are
// logged by the engine and never surfaced.
type NotificationPort interface {
	Notify(ctx context.Context, event string, appt model.Appointment) error
}

// Charger hands a computed fee to the payment provider. Fire-and-forget.
type Charger interface {
	ChargeFee(ctx context.Context, appt model.Appointment, amountCents int64, reason string) error
}
