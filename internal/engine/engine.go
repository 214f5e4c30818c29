package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelar-dev/salonbook/internal/availability"
	"github.com/avelar-dev/salonbook/internal/lifecycle"
	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/internal/policy"
	"github.com/avelar-dev/salonbook/internal/reminders"
)

// Lifecycle event names. The topic an event is published on equals its name.
const (
	EventBooked      = "booking.appointment.booked.v1"
	EventConfirmed   = "booking.appointment.confirmed.v1"
	EventRescheduled = "booking.appointment.rescheduled.v1"
	EventCancelled   = "booking.appointment.cancelled.v1"
	EventCompleted   = "booking.appointment.completed.v1"
	EventNoShow      = "booking.appointment.no_show.v1"
	EventUpdated     = "booking.appointment.updated.v1"
)

const DefaultSlotStep = 15 * time.Minute

// Deps are the engine's collaborators. Appointments, WorkingHours, Services,
// Salons and Reminders are required; TimeOff, Notifier and Charger may be nil.
type Deps struct {
	Appointments AppointmentStore
	WorkingHours WorkingHoursStore
	Services     ServiceCatalog
	Salons       SalonProfileStore
	TimeOff      TimeOffStore
	Reminders    ReminderStore
	Notifier     NotificationPort
	Charger      Charger
	Logger       *slog.Logger
}

type Config struct {
	Fees     policy.Fees
	SlotStep time.Duration
	// Now is the clock; defaults to time.Now. Injected for tests.
	Now func() time.Time
}

// Engine is the scheduling orchestrator: slot listing, atomic booking and
// the appointment lifecycle. It holds no state of its own between calls.
type Engine struct {
	deps Deps
	fees policy.Fees
	step time.Duration
	now  func() time.Time
	log  *slog.Logger
}

func New(deps Deps, cfg Config) *Engine {
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = DefaultSlotStep
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Fees == (policy.Fees{}) {
		cfg.Fees = policy.DefaultFees()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{deps: deps, fees: cfg.Fees, step: cfg.SlotStep, now: cfg.Now, log: log}
}

type BookRequest struct {
	SalonID       string
	ServiceID     string
	StaffID       string
	UserID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	StartTime     time.Time
	Notes         string
}

// UpdateRequest carries administrative field edits. Notes-only updates are
// allowed in any state; everything else requires a non-terminal appointment.
type UpdateRequest struct {
	Notes     *string
	StaffID   *string
	ServiceID *string
}

// ListAvailableSlots enumerates bookable start/end pairs for a service on one
// day, within the salon's working hours, filtered against active appointments
// and staff time off. Read-only: a listed slot is re-validated at booking.
func (e *Engine) ListAvailableSlots(ctx context.Context, salonID, date, serviceID, staffID string) ([]model.TimeSlot, error) {
	if salonID == "" || serviceID == "" {
		return nil, fmt.Errorf("%w: salon and service are required", ErrPolicyViolation)
	}
	// Shape check before any store access; the date is re-parsed in the
	// salon's timezone below.
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidInterval, date)
	}

	svc, err := e.activeService(ctx, salonID, serviceID)
	if err != nil {
		return nil, err
	}

	profile, err := e.deps.Salons.Get(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("load salon profile: %w", err)
	}
	loc := salonLocation(profile)

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidInterval, date)
	}

	wh, err := e.deps.WorkingHours.Get(ctx, salonID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("load working hours: %w", err)
	}
	if wh.Closed {
		return nil, nil
	}

	open := day.Add(time.Duration(wh.OpenMinute) * time.Minute)
	close := day.Add(time.Duration(wh.CloseMinute) * time.Minute)

	busy, err := e.busyIntervals(ctx, salonID, staffID, "", open, close)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMins) * time.Minute
	starts := availability.Slots(open, close, duration, e.step, busy, e.now())

	slots := make([]model.TimeSlot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, model.TimeSlot{
			SalonID:   salonID,
			StaffID:   staffID,
			StartTime: s.UTC(),
			EndTime:   s.Add(duration).UTC(),
		})
	}
	return slots, nil
}

// Book atomically validates and creates an appointment. The availability
// read gives a precise error for the common case; the storage layer's
// exclusion constraint decides races, surfacing as ErrConflict.
func (e *Engine) Book(ctx context.Context, req BookRequest) (model.Appointment, error) {
	if req.SalonID == "" || req.ServiceID == "" || req.UserID == "" {
		return model.Appointment{}, fmt.Errorf("%w: salon, service and user are required", ErrPolicyViolation)
	}
	if req.StartTime.IsZero() {
		return model.Appointment{}, fmt.Errorf("%w: missing start time", ErrInvalidInterval)
	}

	svc, err := e.activeService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		return model.Appointment{}, err
	}

	start := req.StartTime.UTC()
	end := start.Add(time.Duration(svc.DurationMins) * time.Minute)

	if err := e.checkAvailable(ctx, req.SalonID, req.StaffID, start, end, ""); err != nil {
		return model.Appointment{}, err
	}

	appt, err := e.deps.Appointments.Create(ctx, model.Appointment{
		SalonID:       req.SalonID,
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		StartTime:     start,
		EndTime:       end,
		Status:        model.StatusScheduled,
		PriceCents:    svc.PriceCents,
		Notes:         req.Notes,
	})
	if err != nil {
		if e.deps.Appointments.IsConflict(err) {
			return model.Appointment{}, fmt.Errorf("%w: slot taken", ErrConflict)
		}
		return model.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}

	e.planReminders(ctx, appt)
	e.notify(ctx, EventBooked, appt)
	e.log.Info("appointment booked",
		"appointment_id", appt.ID, "salon_id", appt.SalonID,
		"start", appt.StartTime, "staff_id", appt.StaffID)
	return appt, nil
}

// Reschedule moves a non-terminal appointment to a new start (and optionally
// a new staff member). The duration captured at booking is preserved, so a
// later catalog edit never alters an existing appointment. All existing
// reminders are dropped and regenerated from the new start.
func (e *Engine) Reschedule(ctx context.Context, id string, newStart time.Time, staffID string) (model.Appointment, error) {
	appt, err := e.find(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	next, err := lifecycle.Next(appt.Status, lifecycle.OpReschedule)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if newStart.IsZero() {
		return model.Appointment{}, fmt.Errorf("%w: missing new start time", ErrInvalidInterval)
	}

	targetStaff := appt.StaffID
	if staffID != "" {
		targetStaff = staffID
	}
	start := newStart.UTC()
	end := start.Add(appt.EndTime.Sub(appt.StartTime))

	if err := e.checkAvailable(ctx, appt.SalonID, targetStaff, start, end, appt.ID); err != nil {
		return model.Appointment{}, err
	}

	status := next
	updated, err := e.deps.Appointments.Update(ctx, appt.ID, AppointmentUpdate{
		StartTime: &start,
		EndTime:   &end,
		StaffID:   &targetStaff,
		Status:    &status,
	})
	if err != nil {
		if e.deps.Appointments.IsConflict(err) {
			return model.Appointment{}, fmt.Errorf("%w: slot taken", ErrConflict)
		}
		return model.Appointment{}, fmt.Errorf("reschedule appointment: %w", err)
	}

	e.dropReminders(ctx, appt.ID, false)
	e.planReminders(ctx, updated)
	e.notify(ctx, EventRescheduled, updated)
	e.log.Info("appointment rescheduled", "appointment_id", appt.ID, "start", start, "staff_id", targetStaff)
	return updated, nil
}

// Confirm moves a scheduled or pending appointment to confirmed.
func (e *Engine) Confirm(ctx context.Context, id string) (model.Appointment, error) {
	return e.transition(ctx, id, lifecycle.OpConfirm, EventConfirmed, nil)
}

// Cancel moves a non-terminal appointment to cancelled, computing the
// cancellation fee per salon policy. Sent reminders are retained as history;
// unsent ones are deleted.
func (e *Engine) Cancel(ctx context.Context, id, reason string) (model.Appointment, error) {
	appt, err := e.find(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	next, err := lifecycle.Next(appt.Status, lifecycle.OpCancel)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	profile, err := e.deps.Salons.Get(ctx, appt.SalonID)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("load salon profile: %w", err)
	}
	fee := e.fees.CancellationFee(appt, profile, e.now())

	status := next
	updated, err := e.deps.Appointments.Update(ctx, appt.ID, AppointmentUpdate{
		Status:               &status,
		CancellationReason:   &reason,
		CancellationFeeCents: &fee,
	})
	if err != nil {
		return model.Appointment{}, fmt.Errorf("cancel appointment: %w", err)
	}

	e.dropReminders(ctx, appt.ID, true)
	e.chargeFee(ctx, updated, fee, "late cancellation")
	e.notify(ctx, EventCancelled, updated)
	e.log.Info("appointment cancelled", "appointment_id", appt.ID, "fee_cents", fee, "reason", reason)
	return updated, nil
}

// Complete marks an appointment as done and clears its reminders.
func (e *Engine) Complete(ctx context.Context, id string) (model.Appointment, error) {
	return e.transition(ctx, id, lifecycle.OpComplete, EventCompleted, func(ctx context.Context, appt model.Appointment) {
		e.dropReminders(ctx, appt.ID, false)
	})
}

// NoShow records a missed appointment, charging the no-show fee. Unlike
// cancellation the fee is never time-graded.
func (e *Engine) NoShow(ctx context.Context, id string) (model.Appointment, error) {
	appt, err := e.find(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	next, err := lifecycle.Next(appt.Status, lifecycle.OpNoShow)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	profile, err := e.deps.Salons.Get(ctx, appt.SalonID)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("load salon profile: %w", err)
	}
	fee := e.fees.NoShowFee(appt, profile)

	status := next
	updated, err := e.deps.Appointments.Update(ctx, appt.ID, AppointmentUpdate{
		Status:         &status,
		NoShowFeeCents: &fee,
	})
	if err != nil {
		return model.Appointment{}, fmt.Errorf("mark no-show: %w", err)
	}

	e.dropReminders(ctx, appt.ID, false)
	e.chargeFee(ctx, updated, fee, "no-show")
	e.notify(ctx, EventNoShow, updated)
	e.log.Info("appointment no-show", "appointment_id", appt.ID, "fee_cents", fee)
	return updated, nil
}

// Update applies administrative edits. A notes-only change is always
// allowed, even on terminal appointments; any other field requires a
// non-terminal state. A service change recomputes end time and price from
// the new service and re-validates availability.
func (e *Engine) Update(ctx context.Context, id string, req UpdateRequest) (model.Appointment, error) {
	appt, err := e.find(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}

	notesOnly := req.StaffID == nil && req.ServiceID == nil
	if !notesOnly && lifecycle.IsTerminal(appt.Status) {
		return model.Appointment{}, fmt.Errorf("%w: cannot edit a %s appointment", ErrInvalidState, appt.Status)
	}

	upd := AppointmentUpdate{Notes: req.Notes}

	targetStaff := appt.StaffID
	if req.StaffID != nil {
		targetStaff = *req.StaffID
		upd.StaffID = req.StaffID
	}

	revalidate := req.StaffID != nil && targetStaff != appt.StaffID
	start, end := appt.StartTime, appt.EndTime

	if req.ServiceID != nil && *req.ServiceID != appt.ServiceID {
		svc, err := e.activeService(ctx, appt.SalonID, *req.ServiceID)
		if err != nil {
			return model.Appointment{}, err
		}
		end = start.Add(time.Duration(svc.DurationMins) * time.Minute)
		upd.ServiceID = req.ServiceID
		upd.EndTime = &end
		upd.PriceCents = &svc.PriceCents
		revalidate = true
	}

	if revalidate {
		if err := e.checkAvailable(ctx, appt.SalonID, targetStaff, start, end, appt.ID); err != nil {
			return model.Appointment{}, err
		}
	}

	updated, err := e.deps.Appointments.Update(ctx, appt.ID, upd)
	if err != nil {
		if e.deps.Appointments.IsConflict(err) {
			return model.Appointment{}, fmt.Errorf("%w: slot taken", ErrConflict)
		}
		return model.Appointment{}, fmt.Errorf("update appointment: %w", err)
	}

	e.notify(ctx, EventUpdated, updated)
	return updated, nil
}

// Get returns one appointment.
func (e *Engine) Get(ctx context.Context, id string) (model.Appointment, error) {
	return e.find(ctx, id)
}

// transition is the shared shape of the simple status-only operations.
func (e *Engine) transition(ctx context.Context, id string, op lifecycle.Op, event string, after func(context.Context, model.Appointment)) (model.Appointment, error) {
	appt, err := e.find(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	next, err := lifecycle.Next(appt.Status, op)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	status := next
	updated, err := e.deps.Appointments.Update(ctx, appt.ID, AppointmentUpdate{Status: &status})
	if err != nil {
		return model.Appointment{}, fmt.Errorf("%s appointment: %w", op, err)
	}

	if after != nil {
		after(ctx, updated)
	}
	e.notify(ctx, event, updated)
	e.log.Info("appointment transition", "appointment_id", id, "op", string(op), "status", string(next))
	return updated, nil
}

// checkAvailable applies the overlap policy: well-formed interval, inside
// working hours, and no conflict with active appointments or staff time off.
func (e *Engine) checkAvailable(ctx context.Context, salonID, staffID string, start, end time.Time, excludeID string) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start must precede end", ErrInvalidInterval)
	}

	profile, err := e.deps.Salons.Get(ctx, salonID)
	if err != nil {
		return fmt.Errorf("load salon profile: %w", err)
	}
	loc := salonLocation(profile)

	localStart := start.In(loc)
	wh, err := e.deps.WorkingHours.Get(ctx, salonID, localStart.Weekday())
	if err != nil {
		return fmt.Errorf("load working hours: %w", err)
	}
	if wh.Closed {
		return fmt.Errorf("%w: salon closed on %s", ErrConflict, localStart.Weekday())
	}

	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	open := day.Add(time.Duration(wh.OpenMinute) * time.Minute)
	close := day.Add(time.Duration(wh.CloseMinute) * time.Minute)
	if start.Before(open) || end.After(close) {
		return fmt.Errorf("%w: outside working hours", ErrConflict)
	}

	busy, err := e.busyIntervals(ctx, salonID, staffID, excludeID, open, close)
	if err != nil {
		return err
	}
	if availability.ConflictsAny(start, end, busy) {
		return fmt.Errorf("%w: interval overlaps an existing booking", ErrConflict)
	}
	return nil
}

// busyIntervals gathers the conflict set: active appointments for the salon
// (narrowed to staffID when given, which must match how slots were listed)
// plus the staff member's time off.
func (e *Engine) busyIntervals(ctx context.Context, salonID, staffID, excludeID string, from, to time.Time) ([]availability.Interval, error) {
	appts, err := e.deps.Appointments.FindActive(ctx, ActiveQuery{
		SalonID:   salonID,
		StaffID:   staffID,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, fmt.Errorf("load active appointments: %w", err)
	}

	busy := make([]availability.Interval, 0, len(appts))
	for _, a := range appts {
		busy = append(busy, availability.Interval{Start: a.StartTime, End: a.EndTime})
	}

	if staffID != "" && e.deps.TimeOff != nil {
		offs, err := e.deps.TimeOff.FindOverlapping(ctx, salonID, staffID, from, to)
		if err != nil {
			return nil, fmt.Errorf("load time off: %w", err)
		}
		for _, o := range offs {
			busy = append(busy, availability.Interval{Start: o.StartTime, End: o.EndTime})
		}
	}
	return busy, nil
}

// activeService resolves a service and enforces catalog constraints.
func (e *Engine) activeService(ctx context.Context, salonID, serviceID string) (model.Service, error) {
	svc, err := e.deps.Services.Get(ctx, salonID, serviceID)
	if err != nil {
		return model.Service{}, fmt.Errorf("%w: service %s", ErrNotFound, serviceID)
	}
	if !svc.IsActive {
		return model.Service{}, fmt.Errorf("%w: service %s is inactive", ErrNotFound, serviceID)
	}
	if svc.DurationMins <= 0 {
		return model.Service{}, fmt.Errorf("%w: service %s has non-positive duration", ErrPolicyViolation, serviceID)
	}
	if svc.PriceCents < 0 {
		return model.Service{}, fmt.Errorf("%w: service %s has negative price", ErrPolicyViolation, serviceID)
	}
	return svc, nil
}

func (e *Engine) find(ctx context.Context, id string) (model.Appointment, error) {
	if id == "" {
		return model.Appointment{}, fmt.Errorf("%w: missing appointment id", ErrNotFound)
	}
	appt, err := e.deps.Appointments.FindByID(ctx, id)
	if err != nil {
		if e.deps.Appointments.IsNotFound(err) {
			return model.Appointment{}, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
		}
		return model.Appointment{}, fmt.Errorf("load appointment: %w", err)
	}
	return appt, nil
}

// planReminders persists reminders for an appointment. Best-effort: a
// failure is logged and never fails the booking.
func (e *Engine) planReminders(ctx context.Context, appt model.Appointment) {
	offsets := reminders.DefaultOffsets
	if profile, err := e.deps.Salons.Get(ctx, appt.SalonID); err == nil {
		offsets = reminders.OffsetsFromMinutes(profile.ReminderOffsetsMins)
	} else {
		e.log.Warn("salon profile fetch failed; using default reminder offsets", "err", err)
	}

	rs := reminders.Build(appt, offsets, e.now())
	if len(rs) == 0 {
		return
	}
	if err := e.deps.Reminders.CreateMany(ctx, rs); err != nil {
		e.log.Warn("reminder creation failed", "err", err, "appointment_id", appt.ID)
	}
}

func (e *Engine) dropReminders(ctx context.Context, appointmentID string, onlyUnsent bool) {
	if err := e.deps.Reminders.DeleteForAppointment(ctx, appointmentID, onlyUnsent); err != nil {
		e.log.Warn("reminder cleanup failed", "err", err, "appointment_id", appointmentID)
	}
}

func (e *Engine) notify(ctx context.Context, event string, appt model.Appointment) {
	if e.deps.Notifier == nil {
		return
	}
	if err := e.deps.Notifier.Notify(ctx, event, appt); err != nil {
		e.log.Warn("notification failed", "err", err, "event", event, "appointment_id", appt.ID)
	}
}

func (e *Engine) chargeFee(ctx context.Context, appt model.Appointment, amountCents int64, reason string) {
	if e.deps.Charger == nil || amountCents <= 0 {
		return
	}
	if err := e.deps.Charger.ChargeFee(ctx, appt, amountCents, reason); err != nil {
		e.log.Warn("fee charge failed", "err", err, "appointment_id", appt.ID, "amount_cents", amountCents)
	}
}

func salonLocation(p model.SalonProfile) *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
