package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
)

var (
	errRowConflict = errors.New("fake: exclusion constraint")
	errNoRow       = errors.New("fake: no rows")
)

type fakeAppointments struct {
	byID      map[string]model.Appointment
	nextID    int
	createErr error
	updateErr error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{byID: map[string]model.Appointment{}}
}

func (f *fakeAppointments) Create(_ context.Context, appt model.Appointment) (model.Appointment, error) {
	if f.createErr != nil {
		return model.Appointment{}, f.createErr
	}
	if appt.ID == "" {
		f.nextID++
		appt.ID = fmt.Sprintf("appt-%d", f.nextID)
	}
	f.byID[appt.ID] = appt
	return appt, nil
}

func (f *fakeAppointments) Update(_ context.Context, id string, upd AppointmentUpdate) (model.Appointment, error) {
	if f.updateErr != nil {
		return model.Appointment{}, f.updateErr
	}
	a, ok := f.byID[id]
	if !ok {
		return model.Appointment{}, errNoRow
	}
	if upd.StartTime != nil {
		a.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		a.EndTime = *upd.EndTime
	}
	if upd.StaffID != nil {
		a.StaffID = *upd.StaffID
	}
	if upd.ServiceID != nil {
		a.ServiceID = *upd.ServiceID
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.PriceCents != nil {
		a.PriceCents = *upd.PriceCents
	}
	if upd.CancellationReason != nil {
		a.CancellationReason = *upd.CancellationReason
	}
	if upd.CancellationFeeCents != nil {
		a.CancellationFeeCents = *upd.CancellationFeeCents
	}
	if upd.NoShowFeeCents != nil {
		a.NoShowFeeCents = *upd.NoShowFeeCents
	}
	if upd.Notes != nil {
		a.Notes = *upd.Notes
	}
	f.byID[id] = a
	return a, nil
}

func (f *fakeAppointments) FindByID(_ context.Context, id string) (model.Appointment, error) {
	a, ok := f.byID[id]
	if !ok {
		return model.Appointment{}, errNoRow
	}
	return a, nil
}

func (f *fakeAppointments) FindActive(_ context.Context, q ActiveQuery) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range f.byID {
		if a.SalonID != q.SalonID || !a.Status.Active() {
			continue
		}
		if q.StaffID != "" && a.StaffID != q.StaffID && a.StaffID != "" {
			continue
		}
		if q.ExcludeID != "" && a.ID == q.ExcludeID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointments) IsConflict(err error) bool { return errors.Is(err, errRowConflict) }
func (f *fakeAppointments) IsNotFound(err error) bool { return errors.Is(err, errNoRow) }

type fakeHours struct{}

func (fakeHours) Get(_ context.Context, salonID string, wd time.Weekday) (model.WorkingHours, error) {
	if wd == time.Saturday || wd == time.Sunday {
		return model.WorkingHours{SalonID: salonID, Weekday: wd, Closed: true}, nil
	}
	return model.WorkingHours{SalonID: salonID, Weekday: wd, OpenMinute: 540, CloseMinute: 1080}, nil
}

type fakeServices struct {
	byID map[string]model.Service
}

func (f *fakeServices) Get(_ context.Context, salonID, serviceID string) (model.Service, error) {
	svc, ok := f.byID[serviceID]
	if !ok || svc.SalonID != salonID {
		return model.Service{}, errNoRow
	}
	return svc, nil
}

type fakeSalons struct {
	profile model.SalonProfile
}

func (f *fakeSalons) Get(_ context.Context, salonID string) (model.SalonProfile, error) {
	p := f.profile
	p.SalonID = salonID
	return p, nil
}

type fakeTimeOff struct {
	offs []model.TimeOff
}

func (f *fakeTimeOff) FindOverlapping(_ context.Context, salonID, staffID string, from, to time.Time) ([]model.TimeOff, error) {
	var out []model.TimeOff
	for _, o := range f.offs {
		if o.SalonID == salonID && o.StaffID == staffID && o.StartTime.Before(to) && from.Before(o.EndTime) {
			out = append(out, o)
		}
	}
	return out, nil
}

type reminderDelete struct {
	appointmentID string
	onlyUnsent    bool
}

type fakeReminders struct {
	created   []model.Reminder
	deletes   []reminderDelete
	createErr error
}

func (f *fakeReminders) CreateMany(_ context.Context, rs []model.Reminder) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rs...)
	return nil
}

func (f *fakeReminders) DeleteForAppointment(_ context.Context, appointmentID string, onlyUnsent bool) error {
	f.deletes = append(f.deletes, reminderDelete{appointmentID, onlyUnsent})
	return nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) Notify(_ context.Context, event string, _ model.Appointment) error {
	f.events = append(f.events, event)
	return nil
}

type charge struct {
	amountCents int64
	reason      string
}

type fakeCharger struct {
	charges []charge
}

func (f *fakeCharger) ChargeFee(_ context.Context, _ model.Appointment, amountCents int64, reason string) error {
	f.charges = append(f.charges, charge{amountCents, reason})
	return nil
}

type fixture struct {
	engine    *Engine
	appts     *fakeAppointments
	services  *fakeServices
	salons    *fakeSalons
	timeOff   *fakeTimeOff
	reminders *fakeReminders
	notifier  *fakeNotifier
	charger   *fakeCharger
	now       time.Time
}

// monday 2026-03-02 08:00 UTC; default hours are Mon-Fri 09:00-18:00.
func newFixture() *fixture {
	f := &fixture{
		appts: newFakeAppointments(),
		services: &fakeServices{byID: map[string]model.Service{
			"svc-cut": {ID: "svc-cut", SalonID: "salon-1", Name: "Haircut", DurationMins: 60, PriceCents: 10000, IsActive: true},
			"svc-dye": {ID: "svc-dye", SalonID: "salon-1", Name: "Coloring", DurationMins: 120, PriceCents: 20000, IsActive: true},
			"svc-old": {ID: "svc-old", SalonID: "salon-1", Name: "Retired", DurationMins: 30, PriceCents: 5000, IsActive: false},
		}},
		salons:    &fakeSalons{},
		timeOff:   &fakeTimeOff{},
		reminders: &fakeReminders{},
		notifier:  &fakeNotifier{},
		charger:   &fakeCharger{},
		now:       time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.engine = New(Deps{
		Appointments: f.appts,
		WorkingHours: fakeHours{},
		Services:     f.services,
		Salons:       f.salons,
		TimeOff:      f.timeOff,
		Reminders:    f.reminders,
		Notifier:     f.notifier,
		Charger:      f.charger,
	}, Config{Now: func() time.Time { return f.now }})
	return f
}

func (f *fixture) book(t *testing.T, start time.Time, staffID string) model.Appointment {
	t.Helper()
	appt, err := f.engine.Book(context.Background(), BookRequest{
		SalonID:       "salon-1",
		ServiceID:     "svc-cut",
		StaffID:       staffID,
		UserID:        "user-1",
		CustomerName:  "Kim",
		CustomerEmail: "kim@example.com",
		StartTime:     start,
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return appt
}

func TestBook_HappyPath(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour) // tuesday 10:00

	appt := f.book(t, start, "staff-1")

	if appt.Status != model.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", appt.Status)
	}
	if !appt.EndTime.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected end one hour after start, got %s", appt.EndTime)
	}
	if appt.PriceCents != 10000 {
		t.Fatalf("expected price captured from service, got %d", appt.PriceCents)
	}
	if len(f.reminders.created) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(f.reminders.created))
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0] != EventBooked {
		t.Fatalf("expected one %s event, got %v", EventBooked, f.notifier.events)
	}
}

func TestBook_OverlapRejected(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	f.book(t, start, "staff-1")

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", StaffID: "staff-1",
		UserID: "user-2", StartTime: start.Add(30 * time.Minute),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestBook_UnassignedAppointmentBlocksEveryStaff(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	f.book(t, start, "") // any staff

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", StaffID: "staff-2",
		UserID: "user-2", StartTime: start,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestBook_DifferentStaffDoNotConflict(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	f.book(t, start, "staff-1")

	if _, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", StaffID: "staff-2",
		UserID: "user-2", StartTime: start,
	}); err != nil {
		t.Fatalf("parallel staff booking should succeed: %v", err)
	}
}

func TestBook_ClosedDay(t *testing.T) {
	f := newFixture()
	sunday := time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", UserID: "user-1", StartTime: sunday,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on closed day, got %v", err)
	}
}

func TestBook_OutsideWorkingHours(t *testing.T) {
	f := newFixture()
	// tuesday 17:30 + 60min runs past the 18:00 close.
	start := time.Date(2026, 3, 3, 17, 30, 0, 0, time.UTC)

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", UserID: "user-1", StartTime: start,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict outside hours, got %v", err)
	}
}

func TestBook_InactiveService(t *testing.T) {
	f := newFixture()
	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-old", UserID: "user-1",
		StartTime: f.now.Add(26 * time.Hour),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for inactive service, got %v", err)
	}
}

func TestBook_StaffTimeOffBlocksSlot(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	f.timeOff.offs = []model.TimeOff{{
		SalonID: "salon-1", StaffID: "staff-1",
		StartTime: start.Add(-time.Hour), EndTime: start.Add(30 * time.Minute),
	}}

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", StaffID: "staff-1",
		UserID: "user-1", StartTime: start,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict during time off, got %v", err)
	}
}

func TestBook_ReminderFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.reminders.createErr = errors.New("reminder store down")

	appt := f.book(t, f.now.Add(26*time.Hour), "staff-1")
	if appt.ID == "" {
		t.Fatal("booking must survive a reminder failure")
	}
}

func TestBook_StorageConflictMapsToErrConflict(t *testing.T) {
	f := newFixture()
	f.appts.createErr = errRowConflict

	_, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", UserID: "user-1",
		StartTime: f.now.Add(26 * time.Hour),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCancel_LateFeeCharged(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")
	f.now = start.Add(-3 * time.Hour) // inside the 24h window

	updated, err := f.engine.Cancel(context.Background(), appt.ID, "customer request")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", updated.Status)
	}
	if updated.CancellationFeeCents != 5000 {
		t.Fatalf("expected 5000 cent fee, got %d", updated.CancellationFeeCents)
	}
	if updated.CancellationReason != "customer request" {
		t.Fatalf("unexpected reason %q", updated.CancellationReason)
	}
	if len(f.charger.charges) != 1 || f.charger.charges[0].amountCents != 5000 {
		t.Fatalf("expected one 5000 cent charge, got %v", f.charger.charges)
	}
	if len(f.reminders.deletes) != 1 || !f.reminders.deletes[0].onlyUnsent {
		t.Fatalf("cancel must delete only unsent reminders, got %v", f.reminders.deletes)
	}
}

func TestCancel_EarlyIsFree(t *testing.T) {
	f := newFixture()
	appt := f.book(t, f.now.Add(74*time.Hour), "staff-1")

	updated, err := f.engine.Cancel(context.Background(), appt.ID, "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.CancellationFeeCents != 0 {
		t.Fatalf("expected no fee, got %d", updated.CancellationFeeCents)
	}
	if len(f.charger.charges) != 0 {
		t.Fatalf("zero fee must not reach the charger, got %v", f.charger.charges)
	}
}

func TestCancel_FreesTheSlot(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")
	if _, err := f.engine.Cancel(context.Background(), appt.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.engine.Book(context.Background(), BookRequest{
		SalonID: "salon-1", ServiceID: "svc-cut", StaffID: "staff-1",
		UserID: "user-2", StartTime: start,
	}); err != nil {
		t.Fatalf("cancelled slot must be rebookable: %v", err)
	}
}

func TestNoShow_ChargesFullPrice(t *testing.T) {
	f := newFixture()
	appt := f.book(t, f.now.Add(26*time.Hour), "staff-1")

	updated, err := f.engine.NoShow(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("no-show: %v", err)
	}
	if updated.Status != model.StatusNoShow {
		t.Fatalf("expected no_show, got %s", updated.Status)
	}
	if updated.NoShowFeeCents != 10000 {
		t.Fatalf("expected full-price fee, got %d", updated.NoShowFeeCents)
	}
	if len(f.reminders.deletes) != 1 || f.reminders.deletes[0].onlyUnsent {
		t.Fatalf("no-show must drop all reminders, got %v", f.reminders.deletes)
	}
	if len(f.charger.charges) != 1 || f.charger.charges[0].reason != "no-show" {
		t.Fatalf("expected a no-show charge, got %v", f.charger.charges)
	}
}

func TestConfirmThenComplete(t *testing.T) {
	f := newFixture()
	appt := f.book(t, f.now.Add(26*time.Hour), "staff-1")

	confirmed, err := f.engine.Confirm(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	done, err := f.engine.Complete(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	if _, err := f.engine.Confirm(context.Background(), appt.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("confirming a completed appointment: expected ErrInvalidState, got %v", err)
	}
}

func TestReschedule_MovesAndReplansReminders(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")
	booked := len(f.reminders.created)

	newStart := start.Add(2 * time.Hour)
	updated, err := f.engine.Reschedule(context.Background(), appt.ID, newStart, "")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if updated.Status != model.StatusRescheduled {
		t.Fatalf("expected rescheduled, got %s", updated.Status)
	}
	if !updated.StartTime.Equal(newStart) || !updated.EndTime.Equal(newStart.Add(time.Hour)) {
		t.Fatalf("unexpected interval %s-%s", updated.StartTime, updated.EndTime)
	}
	if len(f.reminders.deletes) != 1 || f.reminders.deletes[0].onlyUnsent {
		t.Fatalf("reschedule must drop all old reminders, got %v", f.reminders.deletes)
	}
	if len(f.reminders.created) != booked+2 {
		t.Fatalf("expected reminders replanned from the new start, got %d total", len(f.reminders.created))
	}
}

func TestReschedule_PreservesBookedDuration(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")

	// The catalog is edited after booking; the appointment keeps the
	// 60-minute duration it was booked with.
	svc := f.services.byID["svc-cut"]
	svc.DurationMins = 90
	f.services.byID["svc-cut"] = svc

	newStart := start.Add(2 * time.Hour)
	updated, err := f.engine.Reschedule(context.Background(), appt.ID, newStart, "")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !updated.EndTime.Equal(newStart.Add(time.Hour)) {
		t.Fatalf("expected booked duration preserved, got end %s", updated.EndTime)
	}
}

func TestReschedule_ThenConfirmRejected(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")
	if _, err := f.engine.Reschedule(context.Background(), appt.ID, start.Add(2*time.Hour), ""); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	if _, err := f.engine.Confirm(context.Background(), appt.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("confirming a rescheduled appointment: expected ErrInvalidState, got %v", err)
	}
}

func TestReschedule_OverlappingOwnOldSlotIsFine(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")

	// Shift by 30 minutes: the new interval overlaps the old one, which must
	// not count as a conflict with itself.
	if _, err := f.engine.Reschedule(context.Background(), appt.ID, start.Add(30*time.Minute), ""); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
}

func TestReschedule_IntoAnotherBookingConflicts(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")
	f.book(t, start.Add(2*time.Hour), "staff-1")

	_, err := f.engine.Reschedule(context.Background(), appt.ID, start.Add(2*time.Hour), "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdate_NotesAllowedOnTerminalAppointment(t *testing.T) {
	f := newFixture()
	appt := f.book(t, f.now.Add(26*time.Hour), "staff-1")
	if _, err := f.engine.Complete(context.Background(), appt.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	notes := "client asked for a different stylist next time"
	updated, err := f.engine.Update(context.Background(), appt.ID, UpdateRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("notes-only update: %v", err)
	}
	if updated.Notes != notes {
		t.Fatalf("notes not applied: %q", updated.Notes)
	}

	staff := "staff-2"
	if _, err := f.engine.Update(context.Background(), appt.ID, UpdateRequest{StaffID: &staff}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("staff change on terminal: expected ErrInvalidState, got %v", err)
	}
}

func TestUpdate_ServiceChangeRecomputesEndAndPrice(t *testing.T) {
	f := newFixture()
	start := f.now.Add(26 * time.Hour)
	appt := f.book(t, start, "staff-1")

	svc := "svc-dye"
	updated, err := f.engine.Update(context.Background(), appt.ID, UpdateRequest{ServiceID: &svc})
	if err != nil {
		t.Fatalf("service change: %v", err)
	}
	if !updated.EndTime.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected end recomputed to 2h, got %s", updated.EndTime)
	}
	if updated.PriceCents != 20000 {
		t.Fatalf("expected price recaptured, got %d", updated.PriceCents)
	}
}

func TestGet_Missing(t *testing.T) {
	f := newFixture()
	if _, err := f.engine.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAvailableSlots_ClosedDayIsEmpty(t *testing.T) {
	f := newFixture()
	slots, err := f.engine.ListAvailableSlots(context.Background(), "salon-1", "2026-03-08", "svc-cut", "")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(slots))
	}
}

func TestListAvailableSlots_ExcludesBookedIntervals(t *testing.T) {
	f := newFixture()
	// staff-1 is booked tuesday 10:00-11:00.
	f.book(t, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), "staff-1")

	slots, err := f.engine.ListAvailableSlots(context.Background(), "salon-1", "2026-03-03", "svc-cut", "staff-1")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected some slots")
	}
	bookedStart := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	bookedEnd := time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)
	for _, s := range slots {
		if s.StartTime.Before(bookedEnd) && bookedStart.Before(s.EndTime) {
			t.Fatalf("slot %s-%s overlaps the booked interval", s.StartTime, s.EndTime)
		}
	}
	first := slots[0]
	if !first.StartTime.Equal(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first slot at opening, got %s", first.StartTime)
	}
	last := slots[len(slots)-1]
	if !last.EndTime.Equal(time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last slot to end at closing, got %s", last.EndTime)
	}
}

func TestListAvailableSlots_BadDate(t *testing.T) {
	f := newFixture()
	if _, err := f.engine.ListAvailableSlots(context.Background(), "salon-1", "03/02/2026", "svc-cut", ""); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestListAvailableSlots_BadDateRejectedBeforeLookups(t *testing.T) {
	f := newFixture()
	// Both the date and the service are bad; the malformed date wins because
	// input validation runs before any store access.
	_, err := f.engine.ListAvailableSlots(context.Background(), "salon-1", "not-a-date", "svc-missing", "")
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}
