package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avelar-dev/salonbook/internal/engine"
	"github.com/avelar-dev/salonbook/internal/model"
)

var errMemNoRow = errors.New("mem: no rows")

// memStore is an in-memory engine.AppointmentStore for handler tests.
type memStore struct {
	byID   map[string]model.Appointment
	nextID int
}

func (m *memStore) Create(_ context.Context, appt model.Appointment) (model.Appointment, error) {
	m.nextID++
	appt.ID = fmt.Sprintf("appt-%d", m.nextID)
	m.byID[appt.ID] = appt
	return appt, nil
}

func (m *memStore) Update(_ context.Context, id string, upd engine.AppointmentUpdate) (model.Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return model.Appointment{}, errMemNoRow
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
	m.byID[id] = a
	return a, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (model.Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return model.Appointment{}, errMemNoRow
	}
	return a, nil
}

func (m *memStore) FindActive(_ context.Context, q engine.ActiveQuery) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range m.byID {
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

func (m *memStore) IsConflict(error) bool     { return false }
func (m *memStore) IsNotFound(err error) bool { return errors.Is(err, errMemNoRow) }

type memHours struct{}

func (memHours) Get(_ context.Context, salonID string, wd time.Weekday) (model.WorkingHours, error) {
	if wd == time.Saturday || wd == time.Sunday {
		return model.WorkingHours{SalonID: salonID, Weekday: wd, Closed: true}, nil
	}
	return model.WorkingHours{SalonID: salonID, Weekday: wd, OpenMinute: 540, CloseMinute: 1080}, nil
}

type memServices struct{}

func (memServices) Get(_ context.Context, salonID, serviceID string) (model.Service, error) {
	if serviceID != "svc-1" {
		return model.Service{}, errMemNoRow
	}
	return model.Service{ID: serviceID, SalonID: salonID, Name: "Haircut", DurationMins: 60, PriceCents: 10000, IsActive: true}, nil
}

type memSalons struct{}

func (memSalons) Get(_ context.Context, salonID string) (model.SalonProfile, error) {
	return model.SalonProfile{SalonID: salonID, Timezone: "UTC"}, nil
}

type memReminders struct{}

func (memReminders) CreateMany(context.Context, []model.Reminder) error       { return nil }
func (memReminders) DeleteForAppointment(context.Context, string, bool) error { return nil }

func newTestHandler() (*BookingHandler, *memStore, time.Time) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // monday
	store := &memStore{byID: map[string]model.Appointment{}}
	eng := engine.New(engine.Deps{
		Appointments: store,
		WorkingHours: memHours{},
		Services:     memServices{},
		Salons:       memSalons{},
		Reminders:    memReminders{},
	}, engine.Config{Now: func() time.Time { return now }})
	return NewBookingHandler(eng, nil, nil), store, now
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestBookHandler_Created(t *testing.T) {
	h, _, now := newTestHandler()
	start := now.Add(26 * time.Hour).Format(time.RFC3339)

	rr := postJSON(t, h.Book, fmt.Sprintf(
		`{"salon_id":"salon-1","service_id":"svc-1","user_id":"user-1","customer_name":"Kim","start_time":%q}`, start))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var got appointmentItem
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "scheduled" {
		t.Fatalf("expected scheduled, got %q", got.Status)
	}
	if got.PriceCents != 10000 {
		t.Fatalf("expected price 10000, got %d", got.PriceCents)
	}
	if got.StartTime != start {
		t.Fatalf("expected start %s, got %s", start, got.StartTime)
	}
}

func TestBookHandler_MethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.Book(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestBookHandler_BadJSON(t *testing.T) {
	h, _, _ := newTestHandler()
	if rr := postJSON(t, h.Book, `{not json`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBookHandler_MissingFields(t *testing.T) {
	h, _, _ := newTestHandler()
	if rr := postJSON(t, h.Book, `{"salon_id":"salon-1"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBookHandler_BadStartTime(t *testing.T) {
	h, _, _ := newTestHandler()
	rr := postJSON(t, h.Book,
		`{"salon_id":"salon-1","service_id":"svc-1","user_id":"user-1","customer_name":"Kim","start_time":"tomorrow"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBookHandler_OverlapIsConflict(t *testing.T) {
	h, _, now := newTestHandler()
	start := now.Add(26 * time.Hour).Format(time.RFC3339)
	body := fmt.Sprintf(
		`{"salon_id":"salon-1","service_id":"svc-1","staff_id":"staff-1","user_id":"user-1","customer_name":"Kim","start_time":%q}`, start)

	if rr := postJSON(t, h.Book, body); rr.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rr.Code)
	}
	if rr := postJSON(t, h.Book, body); rr.Code != http.StatusConflict {
		t.Fatalf("second booking: expected 409, got %d", rr.Code)
	}
}

func TestBookHandler_UnknownServiceIsNotFound(t *testing.T) {
	h, _, now := newTestHandler()
	start := now.Add(26 * time.Hour).Format(time.RFC3339)
	rr := postJSON(t, h.Book, fmt.Sprintf(
		`{"salon_id":"salon-1","service_id":"svc-x","user_id":"user-1","customer_name":"Kim","start_time":%q}`, start))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	h, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?appointment_id=nope", nil)
	rr := httptest.NewRecorder()
	h.Get(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSlotsHandler_RequiresParams(t *testing.T) {
	h, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?salon_id=salon-1", nil)
	rr := httptest.NewRecorder()
	h.Slots(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSlotsHandler_ListsOpenDay(t *testing.T) {
	h, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?salon_id=salon-1&service_id=svc-1&date=2026-03-03", nil)
	rr := httptest.NewRecorder()
	h.Slots(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var items []slotItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected slots on an open weekday")
	}
	if items[0].StartTime != "2026-03-03T09:00:00Z" {
		t.Fatalf("expected first slot at opening, got %s", items[0].StartTime)
	}
}

func TestSlotsHandler_ClosedDayIsEmptyArray(t *testing.T) {
	h, _, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?salon_id=salon-1&service_id=svc-1&date=2026-03-08", nil)
	rr := httptest.NewRecorder()
	h.Slots(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestCancelHandler_ReturnsFee(t *testing.T) {
	h, store, now := newTestHandler()
	start := now.Add(3 * time.Hour) // inside the late window
	store.byID["appt-1"] = model.Appointment{
		ID: "appt-1", SalonID: "salon-1", ServiceID: "svc-1",
		StartTime: start, EndTime: start.Add(time.Hour),
		Status: model.StatusConfirmed, PriceCents: 10000,
	}

	rr := postJSON(t, h.Cancel, `{"appointment_id":"appt-1","reason":"sick"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got appointmentItem
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != "cancelled" || got.CancellationFeeCents != 5000 {
		t.Fatalf("expected cancelled with 5000 cent fee, got %s / %d", got.Status, got.CancellationFeeCents)
	}
}

func TestTransitionHandler_InvalidStateIsConflict(t *testing.T) {
	h, store, now := newTestHandler()
	store.byID["appt-1"] = model.Appointment{
		ID: "appt-1", SalonID: "salon-1", ServiceID: "svc-1",
		StartTime: now, EndTime: now.Add(time.Hour),
		Status: model.StatusCompleted, PriceCents: 10000,
	}

	if rr := postJSON(t, h.Confirm, `{"appointment_id":"appt-1"}`); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestUpdateHandler_RejectsEmptyUpdate(t *testing.T) {
	h, _, _ := newTestHandler()
	if rr := postJSON(t, h.Update, `{"appointment_id":"appt-1"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRescheduleHandler_BadStartTime(t *testing.T) {
	h, _, _ := newTestHandler()
	if rr := postJSON(t, h.Reschedule, `{"appointment_id":"appt-1","start_time":"later"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
