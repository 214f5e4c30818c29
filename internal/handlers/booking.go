package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avelar-dev/salonbook/internal/engine"
	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/internal/storage"
)

// BookingHandler exposes slot listing and the appointment lifecycle over
// HTTP. All writes go through the scheduling engine; the handler only
// parses, validates shape and maps errors.
type BookingHandler struct {
	engine *engine.Engine
	appts  *storage.AppointmentRepository
	logger *slog.Logger
}

func NewBookingHandler(eng *engine.Engine, appts *storage.AppointmentRepository, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{engine: eng, appts: appts, logger: logger}
}

func (h *BookingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/public/slots", h.Slots)
	mux.HandleFunc("/api/v1/public/book", h.Book)
	mux.HandleFunc("/api/v1/appointments", h.List)
	mux.HandleFunc("/api/v1/appointments/get", h.Get)
	mux.HandleFunc("/api/v1/appointments/confirm", h.Confirm)
	mux.HandleFunc("/api/v1/appointments/cancel", h.Cancel)
	mux.HandleFunc("/api/v1/appointments/complete", h.Complete)
	mux.HandleFunc("/api/v1/appointments/no-show", h.NoShow)
	mux.HandleFunc("/api/v1/appointments/reschedule", h.Reschedule)
	mux.HandleFunc("/api/v1/appointments/update", h.Update)
}

type slotItem struct {
	StaffID   string `json:"staff_id,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type appointmentItem struct {
	AppointmentID        string `json:"appointment_id"`
	SalonID              string `json:"salon_id"`
	ServiceID            string `json:"service_id"`
	StaffID              string `json:"staff_id,omitempty"`
	UserID               string `json:"user_id"`
	CustomerName         string `json:"customer_name"`
	CustomerEmail        string `json:"customer_email"`
	CustomerPhone        string `json:"customer_phone,omitempty"`
	StartTime            string `json:"start_time"`
	EndTime              string `json:"end_time"`
	Status               string `json:"status"`
	PriceCents           int64  `json:"price_cents"`
	CancellationReason   string `json:"cancellation_reason,omitempty"`
	CancellationFeeCents int64  `json:"cancellation_fee_cents,omitempty"`
	NoShowFeeCents       int64  `json:"no_show_fee_cents,omitempty"`
	Notes                string `json:"notes,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func toAppointmentItem(appt model.Appointment) appointmentItem {
	return appointmentItem{
		AppointmentID:        appt.ID,
		SalonID:              appt.SalonID,
		ServiceID:            appt.ServiceID,
		StaffID:              appt.StaffID,
		UserID:               appt.UserID,
		CustomerName:         appt.CustomerName,
		CustomerEmail:        appt.CustomerEmail,
		CustomerPhone:        appt.CustomerPhone,
		StartTime:            appt.StartTime.UTC().Format(time.RFC3339),
		EndTime:              appt.EndTime.UTC().Format(time.RFC3339),
		Status:               string(appt.Status),
		PriceCents:           appt.PriceCents,
		CancellationReason:   appt.CancellationReason,
		CancellationFeeCents: appt.CancellationFeeCents,
		NoShowFeeCents:       appt.NoShowFeeCents,
		Notes:                appt.Notes,
		CreatedAt:            appt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            appt.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	salonID := strings.TrimSpace(q.Get("salon_id"))
	serviceID := strings.TrimSpace(q.Get("service_id"))
	staffID := strings.TrimSpace(q.Get("staff_id"))
	date := strings.TrimSpace(q.Get("date"))
	if salonID == "" || serviceID == "" || date == "" {
		http.Error(w, "salon_id, service_id and date are required", http.StatusBadRequest)
		return
	}

	slots, err := h.engine.ListAvailableSlots(r.Context(), salonID, date, serviceID, staffID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StaffID:   s.StaffID,
			StartTime: s.StartTime.Format(time.RFC3339),
			EndTime:   s.EndTime.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type bookRequest struct {
	SalonID       string `json:"salon_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	UserID        string `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	StartTime     string `json:"start_time"`
	Notes         string `json:"notes"`
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.SalonID = strings.TrimSpace(req.SalonID)
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.SalonID == "" || req.ServiceID == "" || req.UserID == "" || req.CustomerName == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	appt, err := h.engine.Book(r.Context(), engine.BookRequest{
		SalonID:       req.SalonID,
		ServiceID:     req.ServiceID,
		StaffID:       strings.TrimSpace(req.StaffID),
		UserID:        req.UserID,
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		StartTime:     start,
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentItem(appt))
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	salonID := strings.TrimSpace(q.Get("salon_id"))
	userID := strings.TrimSpace(q.Get("user_id"))
	if salonID == "" && userID == "" {
		http.Error(w, "salon_id or user_id required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var (
		appts []model.Appointment
		err   error
	)
	if salonID != "" {
		appts, err = h.appts.ListBySalon(r.Context(), salonID, limit)
	} else {
		appts, err = h.appts.ListByUser(r.Context(), userID, limit)
	}
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, toAppointmentItem(appt))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("appointment_id"))
	if id == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	appt, err := h.engine.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

type transitionRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(req transitionRequest) (model.Appointment, error) {
		return h.engine.Confirm(r.Context(), req.AppointmentID)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(req transitionRequest) (model.Appointment, error) {
		return h.engine.Cancel(r.Context(), req.AppointmentID, req.Reason)
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(req transitionRequest) (model.Appointment, error) {
		return h.engine.Complete(r.Context(), req.AppointmentID)
	})
}

func (h *BookingHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(req transitionRequest) (model.Appointment, error) {
		return h.engine.NoShow(r.Context(), req.AppointmentID)
	})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, op func(transitionRequest) (model.Appointment, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := op(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

type rescheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	StartTime     string `json:"start_time"`
	StaffID       string `json:"staff_id"`
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	appt, err := h.engine.Reschedule(r.Context(), req.AppointmentID, start, strings.TrimSpace(req.StaffID))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

type updateRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Notes         *string `json:"notes"`
	StaffID       *string `json:"staff_id"`
	ServiceID     *string `json:"service_id"`
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	if req.Notes == nil && req.StaffID == nil && req.ServiceID == nil {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	appt, err := h.engine.Update(r.Context(), req.AppointmentID, engine.UpdateRequest{
		Notes:     req.Notes,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}
