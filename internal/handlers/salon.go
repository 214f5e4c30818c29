package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/internal/storage"
)

// SalonHandler exposes salon configuration: profile, catalog, staff,
// working hours and time off.
type SalonHandler struct {
	salons   *storage.SalonRepository
	services *storage.ServiceRepository
	hours    *storage.WorkingHoursRepository
	timeOff  *storage.TimeOffRepository
	logger   *slog.Logger
}

func NewSalonHandler(salons *storage.SalonRepository, services *storage.ServiceRepository, hours *storage.WorkingHoursRepository, timeOff *storage.TimeOffRepository, logger *slog.Logger) *SalonHandler {
	return &SalonHandler{
		salons:   salons,
		services: services,
		hours:    hours,
		timeOff:  timeOff,
		logger:   logger,
	}
}

func (h *SalonHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/salon/profile", h.Profile)
	mux.HandleFunc("/api/v1/salon/services", h.Services)
	mux.HandleFunc("/api/v1/salon/services/active", h.ServiceActive)
	mux.HandleFunc("/api/v1/salon/staff", h.Staff)
	mux.HandleFunc("/api/v1/salon/staff/active", h.StaffActive)
	mux.HandleFunc("/api/v1/salon/working-hours", h.WorkingHours)
	mux.HandleFunc("/api/v1/salon/time-off", h.TimeOff)
}

type profileBody struct {
	SalonID                string `json:"salon_id"`
	Name                   string `json:"name"`
	Timezone               string `json:"timezone"`
	ReminderOffsetsMinutes []int  `json:"reminder_offsets_minutes"`
	CancellationFeePercent *int   `json:"cancellation_fee_percent"`
	NoShowFeePercent       *int   `json:"no_show_fee_percent"`
}

func (h *SalonHandler) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salonID := strings.TrimSpace(r.URL.Query().Get("salon_id"))
		if salonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		p, err := h.salons.Get(r.Context(), salonID)
		if err != nil {
			http.Error(w, "failed to load profile", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, profileBody{
			SalonID:                p.SalonID,
			Name:                   p.Name,
			Timezone:               p.Timezone,
			ReminderOffsetsMinutes: p.ReminderOffsetsMins,
			CancellationFeePercent: p.CancellationFeePercent,
			NoShowFeePercent:       p.NoShowFeePercent,
		})

	case http.MethodPut, http.MethodPost:
		var req profileBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.SalonID = strings.TrimSpace(req.SalonID)
		if req.SalonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		if !validPercent(req.CancellationFeePercent) || !validPercent(req.NoShowFeePercent) {
			http.Error(w, "fee percentages must be between 0 and 100", http.StatusBadRequest)
			return
		}
		if req.Timezone != "" {
			if _, err := time.LoadLocation(req.Timezone); err != nil {
				http.Error(w, "invalid timezone", http.StatusBadRequest)
				return
			}
		}
		err := h.salons.UpdateProfile(r.Context(), model.SalonProfile{
			SalonID:                req.SalonID,
			Name:                   strings.TrimSpace(req.Name),
			Timezone:               strings.TrimSpace(req.Timezone),
			ReminderOffsetsMins:    req.ReminderOffsetsMinutes,
			CancellationFeePercent: req.CancellationFeePercent,
			NoShowFeePercent:       req.NoShowFeePercent,
		})
		if err != nil {
			http.Error(w, "failed to update profile", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func validPercent(p *int) bool {
	return p == nil || (*p >= 0 && *p <= 100)
}

type serviceBody struct {
	ServiceID       string `json:"service_id,omitempty"`
	SalonID         string `json:"salon_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
	IsActive        bool   `json:"is_active"`
}

func (h *SalonHandler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salonID := strings.TrimSpace(r.URL.Query().Get("salon_id"))
		if salonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		limit := parseLimit(r, 100)
		svcs, err := h.services.List(r.Context(), salonID, limit)
		if err != nil {
			http.Error(w, "failed to list services", http.StatusInternalServerError)
			return
		}
		items := make([]serviceBody, 0, len(svcs))
		for _, s := range svcs {
			items = append(items, serviceBody{
				ServiceID:       s.ID,
				SalonID:         s.SalonID,
				Name:            s.Name,
				DurationMinutes: s.DurationMins,
				PriceCents:      s.PriceCents,
				IsActive:        s.IsActive,
			})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req serviceBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.SalonID = strings.TrimSpace(req.SalonID)
		req.Name = strings.TrimSpace(req.Name)
		if req.SalonID == "" || req.Name == "" {
			http.Error(w, "salon_id and name required", http.StatusBadRequest)
			return
		}
		if req.DurationMinutes <= 0 || req.DurationMinutes > 8*60 {
			http.Error(w, "duration_minutes must be between 1 and 480", http.StatusBadRequest)
			return
		}
		if req.PriceCents < 0 {
			http.Error(w, "price_cents must not be negative", http.StatusBadRequest)
			return
		}
		svc, err := h.services.Create(r.Context(), model.Service{
			SalonID:      req.SalonID,
			Name:         req.Name,
			DurationMins: req.DurationMinutes,
			PriceCents:   req.PriceCents,
		})
		if err != nil {
			http.Error(w, "failed to create service", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, serviceBody{
			ServiceID:       svc.ID,
			SalonID:         svc.SalonID,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMins,
			PriceCents:      svc.PriceCents,
			IsActive:        svc.IsActive,
		})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type activeBody struct {
	SalonID  string `json:"salon_id"`
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

func (h *SalonHandler) ServiceActive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, func(req activeBody) error {
		return h.services.SetActive(r.Context(), req.SalonID, req.ID, req.IsActive)
	})
}

func (h *SalonHandler) StaffActive(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, func(req activeBody) error {
		return h.salons.SetStaffActive(r.Context(), req.SalonID, req.ID, req.IsActive)
	})
}

func (h *SalonHandler) setActive(w http.ResponseWriter, r *http.Request, apply func(activeBody) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req activeBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.SalonID = strings.TrimSpace(req.SalonID)
	req.ID = strings.TrimSpace(req.ID)
	if req.SalonID == "" || req.ID == "" {
		http.Error(w, "salon_id and id required", http.StatusBadRequest)
		return
	}
	if err := apply(req); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type staffBody struct {
	StaffID  string `json:"staff_id,omitempty"`
	SalonID  string `json:"salon_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func (h *SalonHandler) Staff(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salonID := strings.TrimSpace(r.URL.Query().Get("salon_id"))
		if salonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		staff, err := h.salons.ListStaff(r.Context(), salonID, parseLimit(r, 100))
		if err != nil {
			http.Error(w, "failed to list staff", http.StatusInternalServerError)
			return
		}
		items := make([]staffBody, 0, len(staff))
		for _, s := range staff {
			items = append(items, staffBody{StaffID: s.ID, SalonID: s.SalonID, Name: s.Name, IsActive: s.IsActive})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req staffBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.SalonID = strings.TrimSpace(req.SalonID)
		req.Name = strings.TrimSpace(req.Name)
		if req.SalonID == "" || req.Name == "" {
			http.Error(w, "salon_id and name required", http.StatusBadRequest)
			return
		}
		s, err := h.salons.CreateStaff(r.Context(), req.SalonID, req.Name)
		if err != nil {
			http.Error(w, "failed to create staff", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, staffBody{StaffID: s.ID, SalonID: s.SalonID, Name: s.Name, IsActive: s.IsActive})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type workingHoursBody struct {
	SalonID     string `json:"salon_id"`
	Weekday     int    `json:"weekday"`
	OpenMinute  int    `json:"open_minute"`
	CloseMinute int    `json:"close_minute"`
	Closed      bool   `json:"closed"`
}

func (h *SalonHandler) WorkingHours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		salonID := strings.TrimSpace(r.URL.Query().Get("salon_id"))
		if salonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		hours, err := h.hours.List(r.Context(), salonID)
		if err != nil {
			http.Error(w, "failed to list working hours", http.StatusInternalServerError)
			return
		}
		items := make([]workingHoursBody, 0, len(hours))
		for _, wh := range hours {
			items = append(items, workingHoursBody{
				SalonID:     wh.SalonID,
				Weekday:     int(wh.Weekday),
				OpenMinute:  wh.OpenMinute,
				CloseMinute: wh.CloseMinute,
				Closed:      wh.Closed,
			})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPut, http.MethodPost:
		var req workingHoursBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.SalonID = strings.TrimSpace(req.SalonID)
		if req.SalonID == "" {
			http.Error(w, "salon_id required", http.StatusBadRequest)
			return
		}
		if req.Weekday < 0 || req.Weekday > 6 {
			http.Error(w, "weekday must be 0 (Sunday) through 6 (Saturday)", http.StatusBadRequest)
			return
		}
		if !req.Closed {
			if req.OpenMinute < 0 || req.CloseMinute > 24*60 || req.OpenMinute >= req.CloseMinute {
				http.Error(w, "open_minute must precede close_minute within the day", http.StatusBadRequest)
				return
			}
		}
		err := h.hours.Upsert(r.Context(), model.WorkingHours{
			SalonID:     req.SalonID,
			Weekday:     time.Weekday(req.Weekday),
			OpenMinute:  req.OpenMinute,
			CloseMinute: req.CloseMinute,
			Closed:      req.Closed,
		})
		if err != nil {
			http.Error(w, "failed to update working hours", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type timeOffBody struct {
	TimeOffID string `json:"time_off_id,omitempty"`
	SalonID   string `json:"salon_id"`
	StaffID   string `json:"staff_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason,omitempty"`
}

func (h *SalonHandler) TimeOff(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		salonID := strings.TrimSpace(q.Get("salon_id"))
		staffID := strings.TrimSpace(q.Get("staff_id"))
		if salonID == "" || staffID == "" {
			http.Error(w, "salon_id and staff_id required", http.StatusBadRequest)
			return
		}
		from, to, err := parseRange(q.Get("from"), q.Get("to"))
		if err != nil {
			http.Error(w, "invalid from/to", http.StatusBadRequest)
			return
		}
		offs, err := h.timeOff.List(r.Context(), salonID, staffID, from, to, parseLimit(r, 100))
		if err != nil {
			http.Error(w, "failed to list time off", http.StatusInternalServerError)
			return
		}
		items := make([]timeOffBody, 0, len(offs))
		for _, t := range offs {
			items = append(items, timeOffBody{
				TimeOffID: t.ID,
				SalonID:   t.SalonID,
				StaffID:   t.StaffID,
				StartTime: t.StartTime.UTC().Format(time.RFC3339),
				EndTime:   t.EndTime.UTC().Format(time.RFC3339),
				Reason:    t.Reason,
			})
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req timeOffBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		req.SalonID = strings.TrimSpace(req.SalonID)
		req.StaffID = strings.TrimSpace(req.StaffID)
		if req.SalonID == "" || req.StaffID == "" {
			http.Error(w, "salon_id and staff_id required", http.StatusBadRequest)
			return
		}
		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			http.Error(w, "invalid end_time", http.StatusBadRequest)
			return
		}
		if !end.After(start) {
			http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
			return
		}
		t, err := h.timeOff.Create(r.Context(), model.TimeOff{
			SalonID:   req.SalonID,
			StaffID:   req.StaffID,
			StartTime: start.UTC(),
			EndTime:   end.UTC(),
			Reason:    strings.TrimSpace(req.Reason),
		})
		if err != nil {
			http.Error(w, "failed to create time off", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, timeOffBody{
			TimeOffID: t.ID,
			SalonID:   t.SalonID,
			StaffID:   t.StaffID,
			StartTime: t.StartTime.UTC().Format(time.RFC3339),
			EndTime:   t.EndTime.UTC().Format(time.RFC3339),
			Reason:    t.Reason,
		})

	case http.MethodDelete:
		q := r.URL.Query()
		salonID := strings.TrimSpace(q.Get("salon_id"))
		timeOffID := strings.TrimSpace(q.Get("time_off_id"))
		if salonID == "" || timeOffID == "" {
			http.Error(w, "salon_id and time_off_id required", http.StatusBadRequest)
			return
		}
		if err := h.timeOff.Delete(r.Context(), salonID, timeOffID); err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to delete time off", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func parseLimit(r *http.Request, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
		return n
	}
	return def
}

// parseRange defaults to the next 90 days when unset.
func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now
	to := now.AddDate(0, 3, 0)
	if s := strings.TrimSpace(fromRaw); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if s := strings.TrimSpace(toRaw); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to, nil
}
