package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/libs/db"
)

// Defaults when a salon has not seeded a schedule: Mon-Fri 09:00-18:00.
const (
	defaultOpenMinute  = 540
	defaultCloseMinute = 1080
)

// WorkingHoursRepository persists per-salon weekday windows.
type WorkingHoursRepository struct {
	pool *db.Pool
}

func NewWorkingHoursRepository(pool *db.Pool) *WorkingHoursRepository {
	return &WorkingHoursRepository{pool: pool}
}

// Get falls back to the default weekday schedule for salons that never
// configured hours, so a fresh salon is bookable out of the box.
func (r *WorkingHoursRepository) Get(ctx context.Context, salonID string, weekday time.Weekday) (model.WorkingHours, error) {
	var wh model.WorkingHours
	var wd int
	err := r.pool.QueryRow(ctx, `
		SELECT salon_id, weekday, open_minute, close_minute, closed
		FROM working_hours
		WHERE salon_id = $1 AND weekday = $2
	`, salonID, int(weekday)).Scan(&wh.SalonID, &wd, &wh.OpenMinute, &wh.CloseMinute, &wh.Closed)
	if err == nil {
		wh.Weekday = time.Weekday(wd)
		return wh, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WorkingHours{
			SalonID:     salonID,
			Weekday:     weekday,
			OpenMinute:  defaultOpenMinute,
			CloseMinute: defaultCloseMinute,
			Closed:      weekday == time.Saturday || weekday == time.Sunday,
		}, nil
	}
	return model.WorkingHours{}, err
}

func (r *WorkingHoursRepository) List(ctx context.Context, salonID string) ([]model.WorkingHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT salon_id, weekday, open_minute, close_minute, closed
		FROM working_hours
		WHERE salon_id = $1
		ORDER BY weekday ASC
	`, salonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WorkingHours
	for rows.Next() {
		var wh model.WorkingHours
		var wd int
		if err := rows.Scan(&wh.SalonID, &wd, &wh.OpenMinute, &wh.CloseMinute, &wh.Closed); err != nil {
			return nil, err
		}
		wh.Weekday = time.Weekday(wd)
		out = append(out, wh)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *WorkingHoursRepository) Upsert(ctx context.Context, wh model.WorkingHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO working_hours (salon_id, weekday, open_minute, close_minute, closed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (salon_id, weekday) DO UPDATE
		SET open_minute = EXCLUDED.open_minute,
			close_minute = EXCLUDED.close_minute,
			closed = EXCLUDED.closed
	`, wh.SalonID, int(wh.Weekday), wh.OpenMinute, wh.CloseMinute, wh.Closed)
	return err
}

// TimeOffRepository persists staff blackout intervals.
type TimeOffRepository struct {
	pool *db.Pool
}

func NewTimeOffRepository(pool *db.Pool) *TimeOffRepository {
	return &TimeOffRepository{pool: pool}
}

func (r *TimeOffRepository) Create(ctx context.Context, t model.TimeOff) (model.TimeOff, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO staff_time_off (id, salon_id, staff_id, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, t.ID, t.SalonID, t.StaffID, t.StartTime, t.EndTime, t.Reason).Scan(&t.CreatedAt)
	if err != nil {
		return model.TimeOff{}, err
	}
	return t, nil
}

// FindOverlapping returns blackout intervals intersecting [from, to) for one
// staff member. Half-open semantics: touching intervals do not intersect.
func (r *TimeOffRepository) FindOverlapping(ctx context.Context, salonID, staffID string, from, to time.Time) ([]model.TimeOff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, salon_id, staff_id, start_time, end_time, reason, created_at
		FROM staff_time_off
		WHERE salon_id = $1
			AND staff_id = $2
			AND start_time < $4
			AND end_time > $3
		ORDER BY start_time ASC
	`, salonID, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeOff
	for rows.Next() {
		var t model.TimeOff
		if err := rows.Scan(&t.ID, &t.SalonID, &t.StaffID, &t.StartTime, &t.EndTime, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *TimeOffRepository) List(ctx context.Context, salonID, staffID string, from, to time.Time, limit int) ([]model.TimeOff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, salon_id, staff_id, start_time, end_time, reason, created_at
		FROM staff_time_off
		WHERE salon_id = $1
			AND staff_id = $2
			AND end_time > $3
			AND start_time < $4
		ORDER BY start_time ASC
		LIMIT $5
	`, salonID, staffID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TimeOff
	for rows.Next() {
		var t model.TimeOff
		if err := rows.Scan(&t.ID, &t.SalonID, &t.StaffID, &t.StartTime, &t.EndTime, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *TimeOffRepository) Delete(ctx context.Context, salonID, timeOffID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM staff_time_off
		WHERE salon_id = $1 AND id = $2
	`, salonID, timeOffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
