package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/libs/db"
)

// SalonRepository persists per-salon configuration and staff.
type SalonRepository struct {
	pool *db.Pool
}

func NewSalonRepository(pool *db.Pool) *SalonRepository {
	return &SalonRepository{pool: pool}
}

// Get returns the salon profile, creating a default row on first access.
func (r *SalonRepository) Get(ctx context.Context, salonID string) (model.SalonProfile, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO salon_profiles (salon_id)
		VALUES ($1)
		ON CONFLICT (salon_id) DO NOTHING
	`, salonID)
	if err != nil {
		return model.SalonProfile{}, err
	}

	var p model.SalonProfile
	err = r.pool.QueryRow(ctx, `
		SELECT salon_id, name, timezone, reminder_offsets_minutes,
			cancellation_fee_percent, no_show_fee_percent
		FROM salon_profiles
		WHERE salon_id = $1
	`, salonID).Scan(
		&p.SalonID, &p.Name, &p.Timezone, &p.ReminderOffsetsMins,
		&p.CancellationFeePercent, &p.NoShowFeePercent,
	)
	return p, err
}

func (r *SalonRepository) UpdateProfile(ctx context.Context, p model.SalonProfile) error {
	if len(p.ReminderOffsetsMins) == 0 {
		p.ReminderOffsetsMins = []int{1440, 60}
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO salon_profiles
			(salon_id, name, timezone, reminder_offsets_minutes, cancellation_fee_percent, no_show_fee_percent)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (salon_id) DO UPDATE
		SET name = EXCLUDED.name,
			timezone = EXCLUDED.timezone,
			reminder_offsets_minutes = EXCLUDED.reminder_offsets_minutes,
			cancellation_fee_percent = EXCLUDED.cancellation_fee_percent,
			no_show_fee_percent = EXCLUDED.no_show_fee_percent,
			updated_at = now()
	`, p.SalonID, p.Name, p.Timezone, p.ReminderOffsetsMins, p.CancellationFeePercent, p.NoShowFeePercent)
	return err
}

func (r *SalonRepository) CreateStaff(ctx context.Context, salonID, name string) (model.Staff, error) {
	s := model.Staff{ID: uuid.NewString(), SalonID: salonID, Name: name, IsActive: true}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, salon_id, name, is_active)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.SalonID, s.Name, s.IsActive)
	if err != nil {
		return model.Staff{}, err
	}
	return s, nil
}

func (r *SalonRepository) SetStaffActive(ctx context.Context, salonID, staffID string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET is_active = $3
		WHERE salon_id = $1 AND id = $2
	`, salonID, staffID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SalonRepository) ListStaff(ctx context.Context, salonID string, limit int) ([]model.Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, salon_id, name, is_active
		FROM staff
		WHERE salon_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, salonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.SalonID, &s.Name, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
