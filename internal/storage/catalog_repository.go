package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/libs/db"
)

// ServiceRepository persists the per-salon service catalog.
type ServiceRepository struct {
	pool *db.Pool
}

func NewServiceRepository(pool *db.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) Create(ctx context.Context, svc model.Service) (model.Service, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	svc.IsActive = true
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, salon_id, name, duration_minutes, price_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, svc.ID, svc.SalonID, svc.Name, svc.DurationMins, svc.PriceCents, svc.IsActive).Scan(&svc.CreatedAt)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) Get(ctx context.Context, salonID, serviceID string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id, salon_id, name, duration_minutes, price_cents, is_active, created_at
		FROM services
		WHERE salon_id = $1 AND id = $2
	`, salonID, serviceID).Scan(
		&svc.ID, &svc.SalonID, &svc.Name, &svc.DurationMins,
		&svc.PriceCents, &svc.IsActive, &svc.CreatedAt,
	)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

func (r *ServiceRepository) List(ctx context.Context, salonID string, limit int) ([]model.Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, salon_id, name, duration_minutes, price_cents, is_active, created_at
		FROM services
		WHERE salon_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, salonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var svc model.Service
		if err := rows.Scan(
			&svc.ID, &svc.SalonID, &svc.Name, &svc.DurationMins,
			&svc.PriceCents, &svc.IsActive, &svc.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ServiceRepository) SetActive(ctx context.Context, salonID, serviceID string, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET is_active = $3
		WHERE salon_id = $1 AND id = $2
	`, salonID, serviceID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
