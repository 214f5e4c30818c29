package notify

import (
	"context"
	"encoding/json"

	"github.com/avelar-dev/salonbook/libs/db"
)

// Delivery is one attempted notification, recorded for support queries.
type Delivery struct {
	AppointmentID string
	SalonID       string
	Channel       string
	Recipient     string
	Payload       map[string]any
	Status        string
}

type LogRepository struct {
	pool *db.Pool
}

func NewLogRepository(pool *db.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

func (r *LogRepository) Insert(ctx context.Context, d Delivery) error {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (appointment_id, salon_id, channel, recipient, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.AppointmentID, d.SalonID, d.Channel, d.Recipient, payload, d.Status)
	return err
}
