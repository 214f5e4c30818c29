package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/libs/db"
)

// ReminderRepository persists reminder rows. The dispatch worker claims due
// rows with FOR UPDATE SKIP LOCKED so multiple workers never double-send.
type ReminderRepository struct {
	pool *db.Pool
}

func NewReminderRepository(pool *db.Pool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

func (r *ReminderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *ReminderRepository) CreateMany(ctx context.Context, rs []model.Reminder) error {
	if len(rs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rem := range rs {
		batch.Queue(`
			INSERT INTO reminders (id, appointment_id, remind_at, sent, channel, recipient)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, rem.ID, rem.AppointmentID, rem.RemindAt, rem.Sent, rem.Channel, rem.Recipient)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

// DeleteForAppointment removes an appointment's reminders. With onlyUnsent
// set, already-sent rows stay as delivery history.
func (r *ReminderRepository) DeleteForAppointment(ctx context.Context, appointmentID string, onlyUnsent bool) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM reminders
		WHERE appointment_id = $1
			AND (NOT $2::bool OR sent = false)
	`, appointmentID, onlyUnsent)
	return err
}

func (r *ReminderRepository) ListForAppointment(ctx context.Context, appointmentID string) ([]model.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, remind_at, sent, channel, recipient
		FROM reminders
		WHERE appointment_id = $1
		ORDER BY remind_at ASC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		var rem model.Reminder
		if err := rows.Scan(&rem.ID, &rem.AppointmentID, &rem.RemindAt, &rem.Sent, &rem.Channel, &rem.Recipient); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// FetchDue claims a batch of unsent due reminders inside the caller's
// transaction. Rows stay locked until commit.
func (r *ReminderRepository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]model.Reminder, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, appointment_id, remind_at, sent, channel, recipient
		FROM reminders
		WHERE sent = false AND remind_at <= now()
		ORDER BY remind_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reminder
	for rows.Next() {
		var rem model.Reminder
		if err := rows.Scan(&rem.ID, &rem.AppointmentID, &rem.RemindAt, &rem.Sent, &rem.Channel, &rem.Recipient); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ReminderRepository) MarkSent(ctx context.Context, tx pgx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE reminders
		SET sent = true, sent_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}
