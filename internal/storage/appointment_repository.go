package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelar-dev/salonbook/internal/engine"
	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/libs/db"
)

var errUnassignedOverlap = errors.New("unassigned staff slot overlap")

const appointmentColumns = `
	id, salon_id, service_id, staff_id, user_id,
	customer_name, customer_email, customer_phone,
	start_time, end_time, status, price_cents,
	COALESCE(cancellation_reason, ''), cancellation_fee_cents, no_show_fee_cents,
	COALESCE(notes, ''), created_at, updated_at`

// AppointmentRepository persists appointments. The appointments table carries
// an exclusion constraint over (salon_id, staff_id, interval) for active
// statuses; the cross-staff interplay of unassigned rows (staff_id = '')
// crosses that constraint's equality, so writes that place an interval take a
// per-salon advisory lock and check it explicitly. Both paths surface
// through IsConflict.
type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const updateAppointmentSQL = `
	UPDATE appointments
	SET start_time = COALESCE($2, start_time),
		end_time = COALESCE($3, end_time),
		staff_id = COALESCE($4, staff_id),
		service_id = COALESCE($5, service_id),
		status = COALESCE($6, status),
		price_cents = COALESCE($7, price_cents),
		cancellation_reason = COALESCE($8, cancellation_reason),
		cancellation_fee_cents = COALESCE($9, cancellation_fee_cents),
		no_show_fee_cents = COALESCE($10, no_show_fee_cents),
		notes = COALESCE($11, notes),
		updated_at = now()
	WHERE id = $1
	RETURNING` + appointmentColumns

func (r *AppointmentRepository) Create(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	if err := lockSalon(ctx, tx, appt.SalonID); err != nil {
		return model.Appointment{}, err
	}
	if err := checkUnassignedOverlap(ctx, tx, appt.SalonID, appt.ID, appt.StaffID, appt.StartTime, appt.EndTime); err != nil {
		return model.Appointment{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, salon_id, service_id, staff_id, user_id,
			 customer_name, customer_email, customer_phone,
			 start_time, end_time, status, price_cents, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING`+appointmentColumns+`
	`, appt.ID, appt.SalonID, appt.ServiceID, appt.StaffID, appt.UserID,
		appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
		appt.StartTime, appt.EndTime, string(appt.Status), appt.PriceCents, appt.Notes)
	created, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, err
	}
	return created, tx.Commit(ctx)
}

// Update applies all non-nil fields in one statement. COALESCE keeps the
// stored value when a parameter is NULL, so the write is atomic regardless
// of which fields the caller set. A change that moves the interval or the
// staff assignment runs under the salon advisory lock, same as Create.
func (r *AppointmentRepository) Update(ctx context.Context, id string, upd engine.AppointmentUpdate) (model.Appointment, error) {
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	args := []any{id, upd.StartTime, upd.EndTime, upd.StaffID, upd.ServiceID, status,
		upd.PriceCents, upd.CancellationReason, upd.CancellationFeeCents,
		upd.NoShowFeeCents, upd.Notes}

	if upd.StartTime == nil && upd.EndTime == nil && upd.StaffID == nil {
		return scanAppointment(r.pool.QueryRow(ctx, updateAppointmentSQL, args...))
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	// salon_id is immutable, so it can be read before the lock is taken.
	var salonID string
	if err := tx.QueryRow(ctx, `SELECT salon_id FROM appointments WHERE id = $1`, id).Scan(&salonID); err != nil {
		return model.Appointment{}, err
	}
	if err := lockSalon(ctx, tx, salonID); err != nil {
		return model.Appointment{}, err
	}

	current, err := scanAppointment(tx.QueryRow(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return model.Appointment{}, err
	}

	staff, start, end := current.StaffID, current.StartTime, current.EndTime
	if upd.StaffID != nil {
		staff = *upd.StaffID
	}
	if upd.StartTime != nil {
		start = *upd.StartTime
	}
	if upd.EndTime != nil {
		end = *upd.EndTime
	}
	if current.Status.Active() {
		if err := checkUnassignedOverlap(ctx, tx, salonID, id, staff, start, end); err != nil {
			return model.Appointment{}, err
		}
	}

	updated, err := scanAppointment(tx.QueryRow(ctx, updateAppointmentSQL, args...))
	if err != nil {
		return model.Appointment{}, err
	}
	return updated, tx.Commit(ctx)
}

func lockSalon(ctx context.Context, tx pgx.Tx, salonID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, salonID)
	return err
}

// checkUnassignedOverlap rejects an interval that collides with an active
// appointment across the unassigned boundary: an unassigned row blocks every
// staff member and every assigned row blocks the unassigned pool. The
// exclusion constraint cannot express this because it compares staff_id with
// equality; the salon advisory lock makes the read-then-insert safe.
func checkUnassignedOverlap(ctx context.Context, tx pgx.Tx, salonID, excludeID, staffID string, start, end time.Time) error {
	var overlaps bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE salon_id = $1
				AND id <> $2
				AND status NOT IN ('cancelled', 'no_show')
				AND staff_id <> $3
				AND (staff_id = '' OR $3::text = '')
				AND tstzrange(start_time, end_time, '[)') && tstzrange($4, $5, '[)')
		)
	`, salonID, excludeID, staffID, start, end).Scan(&overlaps)
	if err != nil {
		return err
	}
	if overlaps {
		return errUnassignedOverlap
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// FindActive returns the conflict set: appointments whose status still
// occupies the interval. A staff filter also matches unassigned rows, since
// those block every staff member.
func (r *AppointmentRepository) FindActive(ctx context.Context, q engine.ActiveQuery) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE salon_id = $1
			AND status NOT IN ('cancelled', 'no_show')
			AND ($2::text = '' OR staff_id = $2 OR staff_id = '')
			AND ($3::text = '' OR id <> $3)
		ORDER BY start_time ASC
	`, q.SalonID, q.StaffID, q.ExcludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) ListBySalon(ctx context.Context, salonID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE salon_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, salonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT`+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) IsConflict(err error) bool { return IsConflict(err) }
func (r *AppointmentRepository) IsNotFound(err error) bool { return IsNotFound(err) }

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var status string
	err := row.Scan(
		&appt.ID,
		&appt.SalonID,
		&appt.ServiceID,
		&appt.StaffID,
		&appt.UserID,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.StartTime,
		&appt.EndTime,
		&status,
		&appt.PriceCents,
		&appt.CancellationReason,
		&appt.CancellationFeeCents,
		&appt.NoShowFeeCents,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.Status(status)
	return appt, nil
}

// IsConflict reports a booking collision: an exclusion constraint violation
// (SQLSTATE 23P01) or the repository's own unassigned-overlap check.
func IsConflict(err error) bool {
	if errors.Is(err, errUnassignedOverlap) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
