package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/internal/notify"
	"github.com/avelar-dev/salonbook/internal/outbox"
	"github.com/avelar-dev/salonbook/internal/storage"
	"github.com/avelar-dev/salonbook/libs/db"
)

// Worker moves due reminders to the outbox. Claim, enqueue and mark-sent run
// in one transaction, so a crash replays the batch and the notifier's inbox
// absorbs any duplicates.
type Worker struct {
	pool      *db.Pool
	reminders *storage.ReminderRepository
	appts     *storage.AppointmentRepository
	services  *storage.ServiceRepository
	outbox    *outbox.Repository
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type Config struct {
	Interval  time.Duration
	BatchSize int
}

func NewWorker(pool *db.Pool, reminders *storage.ReminderRepository, appts *storage.AppointmentRepository, services *storage.ServiceRepository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Worker{
		pool:      pool,
		reminders: reminders,
		appts:     appts,
		services:  services,
		outbox:    outboxRepo,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder dispatch batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	due, err := w.reminders.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit(ctx)
	}

	var sent []string
	for _, rem := range due {
		appt, err := w.appts.FindByID(ctx, rem.AppointmentID)
		if err != nil {
			// Appointment gone; retire the reminder without an event.
			w.logger.Warn("reminder for missing appointment", "reminder_id", rem.ID, "appointment_id", rem.AppointmentID)
			sent = append(sent, rem.ID)
			continue
		}
		if !appt.Status.Active() {
			sent = append(sent, rem.ID)
			continue
		}

		serviceName := ""
		if svc, err := w.services.Get(ctx, appt.SalonID, appt.ServiceID); err == nil {
			serviceName = svc.Name
		}

		payload, err := json.Marshal(notify.ReminderDueEvent{
			ReminderID:    rem.ID,
			AppointmentID: rem.AppointmentID,
			SalonID:       appt.SalonID,
			Channel:       rem.Channel,
			Recipient:     recipient(rem, appt),
			RemindAt:      rem.RemindAt.UTC(),
			StartTime:     appt.StartTime.UTC(),
			CustomerName:  appt.CustomerName,
			ServiceName:   serviceName,
		})
		if err != nil {
			w.logger.Error("reminder payload marshal failed", "err", err, "reminder_id", rem.ID)
			continue
		}

		if err := w.outbox.Insert(ctx, tx, outbox.Event{
			AggregateType: "reminder",
			AggregateID:   rem.AppointmentID,
			EventType:     notify.TopicReminderDue,
			Payload:       payload,
		}); err != nil {
			w.logger.Error("reminder outbox enqueue failed", "err", err, "reminder_id", rem.ID)
			continue
		}
		sent = append(sent, rem.ID)
	}

	if err := w.reminders.MarkSent(ctx, tx, sent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func recipient(rem model.Reminder, appt model.Appointment) string {
	if rem.Recipient != "" {
		return rem.Recipient
	}
	if rem.Channel == model.ChannelSMS {
		return appt.CustomerPhone
	}
	return appt.CustomerEmail
}
