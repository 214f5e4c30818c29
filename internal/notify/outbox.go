package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
	"github.com/avelar-dev/salonbook/internal/outbox"
)

// OutboxNotifier turns engine lifecycle events into outbox rows. Delivery to
// Kafka happens asynchronously through the publisher, so a broker outage
// never blocks a booking.
type OutboxNotifier struct {
	repo *outbox.Repository
	now  func() time.Time
}

func NewOutboxNotifier(repo *outbox.Repository) *OutboxNotifier {
	return &OutboxNotifier{repo: repo, now: time.Now}
}

func (n *OutboxNotifier) Notify(ctx context.Context, event string, appt model.Appointment) error {
	fee := appt.CancellationFeeCents
	if fee == 0 {
		fee = appt.NoShowFeeCents
	}
	payload, err := json.Marshal(AppointmentEvent{
		AppointmentID: appt.ID,
		SalonID:       appt.SalonID,
		ServiceID:     appt.ServiceID,
		StaffID:       appt.StaffID,
		UserID:        appt.UserID,
		CustomerName:  appt.CustomerName,
		CustomerEmail: appt.CustomerEmail,
		CustomerPhone: appt.CustomerPhone,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        string(appt.Status),
		PriceCents:    appt.PriceCents,
		FeeCents:      fee,
		Reason:        appt.CancellationReason,
		OccurredAt:    n.now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.repo.InsertOne(ctx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     event,
		Payload:       payload,
	})
}
