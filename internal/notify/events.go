package notify

import "time"

// TopicReminderDue carries reminders claimed by the dispatch worker to the
// notifier process.
const TopicReminderDue = "booking.reminder.due.v1"

// AppointmentEvent is the JSON payload of every appointment lifecycle event.
// A full snapshot rather than a delta, so consumers never need a read-back.
type AppointmentEvent struct {
	AppointmentID string    `json:"appointment_id"`
	SalonID       string    `json:"salon_id"`
	ServiceID     string    `json:"service_id"`
	StaffID       string    `json:"staff_id,omitempty"`
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	PriceCents    int64     `json:"price_cents"`
	FeeCents      int64     `json:"fee_cents,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReminderDueEvent is the payload on TopicReminderDue.
type ReminderDueEvent struct {
	ReminderID    string    `json:"reminder_id"`
	AppointmentID string    `json:"appointment_id"`
	SalonID       string    `json:"salon_id"`
	Channel       string    `json:"channel"`
	Recipient     string    `json:"recipient"`
	RemindAt      time.Time `json:"remind_at"`
	StartTime     time.Time `json:"start_time"`
	CustomerName  string    `json:"customer_name"`
	ServiceName   string    `json:"service_name,omitempty"`
}
