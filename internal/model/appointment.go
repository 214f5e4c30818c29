package model

import "time"

// Appointment is the aggregate the scheduling engine operates on. All
// instants are UTC; money is integer cents.
type Appointment struct {
	ID                   string
	SalonID              string
	ServiceID            string
	StaffID              string // empty means "any staff"
	UserID               string
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	StartTime            time.Time
	EndTime              time.Time
	Status               Status
	PriceCents           int64
	CancellationReason   string
	CancellationFeeCents int64
	NoShowFeeCents       int64
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Service is a bookable offering. Duration and price are captured onto the
// appointment at booking time; later catalog edits never alter past bookings.
type Service struct {
	ID           string
	SalonID      string
	Name         string
	DurationMins int
	PriceCents   int64
	IsActive     bool
	CreatedAt    time.Time
}

// WorkingHours is one salon's window for one weekday, as minutes from local
// midnight. When Closed is true the minute fields are meaningless.
type WorkingHours struct {
	SalonID     string
	Weekday     time.Weekday
	OpenMinute  int
	CloseMinute int
	Closed      bool
}

// SalonProfile carries per-salon configuration the engine consults: the
// salon's timezone, reminder offsets and fee overrides. Nil percentages fall
// back to the engine defaults.
type SalonProfile struct {
	SalonID                string
	Name                   string
	Timezone               string
	ReminderOffsetsMins    []int
	CancellationFeePercent *int
	NoShowFeePercent       *int
}

// Reminder is owned by its appointment. Sent reminders are history and
// survive cancellation; unsent ones are dropped when the appointment leaves
// its scheduled window.
type Reminder struct {
	ID            string
	AppointmentID string
	RemindAt      time.Time
	Sent          bool
	Channel       string // email, sms, push
	Recipient     string
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelPush  = "push"
)

// TimeOff blocks a staff member's interval the same way an active
// appointment does.
type TimeOff struct {
	ID        string
	SalonID   string
	StaffID   string
	StartTime time.Time
	EndTime   time.Time
	Reason    string
	CreatedAt time.Time
}

// Staff is a bookable member of a salon.
type Staff struct {
	ID       string
	SalonID  string
	Name     string
	IsActive bool
}

// TimeSlot is a transient candidate interval returned by slot listing. It is
// never persisted.
type TimeSlot struct {
	SalonID   string
	StaffID   string
	StartTime time.Time
	EndTime   time.Time
}
