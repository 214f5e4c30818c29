package reminders

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelar-dev/salonbook/internal/model"
)

// DefaultOffsets are applied when a salon has not configured its own:
// one reminder a day before and one an hour before the appointment.
var DefaultOffsets = []time.Duration{24 * time.Hour, time.Hour}

// OffsetsFromMinutes converts a salon profile's configured minute offsets,
// dropping non-positive entries. An empty result falls back to DefaultOffsets.
func OffsetsFromMinutes(mins []int) []time.Duration {
	var offsets []time.Duration
	for _, m := range mins {
		if m <= 0 {
			continue
		}
		offsets = append(offsets, time.Duration(m)*time.Minute)
	}
	if len(offsets) == 0 {
		return DefaultOffsets
	}
	return offsets
}

// Plan derives reminder times from an appointment start, keeping only
// instants strictly after now. Reminders are never scheduled in the past.
func Plan(start time.Time, offsets []time.Duration, now time.Time) []time.Time {
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	var times []time.Time
	for _, off := range offsets {
		at := start.Add(-off)
		if !at.After(now) {
			continue
		}
		times = append(times, at)
	}
	return times
}

// Build materializes reminder rows for an appointment. The recipient is the
// customer's email; delivery channel selection beyond that belongs to the
// notifier.
func Build(appt model.Appointment, offsets []time.Duration, now time.Time) []model.Reminder {
	times := Plan(appt.StartTime, offsets, now)
	out := make([]model.Reminder, 0, len(times))
	for _, at := range times {
		out = append(out, model.Reminder{
			ID:            uuid.NewString(),
			AppointmentID: appt.ID,
			RemindAt:      at,
			Sent:          false,
			Channel:       model.ChannelEmail,
			Recipient:     appt.CustomerEmail,
		})
	}
	return out
}
