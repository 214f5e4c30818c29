package policy

import (
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
)

// Defaults applied when a salon has not configured its own percentages.
const (
	DefaultLateCancellationThresholdHours = 24
	DefaultCancellationFeePercent         = 50
	DefaultNoShowFeePercent               = 100
)

// Fees computes cancellation and no-show charges. Pure and deterministic for
// a fixed (price, now, percentage) input.
type Fees struct {
	LateCancellationThreshold time.Duration
	CancellationFeePercent    int
	NoShowFeePercent          int
}

func DefaultFees() Fees {
	return Fees{
		LateCancellationThreshold: DefaultLateCancellationThresholdHours * time.Hour,
		CancellationFeePercent:    DefaultCancellationFeePercent,
		NoShowFeePercent:          DefaultNoShowFeePercent,
	}
}

// CancellationFee charges a percentage of the appointment price when the
// cancellation lands inside the late window before start. Cancelling after
// the start time is late by definition. Earlier cancellations are free.
func (f Fees) CancellationFee(appt model.Appointment, salon model.SalonProfile, now time.Time) int64 {
	untilStart := appt.StartTime.Sub(now)
	if untilStart >= f.LateCancellationThreshold {
		return 0
	}
	pct := f.CancellationFeePercent
	if salon.CancellationFeePercent != nil {
		pct = *salon.CancellationFeePercent
	}
	return percentOf(appt.PriceCents, pct)
}

// NoShowFee always charges the configured percentage regardless of when the
// no-show was recorded.
func (f Fees) NoShowFee(appt model.Appointment, salon model.SalonProfile) int64 {
	pct := f.NoShowFeePercent
	if salon.NoShowFeePercent != nil {
		pct = *salon.NoShowFeePercent
	}
	return percentOf(appt.PriceCents, pct)
}

func percentOf(cents int64, pct int) int64 {
	if cents <= 0 || pct <= 0 {
		return 0
	}
	return cents * int64(pct) / 100
}
