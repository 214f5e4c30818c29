package policy

import (
	"testing"
	"time"

	"github.com/avelar-dev/salonbook/internal/model"
)

func TestCancellationFee_InsideLateWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		PriceCents: 10000,
		StartTime:  now.Add(3 * time.Hour),
	}

	fee := DefaultFees().CancellationFee(appt, model.SalonProfile{}, now)
	if fee != 5000 {
		t.Fatalf("expected 5000 cents, got %d", fee)
	}
}

func TestCancellationFee_OutsideLateWindowIsFree(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		PriceCents: 10000,
		StartTime:  now.Add(48 * time.Hour),
	}

	if fee := DefaultFees().CancellationFee(appt, model.SalonProfile{}, now); fee != 0 {
		t.Fatalf("expected free cancellation, got %d", fee)
	}
}

func TestCancellationFee_ExactThresholdIsFree(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		PriceCents: 10000,
		StartTime:  now.Add(24 * time.Hour),
	}

	if fee := DefaultFees().CancellationFee(appt, model.SalonProfile{}, now); fee != 0 {
		t.Fatalf("cancelling exactly at the threshold must be free, got %d", fee)
	}
}

func TestCancellationFee_AfterStartIsLate(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		PriceCents: 10000,
		StartTime:  now.Add(-time.Hour),
	}

	if fee := DefaultFees().CancellationFee(appt, model.SalonProfile{}, now); fee != 5000 {
		t.Fatalf("expected 5000 cents, got %d", fee)
	}
}

func TestCancellationFee_SalonOverride(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		PriceCents: 10000,
		StartTime:  now.Add(time.Hour),
	}
	pct := 25
	salon := model.SalonProfile{CancellationFeePercent: &pct}

	if fee := DefaultFees().CancellationFee(appt, salon, now); fee != 2500 {
		t.Fatalf("expected 2500 cents, got %d", fee)
	}
}

func TestNoShowFee_FullPriceByDefault(t *testing.T) {
	appt := model.Appointment{PriceCents: 8000}
	if fee := DefaultFees().NoShowFee(appt, model.SalonProfile{}); fee != 8000 {
		t.Fatalf("expected 8000 cents, got %d", fee)
	}
}

func TestNoShowFee_SalonOverride(t *testing.T) {
	appt := model.Appointment{PriceCents: 8000}
	pct := 50
	salon := model.SalonProfile{NoShowFeePercent: &pct}
	if fee := DefaultFees().NoShowFee(appt, salon); fee != 4000 {
		t.Fatalf("expected 4000 cents, got %d", fee)
	}
}

func TestPercentOf_NeverNegative(t *testing.T) {
	if got := percentOf(-500, 50); got != 0 {
		t.Fatalf("negative price must yield zero fee, got %d", got)
	}
	if got := percentOf(500, 0); got != 0 {
		t.Fatalf("zero percent must yield zero fee, got %d", got)
	}
	if got := percentOf(999, 50); got != 499 {
		t.Fatalf("expected truncation to 499, got %d", got)
	}
}
