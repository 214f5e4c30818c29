package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"

	"github.com/avelar-dev/salonbook/internal/model"
)

// StripeCharger collects cancellation and no-show fees as payment intents.
// The idempotency key is derived from the appointment and reason, so a
// retried call never double-charges.
type StripeCharger struct {
	secretKey string
	currency  string
	logger    *slog.Logger
}

func NewStripeCharger(secretKey, currency string, logger *slog.Logger) *StripeCharger {
	if currency == "" {
		currency = "usd"
	}
	return &StripeCharger{
		secretKey: strings.TrimSpace(secretKey),
		currency:  currency,
		logger:    logger,
	}
}

func (c *StripeCharger) ChargeFee(ctx context.Context, appt model.Appointment, amountCents int64, reason string) error {
	if c.secretKey == "" {
		return errors.New("stripe not configured (STRIPE_SECRET_KEY missing)")
	}
	if amountCents <= 0 {
		return nil
	}

	// stripe-go does not take a ctx on package-level calls; honor the
	// caller's deadline around the call instead.
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	stripe.Key = c.secretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.IdempotencyKey = stripe.String("fee:" + appt.ID + ":" + reason)
	params.AddMetadata("appointment_id", appt.ID)
	params.AddMetadata("salon_id", appt.SalonID)
	params.AddMetadata("user_id", appt.UserID)
	params.AddMetadata("reason", reason)

	pi, err := paymentintent.New(params)
	if err != nil {
		return err
	}
	c.logger.Info("fee payment intent created",
		"payment_intent_id", pi.ID,
		"appointment_id", appt.ID,
		"amount_cents", amountCents,
		"reason", reason)
	return nil
}

// NoopCharger stands in when Stripe is not configured. Fees stay recorded on
// the appointment row for out-of-band collection.
type NoopCharger struct {
	logger *slog.Logger
}

func NewNoopCharger(logger *slog.Logger) *NoopCharger {
	return &NoopCharger{logger: logger}
}

func (c *NoopCharger) ChargeFee(_ context.Context, appt model.Appointment, amountCents int64, reason string) error {
	c.logger.Info("fee recorded without charge (no payment provider)",
		"appointment_id", appt.ID, "amount_cents", amountCents, "reason", reason)
	return nil
}
