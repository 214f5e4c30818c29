package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avelar-dev/salonbook/internal/consumer"
	"github.com/avelar-dev/salonbook/internal/inbox"
	"github.com/avelar-dev/salonbook/internal/notify"
	"github.com/avelar-dev/salonbook/libs/config"
	"github.com/avelar-dev/salonbook/libs/db"
	"github.com/avelar-dev/salonbook/libs/httpx"
	"github.com/avelar-dev/salonbook/libs/kafkax"
	otelx "github.com/avelar-dev/salonbook/libs/otel"
	"github.com/avelar-dev/salonbook/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "notifier")
	port, err := config.Port("PORT", "8082")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	logRepo := notify.NewLogRepository(pool)

	emailSender := notify.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@salonbook.local"),
	)

	var smsSender notify.SMSSender
	switch strings.ToLower(config.String("SMS_PROVIDER", "noop")) {
	case "webhook":
		smsSender = notify.NewWebhookSMSSender(config.String("SMS_WEBHOOK_URL", ""), config.String("SMS_WEBHOOK_TOKEN", ""))
	default:
		smsSender = notify.NewNoopSMSSender()
	}

	handleReminder := func(ctx context.Context, msg kafka.Message) error {
		var evt notify.ReminderDueEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if evt.AppointmentID == "" || evt.Recipient == "" {
			logger.Error("missing reminder fields", "appointment_id", evt.AppointmentID)
			return nil
		}

		status := "sent"
		subject := "Appointment reminder"
		body := reminderBody(evt)
		switch strings.ToLower(evt.Channel) {
		case "", "email":
			if err := emailSender.Send(evt.Recipient, subject, body); err != nil {
				status = "failed"
				logger.Error("email send failed", "err", err, "recipient", evt.Recipient)
			}
		case "sms":
			if err := smsSender.Send(ctx, evt.Recipient, body); err != nil {
				status = "failed"
				logger.Error("sms send failed", "err", err, "recipient", evt.Recipient)
			}
		default:
			status = "failed"
			logger.Error("unsupported channel", "channel", evt.Channel)
		}

		if err := logRepo.Insert(ctx, notify.Delivery{
			AppointmentID: evt.AppointmentID,
			SalonID:       evt.SalonID,
			Channel:       evt.Channel,
			Recipient:     evt.Recipient,
			Payload: map[string]any{
				"reminder_id":  evt.ReminderID,
				"start_time":   evt.StartTime.Format(time.RFC3339),
				"service_name": evt.ServiceName,
			},
			Status: status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}

		logger.Info("reminder processed", "appointment_id", evt.AppointmentID, "channel", evt.Channel, "status", status)
		return nil
	}

	handleLifecycle := func(ctx context.Context, msg kafka.Message) error {
		var evt notify.AppointmentEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Error("invalid appointment payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if evt.AppointmentID == "" || evt.CustomerEmail == "" {
			return nil
		}

		subject, body := lifecycleMessage(msg.Topic, evt)
		if subject == "" {
			return nil
		}

		status := "sent"
		if err := emailSender.Send(evt.CustomerEmail, subject, body); err != nil {
			status = "failed"
			logger.Error("email send failed", "err", err, "recipient", evt.CustomerEmail)
		}
		if err := logRepo.Insert(ctx, notify.Delivery{
			AppointmentID: evt.AppointmentID,
			SalonID:       evt.SalonID,
			Channel:       "email",
			Recipient:     evt.CustomerEmail,
			Payload:       map[string]any{"event": msg.Topic},
			Status:        status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}
		return nil
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notifier")
	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}

	startConsumer(notify.TopicReminderDue, handleReminder)
	for _, topic := range strings.Split(config.String("LIFECYCLE_TOPICS", "booking.appointment.booked.v1,booking.appointment.cancelled.v1,booking.appointment.rescheduled.v1"), ",") {
		startConsumer(strings.TrimSpace(topic), handleLifecycle)
	}

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notifier")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func reminderBody(evt notify.ReminderDueEvent) string {
	when := evt.StartTime.Format("Monday, January 2 at 15:04 MST")
	if evt.ServiceName != "" {
		return fmt.Sprintf("Hi %s, this is a reminder of your %s appointment on %s.", evt.CustomerName, evt.ServiceName, when)
	}
	return fmt.Sprintf("Hi %s, this is a reminder of your appointment on %s.", evt.CustomerName, when)
}

func lifecycleMessage(topic string, evt notify.AppointmentEvent) (string, string) {
	when := evt.StartTime.Format("Monday, January 2 at 15:04 MST")
	switch topic {
	case "booking.appointment.booked.v1":
		return "Appointment confirmed",
			fmt.Sprintf("Hi %s, your appointment is booked for %s.", evt.CustomerName, when)
	case "booking.appointment.rescheduled.v1":
		return "Appointment rescheduled",
			fmt.Sprintf("Hi %s, your appointment was moved to %s.", evt.CustomerName, when)
	case "booking.appointment.cancelled.v1":
		body := fmt.Sprintf("Hi %s, your appointment on %s was cancelled.", evt.CustomerName, when)
		if evt.FeeCents > 0 {
			body += fmt.Sprintf(" A cancellation fee of $%.2f applies.", float64(evt.FeeCents)/100)
		}
		return "Appointment cancelled", body
	default:
		return "", ""
	}
}
