// booking-sim books a test appointment against a running salonbook-api:
// it lists tomorrow's slots for a service, books the first one, and
// optionally cancels it again. Local development only.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		baseURL   = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "api base url")
		salonID   = flag.String("salon-id", getenv("SALON_ID", ""), "salon to book at")
		serviceID = flag.String("service-id", getenv("SERVICE_ID", ""), "service to book")
		staffID   = flag.String("staff-id", getenv("STAFF_ID", ""), "staff member, empty for any")
		date      = flag.String("date", time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02"), "day to book on")
		email     = flag.String("email", getenv("CUSTOMER_EMAIL", "sim@example.com"), "customer email")
		cancel    = flag.Bool("cancel", false, "cancel the appointment right after booking")
	)
	flag.Parse()

	if strings.TrimSpace(*salonID) == "" {
		fatal("SALON_ID is required")
	}
	if strings.TrimSpace(*serviceID) == "" {
		fatal("SERVICE_ID is required")
	}
	base := strings.TrimRight(*baseURL, "/")

	slotsURL := fmt.Sprintf("%s/api/v1/public/slots?salon_id=%s&service_id=%s&staff_id=%s&date=%s",
		base, *salonID, *serviceID, *staffID, *date)
	var slots []struct {
		StartTime string `json:"start_time"`
	}
	if err := getJSON(slotsURL, &slots); err != nil {
		fatal(err.Error())
	}
	if len(slots) == 0 {
		fatal(fmt.Sprintf("no free slots on %s", *date))
	}
	fmt.Printf("slots=%d first=%s\n", len(slots), slots[0].StartTime)

	var appt struct {
		AppointmentID string `json:"appointment_id"`
		Status        string `json:"status"`
		PriceCents    int64  `json:"price_cents"`
	}
	err := postJSON(base+"/api/v1/public/book", map[string]any{
		"salon_id":       *salonID,
		"service_id":     *serviceID,
		"staff_id":       *staffID,
		"user_id":        fmt.Sprintf("sim-user-%d", time.Now().UnixNano()),
		"customer_name":  "Sim Customer",
		"customer_email": *email,
		"start_time":     slots[0].StartTime,
	}, &appt)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Printf("booked id=%s status=%s price_cents=%d\n", appt.AppointmentID, appt.Status, appt.PriceCents)

	if *cancel {
		var cancelled struct {
			Status               string `json:"status"`
			CancellationFeeCents int64  `json:"cancellation_fee_cents"`
		}
		err := postJSON(base+"/api/v1/appointments/cancel", map[string]any{
			"appointment_id": appt.AppointmentID,
			"reason":         "simulator cleanup",
		}, &cancelled)
		if err != nil {
			fatal(err.Error())
		}
		fmt.Printf("cancelled status=%s fee_cents=%d\n", cancelled.Status, cancelled.CancellationFeeCents)
	}
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func postJSON(url string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.Unmarshal(raw, out)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
