package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeTopic is the pub/sub channel every backend publishes on.
const ChangeTopic = "appointment_changes"

// Change is the payload carried by a broker. It names the appointment and
// nothing else; receivers re-read whatever they need.
type Change struct {
	ID            string    `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	At            time.Time `json:"at"`
}

func newChange(appointmentID uint) Change {
	return Change{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		At:            time.Now().UTC(),
	}
}

func encodeChange(c Change) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode change: %w", err)
	}
	return string(b), nil
}

func decodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.AppointmentID == 0 {
		return Change{}, fmt.Errorf("decode change: missing appointment_id")
	}
	return c, nil
}

// Broker fans change signals out to every process that listens.
type Broker interface {
	Publish(ctx context.Context, appointmentID uint) error

	// Listen returns once the subscription is live. deliver is then called
	// for every change, including ones published by this process, until
	// ctx is done. resync is called each time a lost subscription is live
	// again; changes published during the gap were not delivered.
	Listen(ctx context.Context, deliver func(Change), resync func()) error
}
