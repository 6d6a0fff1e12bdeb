package queue

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Event types for the mail stream
const (
	EventPasswordResetRequested = "password_reset_requested"
)

const (
	StreamMail = "stream:mail"

	ConsumerGroupMail = "mail_workers"
)

// MailEvent is published when a user action needs an email sent.
// Only identifiers travel through Redis; secrets are derived by the worker.
type MailEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	UserID    int64  `json:"user_id"`
}

// NewPasswordResetRequestedEvent asks the worker to mail a reset link to userID.
func NewPasswordResetRequestedEvent(userID int64) MailEvent {
	return MailEvent{
		Type:      EventPasswordResetRequested,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// ToMap converts the event to XADD field-value pairs with the JSON body
// in a "data" field.
func (e MailEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseMailEvent parses a MailEvent from Redis stream message values.
func ParseMailEvent(values map[string]interface{}) (MailEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return MailEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event MailEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return MailEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
