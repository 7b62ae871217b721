package dto

import "time"

// WebhookRequest is the envelope posted by the chat platform.
type WebhookRequest struct {
	WebhookSettingID string       `json:"webhook_setting_id"`
	WebhookEventType string       `json:"webhook_event_type"`
	WebhookEventTime int64        `json:"webhook_event_time"`
	WebhookEvent     WebhookEvent `json:"webhook_event" validate:"required"`
}

type WebhookEvent struct {
	MessageID     string `json:"message_id"`
	RoomID        int64  `json:"room_id" validate:"required,gt=0"`
	AccountID     int64  `json:"account_id"`
	FromAccountID int64  `json:"from_account_id"`
	Body          string `json:"body"`
	SendTime      int64  `json:"send_time"`
}

// SenderID prefers from_account_id (mention events) over account_id
// (room message events).
func (e WebhookEvent) SenderID() int64 {
	if e.FromAccountID != 0 {
		return e.FromAccountID
	}
	return e.AccountID
}

type WebhookResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
