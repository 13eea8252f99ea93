package models

import "time"

// Audit event types.
const (
	EventRegister       = "REGISTER"
	EventRegisterFailed = "REGISTER_FAILED"
	EventLogin          = "LOGIN"
	EventLoginFailed    = "LOGIN_FAILED"
)

// AuthEvent is a single audit log entry.
type AuthEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // REGISTER | REGISTER_FAILED | LOGIN | LOGIN_FAILED
	Username    string    `json:"username"`
	UserID      int       `json:"user_id,omitempty"` // 0 when the attempt did not resolve a user
	Description string    `json:"description"`
}
