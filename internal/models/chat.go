package models

import "time"

// ChatTurn is one persisted user-message/assistant-response pair.
// Rows are append-only: the store assigns id and created_at, and no
// update or delete surface exists.
type ChatTurn struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	CreatedAt   time.Time `json:"created_at"`
}
