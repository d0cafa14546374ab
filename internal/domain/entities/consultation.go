package entities

import "time"

// Consultation is the persisted record of one consultation turn.
type Consultation struct {
	ID               string    `json:"id" db:"id"`
	SessionID        string    `json:"session_id" db:"session_id"`
	Query            string    `json:"query" db:"query"`
	PrimarySpecialty string    `json:"primary_specialty" db:"primary_specialty"`
	Urgency          string    `json:"urgency_level" db:"urgency_level"`
	EmergencyScore   float64   `json:"emergency_score" db:"emergency_score"`
	Response         string    `json:"response" db:"response"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ConversationTurn is one entry in a session's conversation history.
type ConversationTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Specialty string    `json:"specialty,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
