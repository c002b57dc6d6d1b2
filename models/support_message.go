package models

import "time"

// SupportStatus mirrors the support ticket status ENUM in the database.
type SupportStatus string

const (
	SupportPending    SupportStatus = "pending"
	SupportInProgress SupportStatus = "in_progress"
	SupportResolved   SupportStatus = "resolved"
)

// SupportMessage is a user-submitted support ticket.
type SupportMessage struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	Subject       string        `json:"subject" db:"subject"`
	Message       string        `json:"message" db:"message"`
	Status        SupportStatus `json:"status" db:"status"`
	IsRead        bool          `json:"is_read" db:"is_read"`
	AdminResponse *string       `json:"admin_response,omitempty" db:"admin_response"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}
