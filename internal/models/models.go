package models

import "time"

// User is the persistent identity record. PassHash is nil for accounts
// created through Google login; GoogleID is nil for password-only accounts.
type User struct {
	ID                    int64
	Name                  string
	Email                 string
	PassHash              []byte
	GoogleID              *string
	AvatarURL             *string
	IsVerified            bool
	VerificationTokenHash *string
	ResetTokenHash        *string
	ResetTokenExpiresAt   *time.Time
	CreatedAt             time.Time
	LastLogin             *time.Time
}

// MailMessage is the payload published to the mail queue. The worker decides
// subject and body from Purpose; Link carries the one-time token URL.
type MailMessage struct {
	Email   string `json:"to"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}

const (
	MailPurposeVerifyEmail   = "email_verification"
	MailPurposePasswordReset = "password_reset"
)
