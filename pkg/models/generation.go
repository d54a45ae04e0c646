package models

import "time"

// GeneratedEmail is the completion text together with the subject it was generated for
type GeneratedEmail struct {
	Subject string
	Body    string
}

// MailLinks are the follow-up links derived from a generated email
type MailLinks struct {
	Mailto string `json:"mailto"`
	Gmail  string `json:"gmail"`
}

// GenerationRecord is the audit entry written for every generate action.
// It never holds the prompt or the generated body.
type GenerationRecord struct {
	ID              string    `db:"id" json:"id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	SenderName      string    `db:"sender_name" json:"sender_name"`
	RecipientName   string    `db:"recipient_name" json:"recipient_name"`
	Subject         string    `db:"subject" json:"subject"`
	Tone            string    `db:"tone" json:"tone"`
	Length          string    `db:"length" json:"length"`
	AttachmentCount int       `db:"attachment_count" json:"attachment_count"`
	State           string    `db:"state" json:"state"`
	ErrorKind       string    `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage    string    `db:"error_message" json:"error_message,omitempty"`
	PromptChars     int       `db:"prompt_chars" json:"prompt_chars"`
	BodyChars       int       `db:"body_chars" json:"body_chars"`
	DurationMillis  int64     `db:"duration_ms" json:"duration_ms"`
}
