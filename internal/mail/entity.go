// AngelaMos | 2026
// entity.go

package mail

import (
	"time"
)

type EmailType string

const (
	TypeConfirmEmail  EmailType = "confirm_email"
	TypePasswordReset EmailType = "password_reset"
)

// Template is an operator-editable email. Message is a text/template body
// that receives Data.
type Template struct {
	ID        int64     `db:"id"`
	EmailType EmailType `db:"email_type"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Settings is the single global row controlling outgoing mail.
type Settings struct {
	SendEmails bool `db:"send_emails"`
}

type Data struct {
	Link  string
	Email string
}

type Message struct {
	To      string
	Subject string
	Body    string
}
