package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	Tag      string // Optional Postmark tag for delivery analytics.
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the message before it is handed to a provider.
func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is empty", ErrInvalidMessage)
	}
	if m.HTMLBody == "" {
		return fmt.Errorf("%w: body is empty", ErrInvalidMessage)
	}
	return nil
}
