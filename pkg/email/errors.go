package email

import "errors"

var (
	ErrSendFailed     = errors.New("failed to send email")
	ErrInvalidMessage = errors.New("invalid email message")
	ErrInvalidConfig  = errors.New("invalid mailer config")
)
