package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes emails to disk instead of delivering them. Each send
// produces one HTML file named after the timestamp and tag.
type DevSender struct {
	dir string
}

func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

func (d *DevSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	label := msg.Tag
	if label == "" {
		label = msg.Subject
	}

	name := fmt.Sprintf("%s_%s.html", time.Now().Format("2006_01_02_150405"), safeFilename(label))
	body := fmt.Sprintf("<!-- to: %s | subject: %s -->\n%s", msg.To, msg.Subject, msg.HTMLBody)

	if err := os.WriteFile(filepath.Join(d.dir, name), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func safeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
