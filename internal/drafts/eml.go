// Package drafts turns generated emails into RFC 5322 messages and
// stores them as drafts in an IMAP mailbox.
package drafts

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/mixelka/emaildraft/pkg/models"
)

// Draft is a plain-text message ready to be serialized
type Draft struct {
	FromName    string
	FromAddress string
	ToName      string
	ToAddress   string
	Subject     string
	Body        string
	Date        time.Time
}

// FromRequest builds a draft addressed the way the request describes
func FromRequest(req *models.EmailRequest, email *models.GeneratedEmail) Draft {
	return Draft{
		FromName:    req.SenderName,
		FromAddress: req.SenderAddress,
		ToName:      req.RecipientName,
		ToAddress:   req.RecipientAddress,
		Subject:     email.Subject,
		Body:        email.Body,
	}
}

// Filename returns a file name for the .eml download
func (d Draft) Filename() string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, d.Subject)
	if len(name) > 60 {
		name = name[:60]
	}
	if name == "" {
		name = "draft"
	}
	return name + ".eml"
}

// BuildEML serializes the draft as a single-part text/plain message
func BuildEML(d Draft) ([]byte, error) {
	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}

	var h mail.Header
	h.SetDate(date)
	h.SetSubject(d.Subject)
	if addr := address(d.FromName, d.FromAddress); addr != nil {
		h.SetAddressList("From", []*mail.Address{addr})
	}
	if addr := address(d.ToName, d.ToAddress); addr != nil {
		h.SetAddressList("To", []*mail.Address{addr})
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, d.Body); err != nil {
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// address returns nil unless raw is a usable mailbox address
func address(name, raw string) *mail.Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil
	}
	if addr.Name == "" {
		addr.Name = strings.TrimSpace(name)
	}
	return addr
}
