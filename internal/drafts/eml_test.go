package drafts

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/mixelka/emaildraft/pkg/models"
)

func readMessage(t *testing.T, raw []byte) (*mail.Reader, string) {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("CreateReader: %v", err)
	}
	part, err := mr.NextPart()
	if err != nil {
		t.Fatalf("NextPart: %v", err)
	}
	body, err := io.ReadAll(part.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return mr, strings.ReplaceAll(string(body), "\r\n", "\n")
}

func TestBuildEML(t *testing.T) {
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	raw, err := BuildEML(Draft{
		FromName:    "Alice",
		FromAddress: "alice@example.com",
		ToName:      "Bob",
		ToAddress:   "bob@example.com",
		Subject:     "Partnership proposal",
		Body:        "Dear Bob,\n\nI would like to meet. Café at noon?\n\nAlice",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("BuildEML: %v", err)
	}

	mr, body := readMessage(t, raw)

	subject, err := mr.Header.Subject()
	if err != nil || subject != "Partnership proposal" {
		t.Errorf("Subject = %q, %v", subject, err)
	}

	from, err := mr.Header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Address != "alice@example.com" || from[0].Name != "Alice" {
		t.Errorf("From = %v, %v", from, err)
	}

	to, err := mr.Header.AddressList("To")
	if err != nil || len(to) != 1 || to[0].Address != "bob@example.com" {
		t.Errorf("To = %v, %v", to, err)
	}

	got, err := mr.Header.Date()
	if err != nil || !got.Equal(date) {
		t.Errorf("Date = %v, %v", got, err)
	}

	if id, err := mr.Header.MessageID(); err != nil || id == "" {
		t.Errorf("MessageID = %q, %v", id, err)
	}

	if body != "Dear Bob,\n\nI would like to meet. Café at noon?\n\nAlice" {
		t.Errorf("body = %q", body)
	}
}

func TestBuildEMLWithoutAddresses(t *testing.T) {
	raw, err := BuildEML(Draft{
		FromName:  "Alice",
		ToName:    "Bob",
		ToAddress: "not an address",
		Subject:   "Intro",
		Body:      "Hello",
	})
	if err != nil {
		t.Fatalf("BuildEML: %v", err)
	}

	if strings.Contains(string(raw), "\r\nFrom:") || strings.HasPrefix(string(raw), "From:") {
		t.Errorf("From header must be omitted without an address:\n%s", raw)
	}
	if strings.Contains(string(raw), "To:") {
		t.Errorf("To header must be omitted for an invalid address:\n%s", raw)
	}

	mr, body := readMessage(t, raw)
	if body != "Hello" {
		t.Errorf("body = %q", body)
	}
	if date, err := mr.Header.Date(); err != nil || date.IsZero() {
		t.Errorf("Date must default to now, got %v, %v", date, err)
	}
}

func TestFromRequest(t *testing.T) {
	req := &models.EmailRequest{
		SenderName:       "Alice",
		SenderAddress:    "alice@example.com",
		RecipientName:    "Bob",
		RecipientAddress: "bob@example.com",
	}
	d := FromRequest(req, &models.GeneratedEmail{Subject: "Intro", Body: "Hi"})

	if d.FromAddress != "alice@example.com" || d.ToName != "Bob" || d.Subject != "Intro" || d.Body != "Hi" {
		t.Errorf("unexpected draft: %+v", d)
	}
}

func TestDraftFilename(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Partnership proposal", "Partnership-proposal.eml"},
		{"Q3: results / next steps!", "Q3-results--next-steps.eml"},
		{"", "draft.eml"},
		{"???", "draft.eml"},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			if got := (Draft{Subject: tt.subject}).Filename(); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}
