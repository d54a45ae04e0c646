// Package formatter renders generate outcomes as Telegram HTML messages.
package formatter

import (
	"fmt"
	"html"
	"strings"

	"github.com/mixelka/emaildraft/pkg/models"
)

// TelegramFormatter formats generated emails for Telegram
type TelegramFormatter struct {
	maxLength int
}

// NewTelegramFormatter creates a new Telegram formatter
func NewTelegramFormatter() *TelegramFormatter {
	return &TelegramFormatter{
		maxLength: 4000, // Leave room for markup
	}
}

// FormatEmail formats a generated email for Telegram
func (f *TelegramFormatter) FormatEmail(email *models.GeneratedEmail) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>Subject:</b> %s\n\n", f.escapeHTML(email.Subject)))
	body := f.truncate(email.Body, f.maxLength-sb.Len()-50)
	sb.WriteString(body)

	return sb.String()
}

// FormatMailto renders the mail client link, or a notice when it exceeds the message limit
func (f *TelegramFormatter) FormatMailto(links *models.MailLinks) string {
	anchor := fmt.Sprintf(`<a href="%s">Open with Email Client</a>`, html.EscapeString(links.Mailto))
	if len(anchor) > f.maxLength {
		return "<i>The email client link is too long for Telegram, use the Gmail button instead.</i>"
	}
	return anchor
}

// FormatWarning formats a validation warning
func (f *TelegramFormatter) FormatWarning(message string) string {
	return "⚠️ " + f.escapeHTML(message)
}

// FormatError formats a generation failure
func (f *TelegramFormatter) FormatError(message string) string {
	return "❌ " + f.escapeHTML(message)
}

// escapeHTML escapes HTML special characters for Telegram
func (f *TelegramFormatter) escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// truncate escapes s and truncates it to maxLen characters
func (f *TelegramFormatter) truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return f.escapeHTML(s)
	}
	return f.escapeHTML(string(runes[:maxLen])) + "\n\n<i>... (truncated, open the Gmail link for the full text)</i>"
}
