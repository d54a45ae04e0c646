package telegram

import (
	"fmt"
	"strings"

	"github.com/mixelka/emaildraft/pkg/models"
)

const generateCommand = "/generate"

// fieldSetters maps a /generate key to the request field it fills
var fieldSetters = map[string]func(req *models.EmailRequest, value string) error{
	"sender":             func(r *models.EmailRequest, v string) error { r.SenderName = v; return nil },
	"sender_position":    func(r *models.EmailRequest, v string) error { r.SenderPosition = v; return nil },
	"sender_company":     func(r *models.EmailRequest, v string) error { r.SenderCompany = v; return nil },
	"sender_email":       func(r *models.EmailRequest, v string) error { r.SenderAddress = v; return nil },
	"recipient":          func(r *models.EmailRequest, v string) error { r.RecipientName = v; return nil },
	"recipient_position": func(r *models.EmailRequest, v string) error { r.RecipientPosition = v; return nil },
	"recipient_company":  func(r *models.EmailRequest, v string) error { r.RecipientCompany = v; return nil },
	"recipient_email":    func(r *models.EmailRequest, v string) error { r.RecipientAddress = v; return nil },
	"context":            func(r *models.EmailRequest, v string) error { r.Context = v; return nil },
	"extra":              func(r *models.EmailRequest, v string) error { r.ExtraDetail = v; return nil },
	"tone": func(r *models.EmailRequest, v string) error {
		r.Tone = models.ParseTone(v)
		return nil
	},
	"length": func(r *models.EmailRequest, v string) error {
		r.Length = models.ParseLength(v)
		return nil
	},
	"attachment": func(r *models.EmailRequest, v string) error {
		switch strings.ToLower(v) {
		case "yes", "true", "on", "1":
			r.UseAttachments = true
		case "no", "false", "off", "0":
			r.UseAttachments = false
		default:
			return fmt.Errorf("attachment must be yes or no, got %q", v)
		}
		return nil
	},
}

var keyAliases = map[string]string{
	"sender_name":      "sender",
	"recipient_name":   "recipient",
	"extra_detail":     "extra",
	"use_attachment":   "attachment",
	"preferred_length": "length",
}

// isGenerateCommand reports whether text starts with /generate, optionally addressed to a bot
func isGenerateCommand(text string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	cmd, _, _ := strings.Cut(strings.TrimSpace(first), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.EqualFold(cmd, generateCommand)
}

// ParseGenerateCommand builds a request from a /generate message.
// Each line after the command is "key: value"; lines without a key continue the previous value.
// Tone and length default to Formal and Short. A document attached to the message switches
// attachment mode on unless an attachment line says otherwise.
func ParseGenerateCommand(text string, document *models.UploadedFile) (*models.EmailRequest, error) {
	if !isGenerateCommand(text) {
		return nil, fmt.Errorf("message does not start with %s", generateCommand)
	}

	req := &models.EmailRequest{
		Tone:   models.ToneFormal,
		Length: models.LengthShort,
	}
	if document != nil {
		req.UseAttachments = true
		req.Attachments = []*models.UploadedFile{document}
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	// Fields may follow the command on its first line
	_, rest, _ := strings.Cut(lines[0], " ")
	lines[0] = rest

	values := make(map[string]string)
	var order []string
	lastKey := ""
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		normalized := normalizeKey(key)
		if !found || fieldSetters[normalized] == nil {
			if lastKey == "" {
				return nil, fmt.Errorf("line %d: expected \"key: value\", got %q", i+1, line)
			}
			values[lastKey] += " " + line
			continue
		}

		if _, seen := values[normalized]; !seen {
			order = append(order, normalized)
		}
		values[normalized] = strings.TrimSpace(value)
		lastKey = normalized
	}

	for _, key := range order {
		if err := fieldSetters[key](req, values[key]); err != nil {
			return nil, err
		}
	}

	return req, nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "_")
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}
