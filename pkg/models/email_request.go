package models

import "strings"

// Tone of the generated email
type Tone string

const (
	ToneFormal   Tone = "Formal"
	ToneCasual   Tone = "Casual"
	ToneFriendly Tone = "Friendly"
)

// Tones lists the selectable tones in display order
var Tones = []Tone{ToneFormal, ToneCasual, ToneFriendly}

// Valid reports whether t is one of the selectable tones
func (t Tone) Valid() bool {
	for _, candidate := range Tones {
		if t == candidate {
			return true
		}
	}
	return false
}

// ParseTone matches a tone case-insensitively, returning "" for unknown values
func ParseTone(s string) Tone {
	for _, candidate := range Tones {
		if strings.EqualFold(strings.TrimSpace(s), string(candidate)) {
			return candidate
		}
	}
	return ""
}

// Length is the preferred email length
type Length string

const (
	LengthShort  Length = "Short"
	LengthMedium Length = "Medium"
	LengthLong   Length = "Long"
)

// Lengths lists the selectable lengths in display order
var Lengths = []Length{LengthShort, LengthMedium, LengthLong}

// Valid reports whether l is one of the selectable lengths
func (l Length) Valid() bool {
	for _, candidate := range Lengths {
		if l == candidate {
			return true
		}
	}
	return false
}

// ParseLength matches a length case-insensitively, returning "" for unknown values
func ParseLength(s string) Length {
	for _, candidate := range Lengths {
		if strings.EqualFold(strings.TrimSpace(s), string(candidate)) {
			return candidate
		}
	}
	return ""
}

// EmailRequest holds the form fields of a single generate action
type EmailRequest struct {
	SenderName     string
	SenderPosition string // optional
	SenderCompany  string // optional
	SenderAddress  string // optional, used for the draft From header

	RecipientName     string
	RecipientPosition string // optional
	RecipientCompany  string // optional
	RecipientAddress  string // optional, preferred over RecipientName in mailto links

	Context     string // subject; ignored in attachment mode
	ExtraDetail string // optional; ignored in attachment mode

	Tone   Tone
	Length Length

	// UseAttachments switches to attachment mode: context comes from the uploaded documents.
	UseAttachments bool
	Attachments    []*UploadedFile
}

// AttachmentNames returns attachment file names in upload order
func (r *EmailRequest) AttachmentNames() []string {
	names := make([]string, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		names = append(names, a.Name)
	}
	return names
}

// LinkRecipient is the recipient placed in mailto links
func (r *EmailRequest) LinkRecipient() string {
	if addr := strings.TrimSpace(r.RecipientAddress); addr != "" {
		return addr
	}
	return r.RecipientName
}
