// Package prompt composes the instruction sent to the completion service.
// Building a prompt is a pure function of the request and the extracted
// attachment text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mixelka/emaildraft/pkg/models"
)

// Style selects the prompt template
type Style string

const (
	// StyleCanonical is the multi-field template with sender and recipient details
	StyleCanonical Style = "canonical"
	// StyleLegacy is the condensed subject-only template.
	//
	// Deprecated: use StyleCanonical.
	StyleLegacy Style = "legacy"
)

const (
	// AttachmentContext replaces the typed context in attachment mode
	AttachmentContext = "Based on the attached document"
	// AttachmentSummaryPrefix starts the extra detail in attachment mode
	AttachmentSummaryPrefix = "Summary of the attachment content: "
	// SummaryLimit is the number of characters of attachment text put in the prompt
	SummaryLimit = 500
	// Ellipsis marks the truncated attachment summary
	Ellipsis = "..."
	// AttachmentSeparator joins the text of several attachments
	AttachmentSeparator = "\n\n"
)

// Fields are the context and extra detail that end up in the prompt
type Fields struct {
	Context     string
	ExtraDetail string
}

// Builder renders prompts for one template style
type Builder struct {
	style Style
}

// NewBuilder creates a builder. Unknown styles fall back to StyleCanonical.
func NewBuilder(style Style) *Builder {
	if style != StyleLegacy {
		style = StyleCanonical
	}
	return &Builder{style: style}
}

// Style returns the template style in use
func (b *Builder) Style() Style {
	return b.style
}

// JoinAttachmentText concatenates extractor output in upload order
func JoinAttachmentText(texts []string) string {
	return strings.Join(texts, AttachmentSeparator)
}

// Summarize truncates attachment text to SummaryLimit characters and prefixes it.
// The cut ignores word and sentence boundaries.
func Summarize(attachmentText string) string {
	runes := []rune(attachmentText)
	if len(runes) > SummaryLimit {
		runes = runes[:SummaryLimit]
	}
	return AttachmentSummaryPrefix + string(runes) + Ellipsis
}

// EffectiveFields resolves context and extra detail, applying the attachment mode overrides.
// attachmentText is nil when nothing was extracted.
func EffectiveFields(req *models.EmailRequest, attachmentText *string) Fields {
	if req.UseAttachments {
		text := ""
		if attachmentText != nil {
			text = *attachmentText
		}
		return Fields{
			Context:     AttachmentContext,
			ExtraDetail: Summarize(text),
		}
	}
	return Fields{
		Context:     req.Context,
		ExtraDetail: req.ExtraDetail,
	}
}

// Build renders the prompt for req
func (b *Builder) Build(req *models.EmailRequest, attachmentText *string) string {
	fields := EffectiveFields(req, attachmentText)

	var sb strings.Builder
	switch b.style {
	case StyleLegacy:
		writeLegacy(&sb, req, fields)
	default:
		writeCanonical(&sb, req, fields)
	}

	if len(req.Attachments) > 0 {
		sb.WriteString("\nAttachments: ")
		sb.WriteString(strings.Join(req.AttachmentNames(), ", "))
	}

	return sb.String()
}

func writeCanonical(sb *strings.Builder, req *models.EmailRequest, fields Fields) {
	fmt.Fprintf(sb, "Generate an email from %s to %s with the following details:\n",
		identity(req.SenderName, req.SenderPosition, req.SenderCompany),
		identity(req.RecipientName, req.RecipientPosition, req.RecipientCompany),
	)
	fmt.Fprintf(sb, "Context: %s\n", fields.Context)
	fmt.Fprintf(sb, "Write it in a %s tone. Make it %s", req.Tone, req.Length)
	if extra := strings.TrimSpace(fields.ExtraDetail); extra != "" {
		fmt.Fprintf(sb, " and include: %s", extra)
	}
	sb.WriteString(".\n")
	sb.WriteString("Write the email in a proper format, as if you are the sender. Ensure there are no repeated sentences.")
}

func writeLegacy(sb *strings.Builder, req *models.EmailRequest, fields Fields) {
	fmt.Fprintf(sb, "Generate an email from %s to %s with the following details:\nSubject: %s\n",
		req.SenderName, req.RecipientName, fields.Context)
	fmt.Fprintf(sb, "Write it in a %s way. Make it %s length and add details: %s.\n",
		req.Tone, req.Length, fields.ExtraDetail)
	sb.WriteString("Write it in a proper format of a letter. Just write the email as if you are the one sending it. Make sure there are no repeated sentences.")
}

// identity renders "Name (Position, Company)", dropping empty parts
func identity(name, position, company string) string {
	var details []string
	if p := strings.TrimSpace(position); p != "" {
		details = append(details, p)
	}
	if c := strings.TrimSpace(company); c != "" {
		details = append(details, c)
	}
	if len(details) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(details, ", "))
}
