// Package composer runs a generate action: validation, attachment
// extraction, prompt building, completion and link generation.
package composer

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mixelka/emaildraft/internal/completion"
	"github.com/mixelka/emaildraft/internal/links"
	"github.com/mixelka/emaildraft/internal/prompt"
	"github.com/mixelka/emaildraft/pkg/models"
)

// TextExtractor reads the text of an uploaded document
type TextExtractor interface {
	Extract(file *models.UploadedFile) (string, error)
}

// Completer sends a prompt to the completion service
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextNormalizer tidies completion text
type TextNormalizer interface {
	Normalize(text string) string
}

// Recorder stores generation records
type Recorder interface {
	RecordGeneration(ctx context.Context, record *models.GenerationRecord) error
}

// Deps dependencies for creating a composer
type Deps struct {
	Extractor  TextExtractor
	Completer  Completer
	Prompts    *prompt.Builder
	Normalizer TextNormalizer // optional
	Recorder   Recorder       // optional
	Logger     *slog.Logger
}

// Composer handles generate actions. It holds no per-action state.
type Composer struct {
	extractor  TextExtractor
	completer  Completer
	prompts    *prompt.Builder
	normalizer TextNormalizer
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a new composer
func New(deps Deps) *Composer {
	prompts := deps.Prompts
	if prompts == nil {
		prompts = prompt.NewBuilder(prompt.StyleCanonical)
	}
	return &Composer{
		extractor:  deps.Extractor,
		completer:  deps.Completer,
		prompts:    prompts,
		normalizer: deps.Normalizer,
		recorder:   deps.Recorder,
		logger:     deps.Logger.With("component", "composer"),
		now:        time.Now,
	}
}

// Validate checks the required fields of req
func Validate(req *models.EmailRequest) error {
	var missing []string

	if strings.TrimSpace(req.SenderName) == "" {
		missing = append(missing, "sender name")
	}
	if strings.TrimSpace(req.RecipientName) == "" {
		missing = append(missing, "recipient name")
	}
	if req.UseAttachments {
		if len(req.Attachments) == 0 {
			missing = append(missing, "attachments")
		}
	} else if strings.TrimSpace(req.Context) == "" {
		missing = append(missing, "context")
	}
	if !req.Tone.Valid() {
		missing = append(missing, "tone")
	}
	if !req.Length.Valid() {
		missing = append(missing, "length")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Generate runs one generate action to a terminal state
func (c *Composer) Generate(ctx context.Context, req *models.EmailRequest) *Outcome {
	started := c.now()
	out := &Outcome{
		ID:    uuid.NewString(),
		State: StateIdle,
		Trace: []State{StateIdle},
	}
	logger := c.logger.With("generation_id", out.ID)

	c.run(ctx, req, out, logger)

	if out.Err != nil {
		if out.IsWarning() {
			logger.Info("generate action rejected", "error", out.Err)
		} else {
			logger.Error("generate action failed", "error", out.Err, "kind", out.ErrorKind())
		}
	} else {
		logger.Info("email generated",
			"attachments", len(req.Attachments),
			"body_chars", utf8.RuneCountInString(out.Email.Body),
		)
	}

	c.record(ctx, req, out, c.now().Sub(started), logger)
	return out
}

func (c *Composer) run(ctx context.Context, req *models.EmailRequest, out *Outcome, logger *slog.Logger) {
	out.enter(StateValidating)
	if err := Validate(req); err != nil {
		out.fail(err)
		return
	}

	var attachmentText *string
	if req.UseAttachments && len(req.Attachments) > 0 {
		out.enter(StateExtracting)
		texts := make([]string, 0, len(req.Attachments))
		for _, file := range req.Attachments {
			text, err := c.extractor.Extract(file)
			if err != nil {
				out.fail(err)
				return
			}
			texts = append(texts, text)
		}
		joined := prompt.JoinAttachmentText(texts)
		attachmentText = &joined
		logger.Debug("attachments extracted", "files", len(texts), "chars", utf8.RuneCountInString(joined))
	}

	out.enter(StateGenerating)
	fields := prompt.EffectiveFields(req, attachmentText)
	out.Prompt = c.prompts.Build(req, attachmentText)

	body, err := c.completer.Complete(ctx, out.Prompt)
	if err != nil {
		out.fail(err)
		return
	}
	if c.normalizer != nil {
		body = c.normalizer.Normalize(body)
	}
	if strings.TrimSpace(body) == "" {
		out.fail(&completion.RemoteGenerationError{Description: "completion service returned no text"})
		return
	}

	out.enter(StateLinkBuilding)
	out.Email = &models.GeneratedEmail{Subject: fields.Context, Body: body}
	mailLinks := links.Build(req.LinkRecipient(), fields.Context, body)
	out.Links = &mailLinks

	out.enter(StateDisplaying)
}

func (c *Composer) record(ctx context.Context, req *models.EmailRequest, out *Outcome, elapsed time.Duration, logger *slog.Logger) {
	if c.recorder == nil {
		return
	}

	rec := &models.GenerationRecord{
		ID:              out.ID,
		CreatedAt:       c.now().UTC(),
		SenderName:      req.SenderName,
		RecipientName:   req.RecipientName,
		Tone:            string(req.Tone),
		Length:          string(req.Length),
		AttachmentCount: len(req.Attachments),
		State:           string(out.State),
		ErrorKind:       out.ErrorKind(),
		PromptChars:     utf8.RuneCountInString(out.Prompt),
		DurationMillis:  elapsed.Milliseconds(),
	}
	if out.Err != nil {
		rec.ErrorMessage = out.Err.Error()
	}
	if out.Email != nil {
		rec.Subject = out.Email.Subject
		rec.BodyChars = utf8.RuneCountInString(out.Email.Body)
	} else if !req.UseAttachments {
		rec.Subject = req.Context
	} else {
		rec.Subject = prompt.AttachmentContext
	}

	if err := c.recorder.RecordGeneration(ctx, rec); err != nil {
		logger.Warn("failed to record generation", "error", err)
	}
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

func (o *Outcome) fail(err error) {
	o.Err = err
	o.enter(StateFailed)
}
