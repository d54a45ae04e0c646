package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emaildraft/internal/composer"
	"github.com/mixelka/emaildraft/internal/drafts"
	"github.com/mixelka/emaildraft/internal/formatter"
	appmodels "github.com/mixelka/emaildraft/pkg/models"
)

// reply is a rendered response to a /generate message
type reply struct {
	Text      string
	Keyboard  *models.InlineKeyboardMarkup
	Followup  string
	Draft     []byte // .eml for mail clients, nil when the action failed
	DraftName string
}

// handleGenerate handles /generate, either as text or as a document caption
// Usage: /generate followed by "key: value" lines
func (b *Bot) handleGenerate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	text := msg.Text

	var document *appmodels.UploadedFile
	if msg.Document != nil {
		text = msg.Caption
		file, err := b.downloadDocument(ctx, msg.Document)
		if err != nil {
			b.logger.Error("failed to download document", "error", err, "file", msg.Document.FileName)
			b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, b.formatter.FormatError(err.Error()))
			return
		}
		document = file
	}

	req, err := ParseGenerateCommand(text, document)
	if err != nil {
		b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID,
			b.formatter.FormatWarning(fmt.Sprintf("%v. Send /help for the format.", err)))
		return
	}

	b.sendChatAction(ctx, msg.Chat.ID, msg.MessageThreadID)

	out := b.generator.Generate(ctx, req)
	r := b.render(req, out)

	if _, err := b.sendMessageWithKeyboard(ctx, msg.Chat.ID, msg.MessageThreadID, r.Text, r.Keyboard); err != nil {
		b.logger.Error("failed to send reply", "error", err, "generation_id", out.ID)
		return
	}
	if r.Followup != "" {
		if _, err := b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, r.Followup); err != nil {
			b.logger.Warn("failed to send mailto link", "error", err, "generation_id", out.ID)
		}
	}
	if r.Draft != nil {
		if err := b.sendDocument(ctx, msg.Chat.ID, msg.MessageThreadID, r.DraftName, r.Draft); err != nil {
			b.logger.Warn("failed to send draft", "error", err, "generation_id", out.ID)
		}
	}
}

// render converts an outcome into Telegram messages
func (b *Bot) render(req *appmodels.EmailRequest, out *composer.Outcome) reply {
	switch {
	case out.Succeeded():
		r := reply{
			Text:     b.formatter.FormatEmail(out.Email),
			Keyboard: formatter.BuildLinksKeyboard(out.Links),
			Followup: b.formatter.FormatMailto(out.Links),
		}
		draft := drafts.FromRequest(req, out.Email)
		raw, err := drafts.BuildEML(draft)
		if err != nil {
			b.logger.Warn("failed to build draft", "error", err, "generation_id", out.ID)
			return r
		}
		r.Draft = raw
		r.DraftName = draft.Filename()
		return r
	case out.IsWarning():
		return reply{Text: b.formatter.FormatWarning(out.UserMessage())}
	default:
		return reply{Text: b.formatter.FormatError(out.UserMessage())}
	}
}
