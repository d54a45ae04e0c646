package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	appmodels "github.com/mixelka/emaildraft/pkg/models"
)

// sendMessage sends a message to a chat or topic
func (b *Bot) sendMessage(ctx context.Context, chatID int64, topicID int, text string) (*models.Message, error) {
	return b.sendMessageWithKeyboard(ctx, chatID, topicID, text, nil)
}

// sendMessageWithKeyboard sends a message with inline keyboard
func (b *Bot) sendMessageWithKeyboard(ctx context.Context, chatID int64, topicID int, text string, keyboard *models.InlineKeyboardMarkup) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}

	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if topicID != 0 {
		params.MessageThreadID = topicID
	}

	return b.bot.SendMessage(ctx, params)
}

// sendDocument uploads data as a file
func (b *Bot) sendDocument(ctx context.Context, chatID int64, topicID int, name string, data []byte) error {
	params := &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: name, Data: bytes.NewReader(data)},
		Caption:  "Draft for your mail client",
	}
	if topicID != 0 {
		params.MessageThreadID = topicID
	}

	_, err := b.bot.SendDocument(ctx, params)
	return err
}

// sendChatAction shows "typing" while the email is generated
func (b *Bot) sendChatAction(ctx context.Context, chatID int64, topicID int) {
	params := &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	}
	if topicID != 0 {
		params.MessageThreadID = topicID
	}
	if _, err := b.bot.SendChatAction(ctx, params); err != nil {
		b.logger.Debug("failed to send chat action", "error", err)
	}
}

// downloadDocument fetches a document into memory once
func (b *Bot) downloadDocument(ctx context.Context, doc *models.Document) (*appmodels.UploadedFile, error) {
	if b.maxUploadBytes > 0 && doc.FileSize > b.maxUploadBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", doc.FileName, b.maxUploadBytes)
	}

	file, err := b.bot.GetFile(ctx, &bot.GetFileParams{FileID: doc.FileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.bot.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	payload, err := readLimited(resp.Body, b.maxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", doc.FileName, err)
	}

	return appmodels.NewUploadedFile(doc.FileName, doc.MimeType, payload), nil
}

// readLimited reads r fully, failing when it holds more than limit bytes (limit <= 0 means no limit)
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	payload, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return payload, nil
}
