package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/emaildraft/internal/composer"
	"github.com/mixelka/emaildraft/internal/formatter"
	appmodels "github.com/mixelka/emaildraft/pkg/models"
)

// Generator runs a generate action
type Generator interface {
	Generate(ctx context.Context, req *appmodels.EmailRequest) *composer.Outcome
}

// Bot represents the Telegram bot
type Bot struct {
	bot            *bot.Bot
	generator      Generator
	formatter      *formatter.TelegramFormatter
	httpClient     *http.Client
	maxUploadBytes int64
	logger         *slog.Logger
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Token          string
	Generator      Generator
	Formatter      *formatter.TelegramFormatter
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	if deps.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("telegram: generator is required")
	}

	b := &Bot{
		generator:      deps.Generator,
		formatter:      deps.Formatter,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		maxUploadBytes: deps.MaxUploadBytes,
		logger:         deps.Logger.With("component", "telegram_bot"),
	}
	if b.formatter == nil {
		b.formatter = formatter.NewTelegramFormatter()
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
	}

	tgBot, err := bot.New(deps.Token, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandlerMatchFunc(matchGenerate, b.handleGenerate)
}

// matchGenerate matches /generate in a text message or in a document caption
func matchGenerate(update *models.Update) bool {
	if update.Message == nil {
		return false
	}
	if update.Message.Document != nil {
		return isGenerateCommand(update.Message.Caption)
	}
	return isGenerateCommand(update.Message.Text)
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// defaultHandler handles unknown messages
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	// Ignore non-message updates and messages without text
	if update.Message == nil {
		return
	}

	if strings.HasPrefix(update.Message.Text, "/") {
		b.logger.Debug("unknown command", "text", update.Message.Text)
	}
}

// handleStart handles /start command
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelp(ctx, tgBot, update)
}

// handleHelp handles /help command
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	text := `<b>Email Generator</b>

Drafts an email from a few details and gives you links to send it.

<b>Usage:</b>
<code>/generate
sender: Alice
sender_position: Sales Lead
sender_company: Acme
recipient: Bob
recipient_company: Globex
recipient_email: bob@globex.example
context: Partnership proposal
extra: Mention the Q3 pilot
tone: Formal
length: Short</code>

<b>From a document:</b>
Send a PDF, TXT or DOCX file with <code>/generate</code> and the sender/recipient lines as the caption.

Tone: Formal, Casual or Friendly. Length: Short, Medium or Long.`

	if _, err := b.sendMessage(ctx, msg.Chat.ID, msg.MessageThreadID, text); err != nil {
		b.logger.Error("failed to send help", "error", err)
	}
}
