package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mixelka/emaildraft/internal/completion"
	"github.com/mixelka/emaildraft/internal/composer"
	"github.com/mixelka/emaildraft/internal/config"
	"github.com/mixelka/emaildraft/internal/database"
	"github.com/mixelka/emaildraft/internal/drafts"
	"github.com/mixelka/emaildraft/internal/extractor"
	"github.com/mixelka/emaildraft/internal/formatter"
	"github.com/mixelka/emaildraft/internal/parser"
	"github.com/mixelka/emaildraft/internal/prompt"
	"github.com/mixelka/emaildraft/internal/telegram"
	"github.com/mixelka/emaildraft/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting email generator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Generation log (optional)
	var (
		recorder composer.Recorder
		history  web.HistoryStore
	)
	if cfg.HistoryEnabled() {
		db, err := database.Open(cfg.HistoryDBPath)
		if err != nil {
			logger.Error("failed to open generation history", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("generation history enabled", "path", cfg.HistoryDBPath)
		recorder = db
		history = db
	}

	// Create components
	completer, err := completion.NewClient(completion.Config{
		BaseURL:        cfg.ClarifaiBaseURL,
		PAT:            cfg.ClarifaiPAT,
		UserID:         cfg.ClarifaiUserID,
		AppID:          cfg.ClarifaiAppID,
		ModelID:        cfg.ClarifaiModelID,
		ModelVersionID: cfg.ClarifaiModelVersionID,
		Timeout:        cfg.CompletionTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create completion client", "error", err)
		os.Exit(1)
	}

	prompts := prompt.NewBuilder(prompt.Style(cfg.PromptStyle))
	if prompts.Style() == prompt.StyleLegacy {
		logger.Warn("legacy prompt style is deprecated")
	}

	gen := composer.New(composer.Deps{
		Extractor:  extractor.New(logger),
		Completer:  completer,
		Prompts:    prompts,
		Normalizer: parser.NewNormalizer(),
		Recorder:   recorder,
		Logger:     logger,
	})

	// IMAP drafts (optional)
	var draftSaver web.DraftSaver
	if cfg.IMAPEnabled() {
		draftSaver = drafts.NewAppender(drafts.IMAPConfig{
			Server:      cfg.IMAPServer,
			Username:    cfg.IMAPUsername,
			Password:    cfg.IMAPPassword,
			Mailbox:     cfg.IMAPDraftsMailbox,
			DialTimeout: cfg.IMAPDialTimeout,
		}, logger)
		logger.Info("imap drafts enabled", "mailbox", cfg.IMAPDraftsMailbox)
	}

	server, err := web.NewServer(web.Config{
		ListenAddr:     cfg.HTTPListenAddr,
		AllowedOrigins: cfg.HTTPAllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Generator:      gen,
		Drafts:         draftSaver,
		History:        history,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to create http server", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup

	// Telegram front-end (optional)
	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(telegram.BotDeps{
			Token:          cfg.TelegramToken,
			Generator:      gen,
			Formatter:      formatter.NewTelegramFormatter(),
			MaxUploadBytes: cfg.MaxUploadBytes,
			Logger:         logger,
		})
		if err != nil {
			logger.Error("failed to create bot", "error", err)
			os.Exit(1)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Start(ctx)
			logger.Info("bot stopped")
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
		stop()
	}

	logger.Info("shutting down...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shut down http server", "error", err)
	}
	wg.Wait()

	logger.Info("stopped")
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler
	logLevel := parseLevel(level)

	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		// Pretty colored output for console
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
