package drafts

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// ErrIMAPDisabled is returned when no IMAP account is configured
var ErrIMAPDisabled = errors.New("imap drafts are not configured")

// IMAPConfig configuration for uploading drafts
type IMAPConfig struct {
	Server      string // host:port, resolved from Username when empty
	Username    string
	Password    string
	Mailbox     string
	DialTimeout time.Duration
}

// Enabled returns true if credentials are configured
func (c IMAPConfig) Enabled() bool {
	return c.Username != "" && c.Password != ""
}

// Appender saves drafts into an IMAP mailbox. Each call opens its own
// connection, so it is safe for concurrent use.
type Appender struct {
	config   IMAPConfig
	resolver *Resolver
	logger   *slog.Logger
	dial     func(ctx context.Context, server string) (net.Conn, error)
}

// NewAppender creates a new IMAP draft appender
func NewAppender(cfg IMAPConfig, logger *slog.Logger) *Appender {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "Drafts"
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}

	a := &Appender{
		config:   cfg,
		resolver: NewResolver(),
		logger:   logger.With("component", "imap_drafts", "email", cfg.Username),
	}
	a.dial = a.dialTLS
	return a
}

// Mailbox returns the target mailbox name
func (a *Appender) Mailbox() string {
	return a.config.Mailbox
}

// SaveDraft appends msg to the drafts mailbox with the \Draft flag
func (a *Appender) SaveDraft(ctx context.Context, msg []byte) error {
	if !a.config.Enabled() {
		return ErrIMAPDisabled
	}

	server := a.config.Server
	if server == "" {
		resolved, err := a.resolver.Resolve(ctx, a.config.Username)
		if err != nil {
			return fmt.Errorf("failed to resolve IMAP server: %w", err)
		}
		server = resolved
	}

	a.logger.Debug("connecting to IMAP server", "server", server)

	conn, err := a.dial(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c, err := client.New(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create IMAP client: %w", err)
	}
	defer c.Logout()

	if deadline, ok := ctx.Deadline(); ok {
		c.Timeout = time.Until(deadline)
	}

	if err := c.Login(a.config.Username, a.config.Password); err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	if err := a.append(c, msg); err != nil {
		return err
	}

	a.logger.Info("draft saved", "mailbox", a.config.Mailbox, "bytes", len(msg))
	return nil
}

func (a *Appender) append(c *client.Client, msg []byte) error {
	flags := []string{imap.DraftFlag}
	now := time.Now()

	err := c.Append(a.config.Mailbox, flags, now, bytes.NewReader(msg))
	if err == nil {
		return nil
	}

	// Mailbox may not exist yet
	a.logger.Debug("append failed, creating mailbox", "mailbox", a.config.Mailbox, "error", err)
	if createErr := c.Create(a.config.Mailbox); createErr != nil {
		return fmt.Errorf("failed to append draft: %w", err)
	}
	if err := c.Append(a.config.Mailbox, flags, now, bytes.NewReader(msg)); err != nil {
		return fmt.Errorf("failed to append draft: %w", err)
	}
	return nil
}

func (a *Appender) dialTLS(ctx context.Context, server string) (net.Conn, error) {
	dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: a.config.DialTimeout}}
	return dialer.DialContext(ctx, "tcp", server)
}
