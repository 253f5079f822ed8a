package telegram

import (
	"context"
	"fmt"
	"log/slog"
)

// Channel ties the Bot API client and poller together.
type Channel struct {
	config Config
	client *Client
	poller *Poller
	logger *slog.Logger
}

// New creates a Telegram channel.
func New(cfg Config, asker Asker, logger *slog.Logger) (*Channel, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := NewClient(cfg.Token, cfg.APIURL)
	return &Channel{
		config: cfg,
		client: client,
		poller: NewPoller(client, asker, logger, cfg),
		logger: logger,
	}, nil
}

// Start verifies the token against getMe and begins long polling.
func (c *Channel) Start(ctx context.Context) error {
	me, err := c.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe: %w", err)
	}
	c.logger.Info("telegram channel started", "bot", me.Username)
	c.poller.Start()
	return nil
}

// Stop halts polling and waits for the in-flight cycle to finish.
func (c *Channel) Stop() {
	c.poller.Stop()
	c.logger.Info("telegram channel stopped")
}
