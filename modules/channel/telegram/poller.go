package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	maxConsecutivePollingErrors = 5
	errorPauseDuration          = 30 * time.Second
)

const helpText = `I remember our conversation and condense it when it grows long.

/start - introduce the bot
/help - show this message
/save - snapshot the conversation now
/status - show conversation stats`

// Asker submits one user message and returns the assistant reply.
type Asker interface {
	Submit(ctx context.Context, text string) string
	SaveNow() (string, error)
	StatusLine() string
}

// Poller implements long-polling for receiving Telegram updates.
type Poller struct {
	client   *Client
	asker    Asker
	logger   *slog.Logger
	config   Config
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a new Poller.
func NewPoller(client *Client, asker Asker, logger *slog.Logger, config Config) *Poller {
	return &Poller{
		client: client,
		asker:  asker,
		logger: logger,
		config: config,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine.
func (p *Poller) Start() {
	go p.loop()
}

// Stop signals the polling loop to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.done
}

// loop runs the long-polling loop until Stop() is called.
func (p *Poller) loop() {
	defer close(p.done)

	var offset int
	var consecutiveErrors int

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		updates, err := p.client.GetUpdates(p.ctx(), GetUpdatesRequest{
			Offset:         offset,
			Timeout:        p.config.PollingTimeout,
			AllowedUpdates: []string{"message"},
		})
		if err != nil {
			consecutiveErrors++
			p.logger.Error("polling getUpdates failed",
				"error", err,
				"consecutive_errors", consecutiveErrors,
			)

			if consecutiveErrors >= maxConsecutivePollingErrors {
				p.logger.Warn("polling paused after consecutive errors",
					"pause", errorPauseDuration,
				)
				select {
				case <-p.stopCh:
					return
				case <-time.After(errorPauseDuration):
				}
				consecutiveErrors = 0
			}
			continue
		}

		consecutiveErrors = 0

		for _, update := range updates {
			offset = update.UpdateID + 1
			p.handleUpdate(&update)
		}
	}
}

// handleUpdate processes a single update.
func (p *Poller) handleUpdate(update *Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil || msg.From.IsBot {
		return
	}

	if !p.config.allowed(msg.From.ID) {
		p.logger.Debug("update denied by allow list",
			"update_id", update.UpdateID,
			"sender", msg.From.ID,
		)
		return
	}

	reply := p.dispatch(msg.Chat.ID, msg.Text)

	if _, err := p.client.SendMessage(p.ctx(), SendMessageRequest{
		ChatID:           msg.Chat.ID,
		Text:             reply,
		ReplyToMessageID: msg.MessageID,
	}); err != nil {
		p.logger.Error("failed to send reply",
			"update_id", update.UpdateID,
			"error", err,
		)
	}
}

// dispatch routes commands and plain text to their handlers.
func (p *Poller) dispatch(chatID int64, text string) string {
	switch strings.SplitN(strings.TrimSpace(text), " ", 2)[0] {
	case "/start":
		return "Hello! Send me a message and I will answer, keeping context across the conversation. /help lists the commands."
	case "/help":
		return helpText
	case "/save":
		name, err := p.asker.SaveNow()
		if err != nil {
			p.logger.Error("manual save failed", "error", err)
			return "Could not save the conversation."
		}
		return "Saved as " + name
	case "/status":
		return p.asker.StatusLine()
	default:
		ctx := p.ctx()
		// Show a typing indicator while the completion runs.
		_ = p.client.SendChatAction(ctx, chatID, "typing")
		return p.asker.Submit(ctx, text)
	}
}

// ctx returns a context that is cancelled when the poller stops.
func (p *Poller) ctx() contextWrapper {
	return contextWrapper{stopCh: p.stopCh}
}

// contextWrapper adapts a stop channel to a context.Context for the HTTP client.
type contextWrapper struct {
	stopCh <-chan struct{}
}

func (c contextWrapper) Deadline() (time.Time, bool) { return time.Time{}, false }
func (c contextWrapper) Done() <-chan struct{}       { return c.stopCh }

func (c contextWrapper) Err() error {
	select {
	case <-c.stopCh:
		return errPollerStopped
	default:
		return nil
	}
}

func (c contextWrapper) Value(any) any { return nil }

var errPollerStopped = pollerStoppedError{}

type pollerStoppedError struct{}

func (pollerStoppedError) Error() string { return "poller stopped" }
