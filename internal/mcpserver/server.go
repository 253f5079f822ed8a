// Package mcpserver exposes the assistant over the Model Context
// Protocol so external agents can drive it as a set of tools.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/undergrid/recall/internal/translate"
)

// Asker submits one user message and returns the assistant reply.
type Asker interface {
	Submit(ctx context.Context, text string) string
}

// Lister enumerates saved conversation snapshots, most recent first.
type Lister interface {
	List() ([]string, error)
}

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (translate.Result, error)
}

// Server hosts the MCP tools over streamable HTTP.
type Server struct {
	config     Config
	asker      Asker
	lister     Lister
	translator Translator
	logger     *slog.Logger
	startedAt  time.Time

	httpServer *server.StreamableHTTPServer
}

// New creates an MCP server. translator may be nil; the translate-text
// tool is then not registered.
func New(cfg Config, asker Asker, lister Lister, translator Translator, logger *slog.Logger) *Server {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:     cfg,
		asker:      asker,
		lister:     lister,
		translator: translator,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// Start builds the tool set and listens in a background goroutine.
func (s *Server) Start() error {
	mcpSrv := server.NewMCPServer("recall", "1.0.0",
		server.WithToolCapabilities(false),
	)

	mcpSrv.AddTool(
		mcp.NewTool("ask",
			mcp.WithDescription("Send a message to the assistant and get the reply. The conversation keeps context across calls."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("The message to send"),
			),
		),
		s.handleAsk,
	)

	mcpSrv.AddTool(
		mcp.NewTool("list-sessions",
			mcp.WithDescription("List saved conversation snapshots, most recent first."),
		),
		s.handleListSessions,
	)

	mcpSrv.AddTool(
		mcp.NewTool("host-status",
			mcp.WithDescription("Report host and process metrics as JSON."),
		),
		s.handleHostStatus,
	)

	if s.translator != nil {
		mcpSrv.AddTool(
			mcp.NewTool("translate-text",
				mcp.WithDescription("Translate text into a target language. The source language is auto-detected."),
				mcp.WithString("text",
					mcp.Required(),
					mcp.Description("The text to translate"),
				),
				mcp.WithString("target",
					mcp.Description("Target language code, e.g. eo. Defaults to the configured target."),
				),
			),
			s.handleTranslate,
		)
	}

	s.httpServer = server.NewStreamableHTTPServer(mcpSrv)

	go func() {
		s.logger.Info("mcp server listening", "bind", s.config.Bind)
		if err := s.httpServer.Start(s.config.Bind); err != nil {
			s.logger.Error("mcp server stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP listener down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("mcpserver: shutdown: %w", err)
	}
	return nil
}
