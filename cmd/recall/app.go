package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/undergrid/recall/internal/completion"
	"github.com/undergrid/recall/internal/config"
	"github.com/undergrid/recall/internal/cron"
	"github.com/undergrid/recall/internal/ctxengine"
	"github.com/undergrid/recall/internal/gateway"
	"github.com/undergrid/recall/internal/mcpserver"
	"github.com/undergrid/recall/internal/session"
	"github.com/undergrid/recall/internal/snapshot"
	"github.com/undergrid/recall/internal/telemetry"
	"github.com/undergrid/recall/internal/translate"
	"github.com/undergrid/recall/internal/usage"
	"github.com/undergrid/recall/modules/channel/telegram"
	"github.com/undergrid/recall/modules/provider/deepseek"
)

// app bundles the wired components of one process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	prov    *deepseek.Provider
	session *session.Session
	metrics *gateway.Metrics
	hub     *gateway.EventHub

	gw        *gateway.Gateway
	mcp       *mcpserver.Server
	tg        *telegram.Channel
	scheduler *cron.Scheduler
	db        *sql.DB

	shutdownTelemetry func(context.Context) error
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// buildApp wires the core pipeline: provider, adapter, compactor,
// snapshot store, usage journal, and session. Peripheral servers are
// started separately by the caller.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version, logger)
	if err != nil {
		return nil, err
	}

	prov, err := deepseek.New(cfg.Provider, logger)
	if err != nil {
		return nil, err
	}

	adapter := completion.NewAdapter(prov, completion.Options{
		MaxTokens: cfg.Provider.MaxTokens,
	}, logger)

	estimator := ctxengine.NewCharEstimator(cfg.History.Compaction.CharsPerToken)
	compactor := ctxengine.NewCompactor(adapter, estimator, cfg.History.Compaction, logger)
	store := snapshot.New(cfg.History.Dir)

	journal, db, err := usage.Open(cfg.History.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("opening usage journal: %w", err)
	}

	metrics := gateway.NewMetrics()
	hub := gateway.NewEventHub(logger)

	sess := session.New(session.Deps{
		Adapter:   adapter,
		Compactor: compactor,
		Estimator: estimator,
		Store:     store,
		Journal:   journal,
		Recorder:  metrics,
		Sink:      hub.Publish,
		Logger:    logger,
	})

	return &app{
		cfg:               cfg,
		logger:            logger,
		prov:              prov,
		session:           sess,
		metrics:           metrics,
		hub:               hub,
		db:                db,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// startPeripherals brings up the gateway, MCP server, Telegram channel,
// and cron jobs according to the configuration.
func (a *app) startPeripherals(ctx context.Context) error {
	if a.cfg.Gateway.Enabled {
		a.gw = gateway.New(a.cfg.Gateway, a.session, a.metrics, a.hub, a.logger)
		if err := a.gw.Start(); err != nil {
			return fmt.Errorf("starting gateway: %w", err)
		}
	}

	if a.cfg.MCP.Enabled {
		var translator mcpserver.Translator
		if a.cfg.Translate.BaseURL != "" {
			translator = translate.New(a.cfg.Translate, a.logger)
		}
		a.mcp = mcpserver.New(a.cfg.MCP, a.session, a.session, translator, a.logger)
		if err := a.mcp.Start(); err != nil {
			return fmt.Errorf("starting mcp server: %w", err)
		}
	}

	if a.cfg.Telegram.Enabled {
		tg, err := telegram.New(a.cfg.Telegram, a.session, a.logger)
		if err != nil {
			return fmt.Errorf("creating telegram channel: %w", err)
		}
		if err := tg.Start(ctx); err != nil {
			return fmt.Errorf("starting telegram channel: %w", err)
		}
		a.tg = tg
	}

	if a.cfg.History.AutosaveSchedule != "" {
		a.scheduler = cron.NewScheduler(a.logger)
		if err := a.scheduler.RegisterJob(&cron.AutosaveJob{
			Saver:        a.session,
			Logger:       a.logger,
			ScheduleExpr: a.cfg.History.AutosaveSchedule,
		}); err != nil {
			return err
		}
		if err := a.scheduler.RegisterJob(&cron.HealthProbeJob{
			Checker: a.prov,
			Logger:  a.logger,
		}); err != nil {
			return err
		}
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
	}

	return nil
}

// stop shuts everything down in reverse order of startup. A final
// snapshot is taken so nothing said since the last save is lost.
func (a *app) stop(ctx context.Context) {
	if a.scheduler != nil {
		_ = a.scheduler.Stop(ctx)
	}
	if a.tg != nil {
		a.tg.Stop()
	}
	if a.mcp != nil {
		if err := a.mcp.Stop(ctx); err != nil {
			a.logger.Warn("mcp shutdown failed", "error", err)
		}
	}
	if a.gw != nil {
		if err := a.gw.Stop(); err != nil {
			a.logger.Warn("gateway shutdown failed", "error", err)
		}
	}

	if a.session.Status().Turns > 0 {
		if name, err := a.session.SaveNow(); err != nil {
			a.logger.Error("final snapshot failed", "error", err)
		} else {
			a.logger.Info("conversation saved", "snapshot", name)
		}
	}

	if a.db != nil {
		_ = a.db.Close()
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
}
