package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/undergrid/recall/internal/provider"
)

// Saver persists the current conversation. Defined here to avoid a
// circular dependency on the session package.
type Saver interface {
	SaveNow() (string, error)
}

// AutosaveJob periodically snapshots the conversation so a crash loses
// at most one schedule interval of history.
type AutosaveJob struct {
	Saver        Saver
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/15 * * * *"
}

// Compile-time interface check.
var _ Job = (*AutosaveJob)(nil)

// Name implements Job.
func (j *AutosaveJob) Name() string { return "autosave" }

// Schedule implements Job.
func (j *AutosaveJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/15 * * * *"
}

// Run saves a snapshot of the current conversation.
func (j *AutosaveJob) Run(_ context.Context) error {
	name, err := j.Saver.SaveNow()
	if err != nil {
		return fmt.Errorf("cron: autosave failed: %w", err)
	}
	j.Logger.Debug("cron: autosaved conversation", "snapshot", name)
	return nil
}

// HealthProbeJob periodically checks provider availability and logs
// state changes.
type HealthProbeJob struct {
	Checker      provider.HealthChecker
	Logger       *slog.Logger
	Timeout      time.Duration // empty = default 10s
	ScheduleExpr string        // empty = default "*/5 * * * *"

	wasDown bool
}

// Compile-time interface check.
var _ Job = (*HealthProbeJob)(nil)

// Name implements Job.
func (j *HealthProbeJob) Name() string { return "health_probe" }

// Schedule implements Job.
func (j *HealthProbeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run probes the provider. Only transitions are logged at warn/info;
// steady states stay at debug.
func (j *HealthProbeJob) Run(ctx context.Context) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := j.Checker.HealthCheck(probeCtx)
	switch {
	case err != nil && !j.wasDown:
		j.wasDown = true
		j.Logger.Warn("cron: provider became unhealthy", "error", err)
	case err == nil && j.wasDown:
		j.wasDown = false
		j.Logger.Info("cron: provider recovered")
	default:
		j.Logger.Debug("cron: health probe", "healthy", err == nil)
	}
	return nil
}
