// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for recall.
package config

import (
	"github.com/undergrid/recall/internal/ctxengine"
	"github.com/undergrid/recall/internal/gateway"
	"github.com/undergrid/recall/internal/mcpserver"
	"github.com/undergrid/recall/internal/telemetry"
	"github.com/undergrid/recall/internal/translate"
	"github.com/undergrid/recall/modules/channel/telegram"
	"github.com/undergrid/recall/modules/provider/deepseek"
)

// Config is the top-level configuration structure.
type Config struct {
	// Provider configures the completion backend.
	Provider deepseek.Config `yaml:"provider"`

	// History controls snapshots, the usage journal, and compaction.
	History HistoryConfig `yaml:"history"`

	// Gateway configures the HTTP status gateway. Disabled by default.
	Gateway gateway.Config `yaml:"gateway"`

	// MCP configures the tool server. Disabled by default.
	MCP mcpserver.Config `yaml:"mcp"`

	// Telegram configures the Telegram channel. Disabled by default.
	Telegram telegram.Config `yaml:"telegram"`

	// Translate configures the translation client used by the
	// translate-text tool.
	Translate translate.Config `yaml:"translate"`

	// Telemetry configures OTLP trace export. Disabled by default.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// HistoryConfig groups everything that persists or bounds conversation state.
type HistoryConfig struct {
	// Dir is the snapshot directory.
	Dir string `yaml:"dir"`

	// JournalPath is the SQLite usage journal file.
	JournalPath string `yaml:"journal_path"`

	// AutosaveSchedule is a cron expression for periodic snapshots.
	// Empty disables autosave.
	AutosaveSchedule string `yaml:"autosave_schedule"`

	// Compaction tunes the context engine.
	Compaction ctxengine.Config `yaml:"compaction"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Defaults fills zero values across all sections.
func (c *Config) Defaults() {
	c.Provider.Defaults()
	c.Gateway.Defaults()
	c.MCP.Defaults()
	c.Telegram.Defaults()
	c.Translate.Defaults()
	c.Telemetry.Defaults()

	if c.History.Dir == "" {
		c.History.Dir = "memory"
	}
	if c.History.JournalPath == "" {
		c.History.JournalPath = "memory/usage.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
