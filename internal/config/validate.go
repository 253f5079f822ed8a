package config

import (
	"errors"
	"fmt"
)

// Validate checks structural constraints across all sections. It returns
// every problem found, joined, so a broken file can be fixed in one pass.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Provider.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("provider: %w", err))
	}
	if c.History.Compaction.Threshold < 0 {
		errs = append(errs, fmt.Errorf("history.compaction: threshold must not be negative, got %d", c.History.Compaction.Threshold))
	}
	if c.History.Compaction.CharsPerToken < 0 {
		errs = append(errs, fmt.Errorf("history.compaction: chars_per_token must not be negative, got %d", c.History.Compaction.CharsPerToken))
	}
	if c.Gateway.Enabled && c.Gateway.Bind == "" {
		errs = append(errs, errors.New("gateway: bind is required when enabled"))
	}
	if c.MCP.Enabled && c.MCP.Bind == "" {
		errs = append(errs, errors.New("mcp: bind is required when enabled"))
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram: token is required when enabled"))
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("telemetry: otlp_endpoint is required when enabled"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
