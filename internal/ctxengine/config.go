// Package ctxengine implements conversation context management:
// token estimation and history compaction.
package ctxengine

// Config holds the tuning knobs for the context engine.
type Config struct {
	// Threshold is the number of user turns after which compaction
	// fires. Compaction fires on every positive multiple: with the
	// default of 6, after the 6th, 12th, 18th... user turn.
	Threshold int `yaml:"threshold"`

	// CharsPerToken is the ratio used by the character-based token
	// estimate. The estimate is an approximation, not a tokenizer.
	CharsPerToken int `yaml:"chars_per_token"`
}

// withDefaults returns a copy of cfg with zero-valued fields replaced
// by the reference defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Threshold == 0 {
		cfg.Threshold = 6
	}
	if cfg.CharsPerToken == 0 {
		cfg.CharsPerToken = 4
	}
	return cfg
}
