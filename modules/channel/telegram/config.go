package telegram

import (
	"fmt"
	"net/url"
	"regexp"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Config holds the Telegram channel configuration.
type Config struct {
	Enabled        bool    `yaml:"enabled"`
	Token          string  `yaml:"token"`
	PollingTimeout int     `yaml:"polling_timeout"`
	AllowUsers     []int64 `yaml:"allow_users"`
	APIURL         string  `yaml:"api_url"`
}

// Defaults applies default values to unset fields.
func (c *Config) Defaults() {
	if c.PollingTimeout == 0 {
		c.PollingTimeout = 30
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
}

// Validate checks configuration field constraints.
func (c *Config) Validate() error {
	if c.Token != "" && !tokenPattern.MatchString(c.Token) {
		return fmt.Errorf("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
		}
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}

	return nil
}

// allowed reports whether a sender may talk to the bot. An empty
// allow list admits everyone.
func (c *Config) allowed(userID int64) bool {
	if len(c.AllowUsers) == 0 {
		return true
	}
	for _, id := range c.AllowUsers {
		if id == userID {
			return true
		}
	}
	return false
}
