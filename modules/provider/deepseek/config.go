package deepseek

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the configuration for the DeepSeek provider.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Defaults sets default values for unset fields.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.deepseek.com/v1"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = "deepseek-chat"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate returns an error if required fields are missing or malformed.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("provider.deepseek: base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provider.deepseek: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.APIKey == "" && c.APIKeyEnv == "" {
		return fmt.Errorf("provider.deepseek: one of api_key or api_key_env is required")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider.deepseek: max_tokens must not be negative")
	}
	return nil
}

// resolveAPIKey returns the literal key, or the value of the named
// environment variable when api_key_env is set.
func (c *Config) resolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("provider.deepseek: environment variable %s is empty", c.APIKeyEnv)
	}
	return key, nil
}
