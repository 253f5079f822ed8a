// Package translate provides a small LibreTranslate API client.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrUnsupportedLanguage indicates the target language is not served
// by the configured instance.
var ErrUnsupportedLanguage = errors.New("translate: unsupported language")

// Config holds LibreTranslate client configuration.
type Config struct {
	// BaseURL is the LibreTranslate instance root.
	BaseURL string `yaml:"base_url"`

	// APIKey is sent with every request when set. Public instances
	// usually require one.
	APIKey string `yaml:"api_key"`

	// DefaultTarget is the target language used when a request does
	// not name one.
	DefaultTarget string `yaml:"default_target"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`
}

// Defaults fills zero values with sensible defaults.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://libretranslate.com"
	}
	if c.DefaultTarget == "" {
		c.DefaultTarget = "eo"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}

// Client calls a LibreTranslate instance.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a translation client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg.Defaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	DetectedLang   struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	} `json:"detectedLanguage"`
	Error string `json:"error"`
}

// Result is a completed translation.
type Result struct {
	Text     string
	Detected string
}

// Translate translates text into target. An empty target uses the
// configured default. The source language is auto-detected.
func (c *Client) Translate(ctx context.Context, text, target string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("translate: empty text")
	}
	if target == "" {
		target = c.config.DefaultTarget
	}

	body, err := json.Marshal(translateRequest{
		Query:  text,
		Source: "auto",
		Target: target,
		Format: "text",
		APIKey: c.config.APIKey,
	})
	if err != nil {
		return Result{}, fmt.Errorf("translate: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.BaseURL, "/")+"/translate", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("translate: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("translate: sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("translate: reading response: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("translate: parsing response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if strings.Contains(strings.ToLower(parsed.Error), "not supported") {
			return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, target)
		}
		if parsed.Error != "" {
			return Result{}, fmt.Errorf("translate: API error (status %d): %s", resp.StatusCode, parsed.Error)
		}
		return Result{}, fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	c.logger.Debug("translated text",
		"target", target,
		"detected", parsed.DetectedLang.Language,
		"chars", len(text))

	return Result{
		Text:     parsed.TranslatedText,
		Detected: parsed.DetectedLang.Language,
	}, nil
}

// Language describes one language offered by the instance.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages lists the languages the instance can translate into.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.config.BaseURL, "/")+"/languages", nil)
	if err != nil {
		return nil, fmt.Errorf("translate: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translate: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	var langs []Language
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("translate: parsing response: %w", err)
	}
	return langs, nil
}
