package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate_Success(t *testing.T) {
	t.Parallel()

	var gotReq translateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %q, want /translate", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"translatedText": "Saluton, mondo",
			"detectedLanguage": map[string]any{
				"language":   "en",
				"confidence": 95.0,
			},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "secret"}, nil)
	res, err := c.Translate(context.Background(), "Hello, world", "")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	if res.Text != "Saluton, mondo" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.Detected != "en" {
		t.Errorf("Detected = %q", res.Detected)
	}
	if gotReq.Target != "eo" {
		t.Errorf("request target = %q, want default eo", gotReq.Target)
	}
	if gotReq.Source != "auto" {
		t.Errorf("request source = %q, want auto", gotReq.Source)
	}
	if gotReq.APIKey != "secret" {
		t.Errorf("request api_key = %q", gotReq.APIKey)
	}
}

func TestTranslate_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "xx is not supported"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	_, err := c.Translate(context.Background(), "hello", "xx")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestTranslate_EmptyText(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	if _, err := c.Translate(context.Background(), "   ", "eo"); err == nil {
		t.Error("Translate() succeeded on blank text")
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/languages" {
			t.Errorf("path = %q, want /languages", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Language{
			{Code: "en", Name: "English"},
			{Code: "eo", Name: "Esperanto"},
		})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	langs, err := c.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages() error = %v", err)
	}
	if len(langs) != 2 || langs[1].Code != "eo" {
		t.Errorf("Languages() = %+v", langs)
	}
}
