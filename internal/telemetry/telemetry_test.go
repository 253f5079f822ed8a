package telemetry

import (
	"context"
	"testing"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), Config{}, "test", nil)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown func is nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero clamps to full sampling", 0, 1},
		{"negative clamps to full sampling", -0.5, 1},
		{"above one clamps to full sampling", 1.5, 1},
		{"valid ratio kept", 0.25, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Config{SampleRatio: tt.in}
			cfg.Defaults()
			if cfg.SampleRatio != tt.want {
				t.Errorf("SampleRatio = %v, want %v", cfg.SampleRatio, tt.want)
			}
		})
	}
}
