package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "host and port",
			opts: Options{ServiceName: "stackit-api", ServiceVersion: "1.0.0", Endpoint: "localhost:4318"},
		},
		{
			name: "full URL",
			opts: Options{ServiceName: "stackit-api", Endpoint: "http://localhost:4318/v1/traces"},
		},
		{
			name: "empty service name",
			opts: Options{Endpoint: "localhost:4318"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tp, err := InitTracer(ctx, tt.opts)
			if err != nil {
				t.Fatalf("InitTracer() error = %v", err)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := Shutdown(shutdownCtx, tp); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestExporterOptions(t *testing.T) {
	t.Parallel()

	if got := len(exporterOptions("collector:4318")); got != 2 {
		t.Errorf("host:port options = %d, want 2 (endpoint + insecure)", got)
	}
	if got := len(exporterOptions("https://collector.example.com/v1/traces")); got != 1 {
		t.Errorf("URL options = %d, want 1", got)
	}
}

func TestShutdown_NilProvider(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown(nil) error = %v", err)
	}
}
