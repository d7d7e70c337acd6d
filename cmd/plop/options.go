package main

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/plop/internal/config"
	"github.com/vango-dev/plop/internal/demo"
)

// tracerFor returns the global tracer when tracing is enabled and a no-op
// tracer otherwise.
func tracerFor(cfg *config.Config) trace.Tracer {
	if cfg.Tracing.Enabled {
		return otel.Tracer(cfg.Tracing.TracerName)
	}
	return noop.NewTracerProvider().Tracer(cfg.Tracing.TracerName)
}

func loggerFor(cfg *config.Config) *slog.Logger {
	return cfg.Logger(os.Stderr)
}

func demoConfig(cfg *config.Config, items int) demo.Config {
	return demo.Config{
		Items:    items,
		Selector: cfg.Mount.Selector,
		Offset:   cfg.Mount.Offset,
	}
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
