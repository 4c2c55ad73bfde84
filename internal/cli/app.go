package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/arcsys-ai/arcsys/graph"
	"github.com/arcsys-ai/arcsys/graph/emit"
	"github.com/arcsys-ai/arcsys/graph/store"
	"github.com/arcsys-ai/arcsys/internal/config"
	"github.com/arcsys-ai/arcsys/internal/logging"
	"github.com/arcsys-ai/arcsys/model"
	"github.com/arcsys-ai/arcsys/model/anthropic"
	"github.com/arcsys-ai/arcsys/model/google"
	"github.com/arcsys-ai/arcsys/model/openai"
	"github.com/arcsys-ai/arcsys/pipeline"
)

// app holds the collaborators constructed once at process start and shared
// for the process lifetime.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	store    store.Store[pipeline.State]
	registry *prometheus.Registry

	closers []func() error
}

func buildApp(configPath string) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logging.New(os.Stderr, cfg.Observability.LogLevel, cfg.Observability.LogJSON),
		registry: prometheus.NewRegistry(),
	}

	gen, err := a.buildGenerator()
	if err != nil {
		a.Close()
		return nil, err
	}
	limited := model.NewLimited(gen, cfg.Pipeline.RateLimitPerMinute, cfg.Pipeline.GenerationTimeout.Std())

	if a.store, err = a.buildStore(); err != nil {
		a.Close()
		return nil, err
	}

	var emitter emit.Emitter
	switch {
	case cfg.Observability.Tracing:
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		a.closers = append(a.closers, func() error {
			return tp.Shutdown(context.Background())
		})
		emitter = emit.NewOTelEmitter(tp.Tracer("arcsys"))
	case cfg.Observability.LogLevel == "debug":
		emitter = emit.NewLogEmitter(os.Stderr, cfg.Observability.LogJSON)
	}

	a.pipeline, err = pipeline.New(pipeline.Params{
		Generator:   limited,
		Store:       a.store,
		Emitter:     emitter,
		MaxAttempts: cfg.Pipeline.MaxRetries,
		Threshold:   cfg.Pipeline.CriticThreshold,
		Metrics:     graph.NewMetrics(a.registry),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	return a, nil
}

func (a *app) buildGenerator() (model.Generator, error) {
	m := a.cfg.Model
	switch m.Provider {
	case "openai":
		return openai.New(m.APIKey, m.Name, m.BaseURL), nil
	case "anthropic":
		return anthropic.New(m.APIKey, m.Name), nil
	case "google":
		gen, err := google.New(context.Background(), m.APIKey, m.Name)
		if err != nil {
			return nil, fmt.Errorf("creating Gemini client: %w", err)
		}
		a.closers = append(a.closers, gen.Close)
		return gen, nil
	case "mock":
		// Canned responses for offline smoke runs; one clean pass.
		return &model.Mock{Responses: []string{
			"Mock requirements extraction.",
			"Mock research findings.",
			"Mock architecture design.",
			"Mock visualization diagrams.",
			`{"score": 8.0, "feedback": "Mock evaluation."}`,
			"0.1 - mock risk assessment",
		}}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", m.Provider)
	}
}

func (a *app) buildStore() (store.Store[pipeline.State], error) {
	s := a.cfg.Store
	switch s.Backend {
	case "memory":
		return store.NewMemStore[pipeline.State](), nil
	case "sqlite":
		st, err := store.NewSQLiteStore[pipeline.State](s.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	case "mysql":
		st, err := store.NewMySQLStore[pipeline.State](s.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening mysql store: %w", err)
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.Backend)
	}
}

// Close releases held resources in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
