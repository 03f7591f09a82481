// Command shopguard serves the guarded shopping assistant over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/shopguard"
	"github.com/hupe1980/shopguard/config"
	"github.com/hupe1980/shopguard/guard"
	"github.com/hupe1980/shopguard/logging"
	"github.com/hupe1980/shopguard/model"
	"github.com/hupe1980/shopguard/model/anthropic"
	"github.com/hupe1980/shopguard/model/openai"
	"github.com/hupe1980/shopguard/observability"
	"github.com/hupe1980/shopguard/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shopguard:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLogLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stdout,
		Component: "shopguard",
	})

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	sg := shopguard.New(m, func(o *shopguard.Options) {
		o.MaxSteps = cfg.MaxSteps
		o.MaxBasketQuantity = cfg.MaxBasketQuantity
		o.ResponseStrictness = guard.Strictness(cfg.ResponseStrictness)
		o.Metrics = metrics
		o.Logger = logger
	})

	srv := server.New(sg.Pipeline(), func(o *server.Options) {
		o.AuthToken = cfg.AuthToken
		o.RequestTimeout = cfg.RequestTimeout
		o.Logger = logger
	})

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.BindAddr, "provider", cfg.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("server.shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
			if cfg.APIKey != "" {
				o.APIKey = cfg.APIKey
			}
		}), nil
	case config.ProviderMock:
		return model.NewMockModel(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
