package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	asistenkepsek "github.com/MegaGrindStone/asisten-kepsek"
	"github.com/MegaGrindStone/asisten-kepsek/internal/handlers"
	"github.com/MegaGrindStone/asisten-kepsek/internal/services"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const errLoggerKey = "err"

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return serve(cfg, logger)
		},
	}
}

// buildGateway builds the configured provider wrapped with metrics and the call log. A missing
// credential is not fatal: it yields a nil gateway and the reason to show instead of the chat.
func buildGateway(cfg config, callLog services.CallLog, logger *slog.Logger) (session.Gateway, string, error) {
	provider, err := cfg.llm.gateway(logger)
	if errors.Is(err, ErrMissingCredential) {
		reason := disabledReason(cfg.llm)
		logger.Warn("Model gateway disabled",
			slog.String("provider", cfg.llm.provider()),
			slog.String(errLoggerKey, err.Error()))
		return nil, reason, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("error creating %s gateway: %w", cfg.llm.provider(), err)
	}
	return services.NewInstrumented(cfg.llm.provider(), provider, callLog, logger), "", nil
}

func dataDir(cfg config) (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting user config dir: %w", err)
	}
	return filepath.Join(cfgDir, "kepsek"), nil
}

func serve(cfg config, logger *slog.Logger) error {
	defaults, err := cfg.settings()
	if err != nil {
		return fmt.Errorf("invalid default settings: %w", err)
	}

	dir, err := dataDir(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	callLog, err := services.NewBoltCallLog(filepath.Join(dir, "calls.db"))
	if err != nil {
		return err
	}
	defer callLog.Close()

	gateway, reason, err := buildGateway(cfg, callLog, logger)
	if err != nil {
		return err
	}

	m, err := handlers.NewMain(handlers.Config{
		Gateway:        gateway,
		DisabledReason: reason,
		CredentialEnv:  cfg.llm.credentialEnv(),
		CallLog:        callLog,
		Models:         cfg.Models,
		Defaults:       defaults,
		MaxSessions:    cfg.MaxSessions,
	}, logger)
	if err != nil {
		return err
	}

	// Serve static files
	staticFS, err := fs.Sub(asistenkepsek.StaticFS, "static")
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(staticFS))

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chat", m.HandleChat)
	mux.HandleFunc("/pending/use", m.HandleUsePending)
	mux.HandleFunc("/settings", m.HandleSettings)
	mux.HandleFunc("/reset", m.HandleReset)
	mux.HandleFunc("/templates/{kind}", m.HandleTemplate)
	mux.HandleFunc("/transcript", m.HandleTranscript)
	mux.HandleFunc("/sse", m.HandleSSE)
	mux.HandleFunc("/api/calls", m.HandleCalls)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String(errLoggerKey, err.Error()))
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("provider", cfg.llm.provider()))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String(errLoggerKey, err.Error()))
			if err := srv.Close(); err != nil {
				return fmt.Errorf("forcing server close: %w", err)
			}
		}
	}

	return nil
}
