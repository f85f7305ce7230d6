package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-allocator/internal/config"
	"parking-allocator/internal/logging"
	"parking-allocator/internal/parking"
	"parking-allocator/internal/server"
)

var (
	mode     = flag.String("mode", "", "Mode to run: cli, server, or both (overrides APP_MODE)")
	port     = flag.String("port", "", "Port for HTTP server (overrides PORT)")
	capacity = flag.Int("capacity", -1, "Pre-create a lot with this many slots (overrides PARKING_CAPACITY)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *capacity >= 0 {
		cfg.Capacity = *capacity
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := newTelemetry(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}

	logging.InitWithWriter(logWriter(cfg.Mode), cfg.OTelServiceName, cfg.Environment)
	logging.Info(ctx, "starting parking allocator",
		"mode", cfg.Mode, "capacity", cfg.Capacity, "otel_enabled", cfg.OTelEnabled)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Mode {
	case "cli":
		err = runCLI(ctx, cancel, cfg, telemetryProvider, sigChan)
	case "server":
		err = runServer(ctx, cancel, cfg, telemetryProvider, sigChan)
	case "both":
		err = runBoth(ctx, cancel, cfg, telemetryProvider, sigChan)
	}
	if err != nil {
		logging.Error(ctx, "parking allocator stopped with error", "error", err)
	}

	shutdownTelemetry(telemetryProvider)
	if err != nil {
		os.Exit(1)
	}
}

// logWriter keeps JSON logs off stdout whenever the shell is replying there.
func logWriter(mode string) io.Writer {
	if mode == "server" {
		return os.Stdout
	}
	return os.Stderr
}

func newTelemetry(ctx context.Context, cfg *config.Config) (*parking.TelemetryProvider, error) {
	if !cfg.OTelEnabled {
		return parking.NewLocalTelemetryProvider(cfg.OTelServiceName), nil
	}
	return parking.NewTelemetryProvider(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
}

func newShell(cfg *config.Config, telemetryProvider *parking.TelemetryProvider) (*parking.InstrumentedShell, error) {
	shell := parking.NewInstrumentedShell(telemetryProvider, os.Stdin, os.Stdout)
	if cfg.Capacity > 0 {
		if err := shell.CreateParkingLot(cfg.Capacity); err != nil {
			return nil, fmt.Errorf("create shell parking lot: %w", err)
		}
	}
	return shell, nil
}

func newServer(cfg *config.Config, telemetryProvider *parking.TelemetryProvider) (*server.Server, error) {
	handler := server.NewHandler(cfg.OTelServiceName, telemetryProvider)
	if cfg.Capacity > 0 {
		if err := handler.CreateParkingLot(cfg.Capacity); err != nil {
			return nil, fmt.Errorf("create server parking lot: %w", err)
		}
	}
	return server.NewServer(cfg.Port, handler, telemetryProvider), nil
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) error {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	shell, err := newShell(cfg, telemetryProvider)
	if err != nil {
		return err
	}
	shell.Run(ctx)
	return nil
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) error {
	srv, err := newServer(cfg, telemetryProvider)
	if err != nil {
		return err
	}

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		shutdownServer(srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// runBoth serves HTTP and reads the shell at the same time. The two surfaces
// each get their own lot.
func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) error {
	srv, err := newServer(cfg, telemetryProvider)
	if err != nil {
		return err
	}
	shell, err := newShell(cfg, telemetryProvider)
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		shell.Run(ctx)
		close(cliDone)
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-cliDone:
		logging.Info(ctx, "cli exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownServer(srv)
	return nil
}

func shutdownServer(srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server shutdown error", "error", err)
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error shutting down telemetry: %v\n", err)
	}
}
