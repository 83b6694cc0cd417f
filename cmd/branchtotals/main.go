// Command branchtotals sums a card statement by spending category, prints the
// totals and draws them as a pie or bar chart.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ArionMiles/branchtotals/internal/plugins"
	"github.com/ArionMiles/branchtotals/internal/runner"
	"github.com/ArionMiles/branchtotals/pkg/api"
	"github.com/ArionMiles/branchtotals/pkg/config"
	"github.com/ArionMiles/branchtotals/pkg/logging"
	csvplugin "github.com/ArionMiles/branchtotals/pkg/plugins/writers/csv"
	jsonplugin "github.com/ArionMiles/branchtotals/pkg/plugins/writers/json"
)

func main() {
	configPath := flag.String("config", "", "optional JSON config file")
	flag.Parse()

	// A .env file is optional; the environment alone is enough.
	_ = godotenv.Load()

	logger := logging.WithRun(logging.Setup(logging.DefaultConfig()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	os.Exit(report(os.Stdout, run(cfg, logger), cfg.StatementFile))
}

func run(cfg config.Config, logger *slog.Logger) error {
	registry := plugins.NewRegistry()
	for _, p := range []plugins.WriterPlugin{&csvplugin.Plugin{}, &jsonplugin.Plugin{}} {
		if err := registry.RegisterWriter(p); err != nil {
			return fmt.Errorf("registering writer: %w", err)
		}
	}

	// Setup context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("processing statement", "file", cfg.StatementFile)
	return runner.New(registry, os.Stdin, os.Stdout, logger).Run(ctx, cfg)
}

// report prints the user-facing message for err and returns the exit code.
func report(w io.Writer, err error, path string) int {
	if err == nil {
		return 0
	}

	var loadErr *runner.LoadError
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "Interrupted.")
	case errors.Is(err, api.ErrFileNotFound):
		fmt.Fprintf(w, "File %s not found.\n", path)
	case errors.As(err, &loadErr):
		fmt.Fprintf(w, "Error loading excel file: %v\n", loadErr.Err)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return 1
}
