package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/ui"
	"github.com/nconklindev/sweeper/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `usage:
  sweeper [file.csv|file.xlsx ...]   open the terminal UI
  sweeper serve                      start the HTTP API
  sweeper --version                  print version information
`

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v":
			fmt.Printf("sweeper %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
			os.Exit(0)
		case "--help", "-h":
			fmt.Print(usage)
			os.Exit(0)
		}
	}

	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(args) > 0 && args[0] == "serve" {
		os.Exit(serve(cfg))
	}

	os.Exit(runTUI(cfg, args))
}

func runTUI(cfg *config.Config, paths []string) int {
	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
		return 1
	}
	defer logFile.Close()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, logFile)

	model := ui.InitialModel(paths, ui.Options{
		PreviewRows: cfg.Preview.Rows,
		ChartSeries: cfg.Preview.ChartSeries,
		ChartRows:   cfg.Preview.ChartRows,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config) int {
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"max_file_size", cfg.Upload.MaxFileSize,
		"workers", cfg.Upload.Workers,
	)

	server := web.NewServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server stopped", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return 1
	}
	if err := <-errCh; err != nil {
		slog.Error("server stopped", "error", err)
		return 1
	}
	return 0
}
