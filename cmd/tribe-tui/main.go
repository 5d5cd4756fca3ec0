// Command tribe-tui is a terminal dashboard for one tribe.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/config"
	"tribe-backend/pkg/logging"
	"tribe-backend/pkg/session"
	"tribe-backend/pkg/tui"
)

func main() {
	configPath := flag.String("config", os.Getenv("TRIBECTL_CONFIG"), "client config file (YAML)")
	logPath := flag.String("log", "", "write logs to this file (default: discarded)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tribe-tui [--config <file>] [--log <file>] <tribe>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *logPath, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath, tribeArg string) error {
	// the dashboard owns the terminal, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.SetupWriter(logOut, "tribe-tui", "cli", true)

	addr, err := chain.ParseAddress(tribeArg)
	if err != nil {
		return err
	}
	cfg, err := config.LoadClientConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	s, err := session.Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.New(ctx, tui.Options{
		Contract:       s.Tribe(addr),
		User:           s.User(),
		Transactor:     s.Transactor(),
		Confirmer:      s.Confirmer,
		Refresher:      s.Refresher(),
		PollInterval:   cfg.PollInterval,
		ReceiptTimeout: cfg.ReceiptTimeout,
	})
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
