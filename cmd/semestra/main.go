package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/avelichko/semestra/internal/api"
	"github.com/avelichko/semestra/internal/auth"
	"github.com/avelichko/semestra/internal/cli"
	"github.com/avelichko/semestra/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(filepath.Join(cfg.DataDir, "semestra.db"))
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer st.Close()

	tokens := auth.NewFileTokenSource(cfg.DataDir)
	client := api.NewClient(cfg, tokens, api.NewLogObserver(logger))

	app := &cli.App{
		Client: client,
		Tokens: tokens,
		Store:  st,
		Log:    logger,
		Now:    time.Now,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}

// newLogger writes to a file under the data directory. The TUI owns
// the terminal, so nothing may log to stdout or stderr while it runs.
func newLogger(cfg api.Config) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "semestra.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}
