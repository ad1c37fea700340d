package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/report"
)

var (
	configPath = flag.String("config", "", "Path to config.yaml (defaults to ./config.yaml if present)")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of styled terminal output")
	width      = flag.Int("width", 100, "Word-wrap width for terminal output")
)

// setup loads configuration and returns a context carrying the logger.
// Logs go to stderr so stdout stays clean for reports.
func setup() (context.Context, *config.Config, zerolog.Logger, error) {
	log := logger.New()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, nil, log, err
	}
	log = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	return logger.WithContext(context.Background(), log), cfg, log, nil
}

func openApp(ctx context.Context, cfg *config.Config, opts app.Options) (*app.App, error) {
	a, err := app.Open(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return a, nil
}

func printMarkdown(md string) {
	fmt.Print(report.Terminal(md, *width, *plain))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// promptConfirm prints the preview and asks before committing.
func promptConfirm(in io.Reader, out io.Writer) pipeline.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(s pipeline.Summary) bool {
		fmt.Fprint(out, report.Terminal(report.RenderSummary(s), *width, *plain))
		fmt.Fprintf(out, "Commit %d transactions? [y/N] ", s.Ready)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		return isYes(line)
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
