// Command txengine replays a CSV stream of client transactions and prints the
// final state of every client account.
//
// Usage:
//
//	txengine [flags] transactions.csv > accounts.csv
//	txengine --config txengine.yaml
//	txengine setup (interactive config wizard)
//	txengine rejects --dir wal/rejects [--run <id>] (journaled malformed rows as CSV)
//
// Logs go to stderr, the account report to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/txengine/config"
	"github.com/vadiminshakov/txengine/internal/engine"
	"github.com/vadiminshakov/txengine/internal/report"
	"github.com/vadiminshakov/txengine/internal/setup"
	"github.com/vadiminshakov/txengine/internal/storage/rejects"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "setup":
			if err := setup.RunTUI(setup.DefaultPath); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "rejects":
			os.Exit(listRejects(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one replay and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Get(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer logger.Sync() //nolint:errcheck

	if err := replay(ctx, logger, cfg, stdin, stdout); err != nil {
		logger.Error("replay failed", zap.String("input", cfg.Input), zap.Error(err))
		return 1
	}
	return 0
}

func replay(ctx context.Context, logger *zap.Logger, cfg config.Config, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		in = f
	}

	var opts []engine.Option
	if cfg.RejectJournalDir != "" {
		journal, err := rejects.NewWALStore(cfg.RejectJournalDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Warn("failed to close reject journal", zap.Error(err))
			}
		}()
		logger.Debug("reject journal opened",
			zap.String("dir", cfg.RejectJournalDir),
			zap.Uint64("index", journal.CurrentIndex()),
		)
		opts = append(opts, engine.WithJournal(journal))
	}

	e, err := engine.New(logger, cfg.Engine(), opts...)
	if err != nil {
		return err
	}

	logger.Info("replay started",
		zap.String("run_id", e.RunID()),
		zap.String("input", cfg.Input),
		zap.String("on_decode_error", string(cfg.OnDecodeError)),
	)

	snapshots, err := e.Run(ctx, in)
	if err != nil {
		return err
	}

	if cfg.OutputFormat == config.OutputTable {
		return report.WriteTable(stdout, snapshots)
	}
	return report.WriteCSV(stdout, snapshots)
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), lvl)

	return zap.New(core), nil
}
