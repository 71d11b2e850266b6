package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"jellyclean/internal/config"
	"jellyclean/internal/journal"
	"jellyclean/internal/logging"
	"jellyclean/internal/preflight"
	"jellyclean/internal/reconcile"
	"jellyclean/internal/runlock"
)

// errEntryProblems marks a run that finished with skipped or failed entries.
var errEntryProblems = errors.New("some entries were not cleaned")

func runClean(cmd *cobra.Command, ctx *commandContext, rootArg string, dryRun bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	baseLogger, err := ctx.logger()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := baseLogger.With(logging.String(logging.FieldRunID, runID))

	root, err := filepath.Abs(rootArg)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", rootArg, err)
	}

	fsys := afero.NewOsFs()
	if err := preflight.RootDirectory(fsys, root); err != nil {
		return err
	}
	for _, failed := range preflight.Failed(preflight.RunAll(cfg, root)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", failed.Name),
			logging.String("detail", failed.Detail),
			logging.String(logging.FieldImpact, "entries may fail"),
		)
	}

	if cfg.Journal.Enabled || cfg.Run.SingleInstance {
		if err := cfg.EnsureStateDir(); err != nil {
			return err
		}
	}
	if cfg.Run.SingleInstance {
		lock, err := runlock.Acquire(cfg.LockPath())
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts, closeJournal, err := walkerOptions(signalCtx, cfg, logger, runID)
	if err != nil {
		return err
	}
	defer closeJournal()

	reconciler := reconcile.New(fsys, logger, reconcile.Options{DryRun: dryRun})
	walker := reconcile.NewWalker(fsys, logger, reconciler, opts...)
	if stderr := cmd.ErrOrStderr(); cfg.Run.Progress && isTerminal(stderr) {
		total, err := walker.Count(root)
		if err != nil {
			return err
		}
		reconcile.WithProgress(newProgress(stderr, total))(walker)
	}

	logger.Info("clean started",
		logging.String("root", root),
		logging.Bool("dry_run", dryRun),
	)
	started := time.Now()
	summary, walkErr := walker.Walk(signalCtx, root)
	logger.Info("clean finished",
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("entries", len(summary.Outcomes)),
		logging.Int("mutations", summary.Mutations()),
		logging.Int("skipped", summary.Count(reconcile.StatusSkipped)),
		logging.Int("failed", summary.Count(reconcile.StatusFailed)),
	)

	out := cmd.OutOrStdout()
	renderSummary(out, summary, isTerminal(out))

	if walkErr != nil {
		return walkErr
	}
	if summary.HasProblems() {
		return fmt.Errorf("%w: %d skipped, %d failed",
			errEntryProblems,
			summary.Count(reconcile.StatusSkipped),
			summary.Count(reconcile.StatusFailed),
		)
	}
	return nil
}

// walkerOptions wires the optional journal. The returned func closes it.
func walkerOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string) ([]reconcile.WalkerOption, func(), error) {
	var opts []reconcile.WalkerOption
	closeFn := func() {}

	if cfg.Journal.Enabled {
		j, err := journal.Open(ctx, cfg.JournalPath())
		if err != nil {
			return nil, closeFn, fmt.Errorf("open journal: %w", err)
		}
		closeFn = func() {
			if err := j.Close(); err != nil {
				logger.Warn("failed to close journal", logging.Error(err))
			}
		}
		opts = append(opts, reconcile.WithRecorder(journalRecorder(j, runID)))
	}
	return opts, closeFn, nil
}

func journalRecorder(j *journal.Journal, runID string) reconcile.Recorder {
	return reconcile.RecorderFunc(func(ctx context.Context, o reconcile.Outcome) error {
		_, err := j.Append(ctx, journal.Record{
			RunID:       runID,
			Path:        o.Path,
			Kind:        o.Kind,
			Canonical:   o.Canonical,
			Target:      o.Target,
			Status:      string(o.Status),
			Mutations:   o.Mutations,
			Subtitles:   o.Subtitles,
			Removed:     o.Removed,
			TVCandidate: o.TVCandidate,
			Error:       o.ErrorMessage(),
		})
		return err
	})
}

// newProgress draws a bar sized to the number of top-level entries.
func newProgress(w io.Writer, total int) reconcile.ProgressFunc {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("cleaning"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, _ int, outcome reconcile.Outcome) {
		bar.Describe(filepath.Base(outcome.Path))
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}
