package reconcile

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"jellyclean/internal/entry"
	"jellyclean/internal/faults"
	"jellyclean/internal/fileutil"
	"jellyclean/internal/logging"
	"jellyclean/internal/naming"
	"jellyclean/internal/preflight"
)

// Recorder receives every outcome as soon as it is known.
type Recorder interface {
	Record(ctx context.Context, outcome Outcome) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, outcome Outcome) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, outcome Outcome) error {
	return f(ctx, outcome)
}

// ProgressFunc is called after each top-level entry.
type ProgressFunc func(done, total int, outcome Outcome)

// Walker processes the immediate children of a root directory.
type Walker struct {
	fs         afero.Fs
	logger     *slog.Logger
	reconciler *Reconciler
	recorder   Recorder
	progress   ProgressFunc
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithRecorder sets the outcome recorder.
func WithRecorder(rec Recorder) WalkerOption {
	return func(w *Walker) {
		w.recorder = rec
	}
}

// WithProgress sets the per-entry progress callback.
func WithProgress(fn ProgressFunc) WalkerOption {
	return func(w *Walker) {
		w.progress = fn
	}
}

// NewWalker constructs a Walker that delegates to reconciler.
func NewWalker(fsys afero.Fs, logger *slog.Logger, reconciler *Reconciler, opts ...WalkerOption) *Walker {
	w := &Walker{
		fs:         fsys,
		logger:     logging.NewComponentLogger(logger, "walker"),
		reconciler: reconciler,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Count returns the number of top-level entries under root.
func (w *Walker) Count(root string) (int, error) {
	names, err := fileutil.ReadDirNames(w.fs, root)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Walk reconciles every immediate child of root in natural name order. A root
// that is not a directory is an error wrapping faults.ErrNotADirectory and
// nothing is touched. Entry failures are reported through the Summary; the
// returned error is only set for root problems or cancellation, which stops
// the walk before the next entry.
func (w *Walker) Walk(ctx context.Context, root string) (Summary, error) {
	summary := Summary{Root: root, DryRun: w.reconciler.DryRun()}
	if err := preflight.RootDirectory(w.fs, root); err != nil {
		return summary, err
	}

	children, err := fileutil.ReadDirSorted(w.fs, root)
	if err != nil {
		return summary, err
	}

	for i, info := range children {
		if err := ctx.Err(); err != nil {
			for _, rest := range children[i:] {
				summary.NotProcessed = append(summary.NotProcessed, filepath.Join(root, rest.Name()))
			}
			w.logger.Warn("walk cancelled",
				logging.Int("remaining", len(summary.NotProcessed)),
				logging.String(logging.FieldEventType, "walk_cancelled"),
			)
			return summary, err
		}

		e := entry.FromInfo(root, info)
		w.logger.Info("processing entry", logging.String("path", e.Path))

		outcome := w.process(ctx, root, e)
		summary.Outcomes = append(summary.Outcomes, outcome)

		if w.recorder != nil {
			// The entry ran to completion, so its outcome is kept even if the
			// walk was cancelled meanwhile.
			if err := w.recorder.Record(context.WithoutCancel(ctx), outcome); err != nil {
				logging.WarnWithContext(w.logger, "outcome not recorded", "record_failed",
					logging.String(logging.FieldEntry, e.Path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "entry missing from run history"),
				)
			}
		}
		if w.progress != nil {
			w.progress(i+1, len(children), outcome)
		}
	}
	return summary, nil
}

func (w *Walker) process(ctx context.Context, root string, e entry.Entry) Outcome {
	outcome := Outcome{Path: e.Path}

	var (
		result Result
		err    error
	)
	switch {
	case e.IsDir:
		outcome.Kind = entry.KindDirectory.String()
		result, err = w.reconciler.Reconcile(ctx, root, e.Name)
	case naming.IsVideo(e.Name):
		outcome.Kind = entry.KindVideo.String()
		result, err = w.reconciler.ReconcileVideo(ctx, root, e.Name)
	default:
		outcome.Kind = entry.KindOther.String()
		outcome.Status = StatusIgnored
		w.logger.Debug("ignoring loose file", logging.String(logging.FieldEntry, e.Path))
		return outcome
	}

	if plan := result.Plan; plan != nil {
		outcome.Canonical = plan.Canonical
		outcome.Target = plan.Target
		outcome.Subtitles = plan.Subtitles
		outcome.Removed = len(plan.Removals)
		outcome.TVCandidate = plan.TVCandidate
	}
	outcome.Mutations = result.Mutations

	if err != nil {
		outcome.Err = err
		outcome.Status = statusFor(err)
		attrs := []logging.Attr{
			logging.String(logging.FieldEntry, e.Path),
			logging.Error(err),
		}
		if hint := faults.Hint(err); hint != "" {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
		}
		if outcome.Status == StatusSkipped {
			logging.WarnWithContext(w.logger, "entry skipped", "entry_skipped", attrs...)
		} else {
			attrs = append(attrs, logging.Int("mutations", outcome.Mutations))
			logging.ErrorWithContext(w.logger, "entry failed", "entry_failed", attrs...)
		}
		return outcome
	}

	switch {
	case w.reconciler.DryRun() && result.Planned > 0:
		outcome.Status = StatusPlanned
		outcome.Mutations = result.Planned
	case result.Mutations > 0:
		outcome.Status = StatusCleaned
	default:
		outcome.Status = StatusUnchanged
	}
	if outcome.TVCandidate {
		w.logger.Debug("directory looks like a tv show",
			logging.String(logging.FieldEntry, e.Path),
			logging.Alert("tv_candidate"),
		)
	}
	return outcome
}
