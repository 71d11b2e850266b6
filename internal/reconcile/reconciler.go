package reconcile

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"jellyclean/internal/logging"
	"jellyclean/internal/subtitles"
)

// Options tunes a Reconciler.
type Options struct {
	// DryRun plans every entry but never touches the filesystem.
	DryRun bool
}

// Result describes one reconciled entry. Plan is nil when planning failed.
type Result struct {
	Plan *Plan
	// Planned is the number of changes the plan calls for.
	Planned int
	// Mutations is the number of changes actually made.
	Mutations int
}

// Reconciler brings single top-level entries into canonical layout.
type Reconciler struct {
	fs        afero.Fs
	logger    *slog.Logger
	extractor *subtitles.Extractor
	dryRun    bool
}

// New constructs a Reconciler over fsys.
func New(fsys afero.Fs, logger *slog.Logger, opts Options) *Reconciler {
	return &Reconciler{
		fs:        fsys,
		logger:    logging.NewComponentLogger(logger, "reconcile"),
		extractor: subtitles.NewExtractor(fsys, logger),
		dryRun:    opts.DryRun,
	}
}

// DryRun reports whether the reconciler only plans.
func (r *Reconciler) DryRun() bool {
	return r.dryRun
}

// PlanDirectory computes the plan for the directory parentDir/name without
// changing anything.
func (r *Reconciler) PlanDirectory(parentDir, name string) (*Plan, error) {
	return r.planDirectory(parentDir, name)
}

// Reconcile normalizes the directory parentDir/name: children are renamed or
// removed and the directory is renamed to its canonical name last. Running it
// on a canonical directory performs no mutations.
func (r *Reconciler) Reconcile(ctx context.Context, parentDir, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	plan, err := r.planDirectory(parentDir, name)
	if err != nil {
		return Result{}, err
	}
	return r.run(plan)
}

// ReconcileVideo moves the video parentDir/name into a new directory named
// after its canonical base, renaming the file on the way.
func (r *Reconciler) ReconcileVideo(ctx context.Context, parentDir, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	plan, err := r.planVideo(parentDir, name)
	if err != nil {
		return Result{}, err
	}
	return r.run(plan)
}

func (r *Reconciler) run(plan *Plan) (Result, error) {
	result := Result{Plan: plan, Planned: plan.Mutations()}
	r.logger.Debug("planned entry",
		logging.String(logging.FieldEntry, plan.Source),
		logging.String("target", plan.Target),
		logging.Int("moves", len(plan.Moves)),
		logging.Int("removals", len(plan.Removals)),
		logging.Int("subtitles", plan.Subtitles),
		logging.Int("planned_mutations", result.Planned),
		logging.Bool("dry_run", r.dryRun),
	)
	if r.dryRun || result.Planned == 0 {
		return result, nil
	}
	mutations, err := r.apply(plan)
	result.Mutations = mutations
	return result, err
}
