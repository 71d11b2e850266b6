package reconcile

import (
	"fmt"
	"path/filepath"

	"jellyclean/internal/fileutil"
	"jellyclean/internal/logging"
)

type rename struct {
	from string
	to   string
}

// apply performs plan: renames, then removals, then the directory rename. It
// returns the number of changes left on disk.
func (r *Reconciler) apply(plan *Plan) (int, error) {
	mutations := 0
	if plan.CreateTarget {
		if err := fileutil.Mkdir(r.fs, plan.Target); err != nil {
			return 0, err
		}
		mutations++
	}

	done, moved, err := r.applyMoves(plan.Moves)
	if err != nil {
		left := r.rollback(done)
		if plan.CreateTarget && left == 0 {
			if rmErr := r.fs.Remove(plan.Target); rmErr != nil {
				logging.WarnWithContext(r.logger, "created directory left behind", "rollback_failed",
					logging.String(logging.FieldEntry, plan.Source),
					logging.String("path", plan.Target),
					logging.Error(rmErr),
				)
			} else {
				mutations--
			}
		}
		return mutations + left, err
	}
	mutations += moved

	for _, rm := range plan.Removals {
		var err error
		if rm.Recursive() {
			err = fileutil.RemoveAll(r.fs, rm.Path)
		} else {
			err = fileutil.Remove(r.fs, rm.Path)
		}
		if err != nil {
			return mutations, err
		}
		mutations++
		r.logger.Debug("removed",
			logging.String(logging.FieldEntry, plan.Source),
			logging.String("path", rm.Path),
			logging.String("kind", rm.Kind.String()),
		)
	}

	if !plan.CreateTarget {
		renamed, err := fileutil.Move(r.fs, plan.Source, plan.Target)
		if err != nil {
			return mutations, err
		}
		if renamed {
			mutations++
			r.logger.Debug("renamed directory",
				logging.String(logging.FieldEntry, plan.Source),
				logging.String("target", plan.Target),
			)
		}
	}
	return mutations, nil
}

// applyMoves renames every non-noop move in order. When a target is still
// occupied by a pending source, all moves go through a temporary name first.
// It returns the renames done, for rollback, and the number of moves finished.
func (r *Reconciler) applyMoves(moves []Move) ([]rename, int, error) {
	var done []rename
	step := func(from, to string) error {
		if _, err := fileutil.Move(r.fs, from, to); err != nil {
			return err
		}
		done = append(done, rename{from: from, to: to})
		return nil
	}

	pending := make([]Move, 0, len(moves))
	for _, m := range moves {
		if !m.Noop() {
			pending = append(pending, m)
		}
	}

	if needsStaging(pending) {
		for i := range pending {
			staged := stagingPath(pending[i].Source, i)
			if err := step(pending[i].Source, staged); err != nil {
				return done, 0, err
			}
			pending[i].Source = staged
		}
		r.logger.Debug("staged moves through temporary names", logging.Int("moves", len(pending)))
	}

	for i, m := range pending {
		if err := step(m.Source, m.Target); err != nil {
			return done, i, err
		}
		r.logger.Debug("renamed",
			logging.String("source", m.Source),
			logging.String("target", m.Target),
			logging.String("kind", m.Kind.String()),
		)
	}
	return done, len(pending), nil
}

// rollback undoes renames newest first. It returns how many could not be undone.
func (r *Reconciler) rollback(done []rename) int {
	left := 0
	for i := len(done) - 1; i >= 0; i-- {
		if _, err := fileutil.Move(r.fs, done[i].to, done[i].from); err != nil {
			left++
			logging.ErrorWithContext(r.logger, "rollback failed", "rollback_failed",
				logging.String("path", done[i].to),
				logging.String("original", done[i].from),
				logging.Error(err),
			)
		}
	}
	if len(done) > 0 {
		r.logger.Debug("rolled back renames",
			logging.Int("renames", len(done)),
			logging.Int("left", left),
		)
	}
	return left
}

func stagingPath(source string, index int) string {
	return filepath.Join(filepath.Dir(source), fmt.Sprintf(".jellyclean-%d-%s", index, filepath.Base(source)))
}
