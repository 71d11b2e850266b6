package reconcile

import (
	"path/filepath"

	"jellyclean/internal/entry"
	"jellyclean/internal/faults"
	"jellyclean/internal/fileutil"
	"jellyclean/internal/logging"
	"jellyclean/internal/naming"
)

// Move is one planned rename. Source equal to Target is a no-op kept in the
// plan so a canonical directory still reports what was checked.
type Move struct {
	Source   string
	Target   string
	Kind     entry.Kind
	Subtitle bool
}

// Noop reports whether applying m changes nothing.
func (m Move) Noop() bool {
	return filepath.Clean(m.Source) == filepath.Clean(m.Target)
}

// Removal is one planned deletion.
type Removal struct {
	Path string
	Kind entry.Kind
}

// Recursive reports whether the removal deletes a directory tree.
func (r Removal) Recursive() bool {
	return r.Kind == entry.KindSubtitleBundle || r.Kind == entry.KindDirectory
}

// Plan is everything reconciling one top-level entry would do.
type Plan struct {
	// Source is the entry path as found under the root.
	Source string
	// Target is the final directory path.
	Target string
	// Canonical is the normalized name of the entry itself.
	Canonical string
	Kind      entry.Kind
	Moves     []Move
	Removals  []Removal
	// CreateTarget is set for bare videos, which get a new directory.
	CreateTarget bool
	Subtitles    int
	TVCandidate  bool
}

// Mutations counts the filesystem changes applying p performs.
func (p *Plan) Mutations() int {
	n := len(p.Removals)
	for _, m := range p.Moves {
		if !m.Noop() {
			n++
		}
	}
	if p.CreateTarget {
		n++
	} else if filepath.Clean(p.Source) != filepath.Clean(p.Target) {
		n++
	}
	return n
}

// planDirectory builds the plan for a directory entry. It lists the entry
// exactly once and never mutates the filesystem.
func (r *Reconciler) planDirectory(parentDir, name string) (*Plan, error) {
	canonical, err := naming.Normalize(name)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(parentDir, name)
	plan := &Plan{
		Source:    dir,
		Target:    filepath.Join(parentDir, canonical),
		Canonical: canonical,
		Kind:      entry.KindDirectory,
	}

	children, err := fileutil.ReadDirSorted(r.fs, dir)
	if err != nil {
		return nil, err
	}

	counter := 1
	for _, info := range children {
		child := entry.FromInfo(dir, info)
		kind, err := entry.Classify(r.fs, child)
		if err != nil {
			return nil, err
		}

		switch kind {
		case entry.KindVideo:
			videoName, err := naming.Normalize(child.Name)
			if err != nil {
				return nil, err
			}
			plan.Moves = append(plan.Moves, Move{Source: child.Path, Target: filepath.Join(dir, videoName), Kind: kind})
		case entry.KindSubtitle:
			plan.Moves = append(plan.Moves, Move{
				Source:   child.Path,
				Target:   filepath.Join(dir, naming.SubtitleName(canonical, counter)),
				Kind:     kind,
				Subtitle: true,
			})
			counter++
		case entry.KindSubtitleBundle:
			placements, next, err := r.extractor.Plan(child.Path, dir, counter, canonical)
			if err != nil {
				return nil, err
			}
			for _, p := range placements {
				plan.Moves = append(plan.Moves, Move{Source: p.Source, Target: p.Target, Kind: entry.KindSubtitle, Subtitle: true})
			}
			counter = next
			plan.Removals = append(plan.Removals, Removal{Path: child.Path, Kind: kind})
		default:
			plan.Removals = append(plan.Removals, Removal{Path: child.Path, Kind: kind})
		}
		r.logger.Debug("classified child",
			logging.String(logging.FieldEntry, dir),
			logging.String("child", child.Name),
			logging.String("kind", kind.String()),
		)
	}
	plan.Subtitles = counter - 1

	tv, err := entry.LooksLikeTVShow(r.fs, dir)
	if err != nil {
		return nil, err
	}
	plan.TVCandidate = tv

	if err := r.checkCollisions(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// planVideo builds the plan for a video file sitting directly under the root:
// a new directory named after the canonical base receives the renamed video.
func (r *Reconciler) planVideo(parentDir, name string) (*Plan, error) {
	canonical, err := naming.Normalize(name)
	if err != nil {
		return nil, err
	}
	source := filepath.Join(parentDir, name)
	target := filepath.Join(parentDir, naming.Base(canonical))
	plan := &Plan{
		Source:       source,
		Target:       target,
		Canonical:    canonical,
		Kind:         entry.KindVideo,
		CreateTarget: true,
		Moves: []Move{{
			Source: source,
			Target: filepath.Join(target, canonical),
			Kind:   entry.KindVideo,
		}},
	}
	exists, err := fileutil.Exists(r.fs, target)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &faults.CollisionError{Source: source, Target: target}
	}
	return plan, nil
}

// checkCollisions rejects a plan whose moves would overwrite anything. Two
// moves sharing a target collide. An existing target collides unless another
// move of the same plan vacates it first. The directory target must be free
// unless it is the directory itself.
func (r *Reconciler) checkCollisions(plan *Plan) error {
	vacated := make(map[string]struct{}, len(plan.Moves))
	for _, m := range plan.Moves {
		if !m.Noop() {
			vacated[filepath.Clean(m.Source)] = struct{}{}
		}
	}

	claimed := make(map[string]struct{}, len(plan.Moves))
	for _, m := range plan.Moves {
		target := filepath.Clean(m.Target)
		if _, ok := claimed[target]; ok {
			return &faults.CollisionError{Source: m.Source, Target: target}
		}
		claimed[target] = struct{}{}
		if m.Noop() {
			continue
		}
		if _, ok := vacated[target]; ok {
			continue
		}
		exists, err := fileutil.Exists(r.fs, target)
		if err != nil {
			return err
		}
		if exists {
			return &faults.CollisionError{Source: m.Source, Target: target}
		}
	}

	if filepath.Clean(plan.Source) != filepath.Clean(plan.Target) {
		exists, err := fileutil.Exists(r.fs, plan.Target)
		if err != nil {
			return err
		}
		if exists {
			return &faults.CollisionError{Source: plan.Source, Target: plan.Target}
		}
	}
	return nil
}

// needsStaging reports whether some move targets a path another move still
// has to vacate. Such plans are applied through temporary names.
func needsStaging(moves []Move) bool {
	sources := make(map[string]struct{}, len(moves))
	for _, m := range moves {
		if !m.Noop() {
			sources[filepath.Clean(m.Source)] = struct{}{}
		}
	}
	for _, m := range moves {
		if m.Noop() {
			continue
		}
		if _, ok := sources[filepath.Clean(m.Target)]; ok {
			return true
		}
	}
	return false
}
