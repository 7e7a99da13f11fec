package rowmerge

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tsawler/tabstruct/model"
)

type pairKey struct {
	row1, row2 int
}

// Reconciler merges rows that a layout or OCR artifact split across two
// physical lines, using per-column merge scores from an external classifier.
type Reconciler struct {
	Config Config
	Logger zerolog.Logger
}

// NewReconciler creates a reconciler with the default configuration
func NewReconciler() *Reconciler {
	return &Reconciler{
		Config: DefaultConfig(),
		Logger: zerolog.Nop(),
	}
}

// Reconcile returns a new table in which every chain of rows linked by
// positive merge decisions is collapsed into one row. Cell text of a chain is
// joined per column with a single space, trailing whitespace is trimmed from
// every cell, and output rows are numbered from 0. Scores that name a
// different table are ignored. The input table is not modified.
func (rc *Reconciler) Reconcile(t *model.Table, scores []Score) (*model.Table, []model.Warning, error) {
	byID := make(map[int]*model.Row, len(t.Rows))
	for i := range t.Rows {
		byID[t.Rows[i].ID] = &t.Rows[i]
	}

	decisions, err := rc.collect(t.Name, byID, scores)
	if err != nil {
		return nil, nil, err
	}

	next, warnings, err := rc.adjacency(t.Name, decisions)
	if err != nil {
		return nil, warnings, err
	}

	if err := checkAcyclic(t, next); err != nil {
		rc.Logger.Error().Err(err).Str("table", t.Name).Msg("rejecting merge graph")
		return nil, warnings, err
	}

	out, emitWarnings := rc.emit(t, byID, next)
	warnings = append(warnings, emitWarnings...)

	rc.Logger.Debug().
		Str("table", t.Name).
		Int("rows_before", t.RowCount()).
		Int("rows_after", out.RowCount()).
		Int("decisions", len(decisions)).
		Msg("reconciled rows")

	return out, warnings, nil
}

// collect groups scores into per-pair decisions in first-seen order.
func (rc *Reconciler) collect(name string, byID map[int]*model.Row, scores []Score) ([]*Decision, error) {
	var decisions []*Decision
	index := make(map[pairKey]int)
	skipped := 0

	for _, s := range scores {
		if s.Table != "" && s.Table != name {
			skipped++
			continue
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		row1, ok := byID[s.Row1]
		if !ok {
			return nil, fmt.Errorf("%w: table %q has no row %d", ErrUnknownRow, name, s.Row1)
		}
		row2, ok := byID[s.Row2]
		if !ok {
			return nil, fmt.Errorf("%w: table %q has no row %d", ErrUnknownRow, name, s.Row2)
		}

		key := pairKey{s.Row1, s.Row2}
		i, ok := index[key]
		if !ok {
			i = len(decisions)
			index[key] = i
			decisions = append(decisions, &Decision{Row1: row1, Row2: row2})
		}
		decisions[i].Add(s.Column, s.Value)
	}

	if skipped > 0 {
		rc.Logger.Debug().Str("table", name).Int("count", skipped).Msg("ignored scores for other tables")
	}
	return decisions, nil
}

// adjacency builds next[row1] = row2 for every positive decision. When a row
// is the source of several positive decisions the first one wins.
func (rc *Reconciler) adjacency(name string, decisions []*Decision) (map[int]int, []model.Warning, error) {
	next := make(map[int]int)
	var warnings []model.Warning

	for _, d := range decisions {
		merge := d.ShouldMerge(rc.Config)
		rc.Logger.Trace().
			Str("table", name).
			Int("row1", d.Row1.ID).
			Int("row2", d.Row2.ID).
			Float64("score", d.Score(rc.Config)).
			Bool("full_coverage", d.FullCoverage()).
			Bool("merge", merge).
			Msg("merge decision")
		if !merge {
			continue
		}

		if prev, exists := next[d.Row1.ID]; exists {
			if rc.Config.StrictSources {
				return nil, warnings, fmt.Errorf("%w: table %q row %d merges into both %d and %d",
					ErrAmbiguousMergeSource, name, d.Row1.ID, prev, d.Row2.ID)
			}
			w := model.Warning{
				Code:    model.WarnAmbiguousMergeSource,
				Message: fmt.Sprintf("row also merges into %d; keeping %d", d.Row2.ID, prev),
				Table:   name,
				RowID:   d.Row1.ID,
			}
			warnings = append(warnings, w)
			rc.Logger.Warn().Str("table", name).Int("row", d.Row1.ID).Msg(w.Message)
			continue
		}
		next[d.Row1.ID] = d.Row2.ID
	}
	return next, warnings, nil
}

// checkAcyclic follows next from every row and fails on the first row that
// is reached twice within one walk.
func checkAcyclic(t *model.Table, next map[int]int) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int]int, len(next))

	for _, row := range t.Rows {
		if _, ok := next[row.ID]; !ok || state[row.ID] != unvisited {
			continue
		}

		var path []int
		id := row.ID
		for state[id] != done {
			if state[id] == visiting {
				start := 0
				for i, p := range path {
					if p == id {
						start = i
						break
					}
				}
				cycle := append(append([]int(nil), path[start:]...), id)
				return &model.InvalidMergeGraphError{Table: t.Name, Cycle: cycle}
			}
			state[id] = visiting
			path = append(path, id)

			nxt, ok := next[id]
			if !ok {
				break
			}
			id = nxt
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

// emit walks rows in their original order, collapsing each merge chain into
// its head row. Every row id is emitted at most once.
func (rc *Reconciler) emit(t *model.Table, byID map[int]*model.Row, next map[int]int) (*model.Table, []model.Warning) {
	out := model.NewTable(t.Name)
	if t.Bounds != nil {
		b := *t.Bounds
		out.Bounds = &b
	}
	out.SetPageInfo(t.PageWidth, t.PageHeight)

	var warnings []model.Warning
	emitted := make(map[int]bool, len(t.Rows))

	for _, row := range t.Rows {
		if emitted[row.ID] {
			continue
		}
		emitted[row.ID] = true
		merged := row.Clone()

		for id, ok := next[row.ID]; ok; id, ok = next[id] {
			if emitted[id] {
				w := model.Warning{
					Code:    model.WarnSharedMergeTarget,
					Message: fmt.Sprintf("row %d already emitted; chain stops", id),
					Table:   t.Name,
					RowID:   row.ID,
				}
				warnings = append(warnings, w)
				rc.Logger.Warn().Str("table", t.Name).Int("row", row.ID).Int("target", id).Msg("merge target already emitted")
				break
			}
			emitted[id] = true

			nr := byID[id]
			for i := range merged.Cells {
				if i < len(nr.Cells) {
					merged.Cells[i].Text += " " + nr.Cells[i].Text
				}
			}
			if merged.Bounds != nil && nr.Bounds != nil {
				u := merged.Bounds.Union(*nr.Bounds)
				merged.Bounds = &u
			}
		}

		for i := range merged.Cells {
			merged.Cells[i].Text = strings.TrimRightFunc(merged.Cells[i].Text, unicode.IsSpace)
		}
		out.AddRow(merged.Bounds, merged.Cells...)
	}
	return out, warnings
}

// Result is the outcome of reconciling one table of a batch
type Result struct {
	Table    *model.Table
	Warnings []model.Warning
	Err      error
}

// ReconcileAll reconciles each table with the scores that name it. A failure
// is recorded in that table's Result and does not affect the others.
func (rc *Reconciler) ReconcileAll(tables []*model.Table, scores []Score) []Result {
	groups := GroupByTable(scores)
	results := make([]Result, len(tables))
	for i, t := range tables {
		out, warnings, err := rc.Reconcile(t, groups[t.Name])
		if err != nil {
			rc.Logger.Warn().Err(err).Str("table", t.Name).Msg("row merge failed; table skipped")
		}
		results[i] = Result{Table: out, Warnings: warnings, Err: err}
	}
	return results
}
