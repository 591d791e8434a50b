package apply

import (
	"errors"
	"io"

	"github.com/choiway/filmtag/internal/exiftool"
	"github.com/choiway/filmtag/internal/roll"
)

// PlanStatus classifies a row in a dry run.
type PlanStatus string

const (
	PlanReady   PlanStatus = "ready"
	PlanMissing PlanStatus = "missing"
	PlanSkipped PlanStatus = "skipped"
)

// PlanEntry is what Apply would do with one row.
type PlanEntry struct {
	Row    roll.Row
	Frame  roll.Frame
	Path   string
	Status PlanStatus
	// Args is the full exiftool argument list, target path included. Only set
	// for ready rows.
	Args []string
}

// Plan classifies every row without invoking exiftool.
func (a *Applier) Plan(src RowSource) ([]PlanEntry, error) {
	var entries []PlanEntry
	for {
		row, err := src.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}

		frame, ok := row.FrameIndex()
		if !ok {
			entries = append(entries, PlanEntry{Row: row, Status: PlanSkipped})
			continue
		}
		entry := PlanEntry{Row: row, Frame: frame, Path: a.resolve(frame)}
		if !a.exists(entry.Path) {
			entry.Status = PlanMissing
		} else {
			entry.Status = PlanReady
			entry.Args = append(exiftool.BuildArgs(row, a.opts.InPlace, a.opts.ConfigPath), entry.Path)
		}
		entries = append(entries, entry)
	}
}
