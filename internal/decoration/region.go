// Package decoration maintains the per-document set of decorated regions
// built from word-diff change records, and reverts individual regions back to
// their old-revision text.
package decoration

import "github.com/revmark/revmark/internal/worddiff"

// Kind is the semantic category a region renders as.
type Kind int

const (
	KindAdded Kind = iota
	KindRemoved
	KindChanged
)

func (k Kind) String() string {
	switch k {
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	case KindChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Region associates one change record with a renderable document span.
//
// Insert and change regions cover their record's [Start, End). A delete
// record is zero width, so its region anchors to the rune immediately before
// the deletion point (clamped at the document start) and renders there.
//
// Focused toggles proximity rendering: a focused removed/changed region
// additionally renders its restorable text inline. The decoration set owner
// flips it via Session.SetFocus; how focus events are produced is up to the
// host.
type Region struct {
	Change  worddiff.Change
	Start   int
	End     int
	Focused bool
}

func newRegion(ch worddiff.Change) *Region {
	r := &Region{Change: ch, Start: ch.Start, End: ch.End}
	if ch.Kind == worddiff.KindDelete {
		r.Start = ch.Start - 1
		if r.Start < 0 {
			r.Start = 0
		}
		r.End = r.Start + 1
	}
	return r
}

// Kind maps the underlying change to the region's semantic category.
func (r *Region) Kind() Kind {
	switch r.Change.Kind {
	case worddiff.KindInsert:
		return KindAdded
	case worddiff.KindDelete:
		return KindRemoved
	default:
		return KindChanged
	}
}

// Restorable returns the old-revision text this region can put back; empty
// for added regions.
func (r *Region) Restorable() string {
	return r.Change.Previous
}

// Contains reports whether p lies within the region's span.
func (r *Region) Contains(p int) bool {
	return p >= r.Start && p < r.End
}
