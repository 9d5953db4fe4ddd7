package decoration

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/revmark/revmark/internal/document"
	"github.com/revmark/revmark/internal/gitdiff"
	"github.com/revmark/revmark/internal/simplelogger"
	"github.com/revmark/revmark/internal/worddiff"
)

// ErrToolFailed reports a non-zero exit from the external diff invocation.
// The session holds no decorations after it; callers should not show partial
// state.
var ErrToolFailed = errors.New("diff tool invocation failed")

// Session owns one document's decoration set. All methods are synchronous
// and must be called from a single goroutine; a refresh or revert fully
// replaces or adjusts the set before returning, so readers never observe a
// half-updated set.
type Session struct {
	doc     *document.Document
	regions []*Region
}

// NewSession returns an empty session for doc.
func NewSession(doc *document.Document) *Session {
	return &Session{doc: doc}
}

// Document returns the session's document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Regions returns the active regions in position order.
func (s *Session) Regions() []*Region {
	return s.regions
}

// Clear discards all regions.
func (s *Session) Clear() {
	s.regions = nil
}

// Refresh runs the full pipeline: invoke src, parse its porcelain output,
// and replace the whole decoration set with regions for the parsed records.
// Prior regions are always discarded, even on failure; there is no
// incremental update.
func (s *Session) Refresh(ctx context.Context, src gitdiff.Source) ([]*Region, error) {
	s.Clear()

	out, err := src.WordDiff(ctx)
	if err != nil {
		return nil, fmt.Errorf("word diff: %w", err)
	}
	if out.ExitCode != 0 {
		simplelogger.Log("refresh: diff exited %d", out.ExitCode)
		return nil, fmt.Errorf("%w: exit status %d", ErrToolFailed, out.ExitCode)
	}

	changes := worddiff.Parse(out.Porcelain, s.doc)
	if err := worddiff.Validate(changes); err != nil {
		// Should not happen for well-formed porcelain; log and keep going
		// with whatever parsed (availability over strictness).
		simplelogger.Log("refresh: %v", err)
	}

	s.regions = make([]*Region, 0, len(changes))
	for _, ch := range changes {
		s.regions = append(s.regions, newRegion(ch))
	}
	return s.regions, nil
}

// RegionAt returns the region whose span contains p, or nil. Spans do not
// overlap, but ties are broken toward the most recently created region.
func (s *Session) RegionAt(p int) *Region {
	for i := len(s.regions) - 1; i >= 0; i-- {
		if s.regions[i].Contains(p) {
			return s.regions[i]
		}
	}
	return nil
}

// SetFocus marks the region containing p (if any) focused and unfocuses all
// others. p < 0 means no focus. It returns the regions whose focus state
// changed, for re-rendering.
func (s *Session) SetFocus(p int) []*Region {
	var changed []*Region
	for _, r := range s.regions {
		want := p >= 0 && r.Contains(p)
		if r.Focused != want {
			r.Focused = want
			changed = append(changed, r)
		}
	}
	return changed
}

// RevertAt undoes the difference whose region contains p, mutating the
// document and removing the region. Remaining regions shift by the edit
// delta, so reverts can be applied in any order. It reports whether a region
// was reverted; no region at p is a no-op, not an error.
func (s *Session) RevertAt(p int) bool {
	r := s.RegionAt(p)
	if r == nil {
		return false
	}
	s.remove(r)

	ch := r.Change
	switch ch.Kind {
	case worddiff.KindInsert, worddiff.KindChange:
		s.doc.Replace(ch.Start, ch.End, ch.Previous)
		s.shift(ch.End, utf8.RuneCountInString(ch.Previous)-(ch.End-ch.Start))
	case worddiff.KindDelete:
		s.doc.Replace(ch.Start, ch.Start, ch.Previous)
		s.shift(ch.Start, utf8.RuneCountInString(ch.Previous))
	}
	return true
}

func (s *Session) remove(target *Region) {
	for i, r := range s.regions {
		if r == target {
			s.regions = append(s.regions[:i], s.regions[i+1:]...)
			return
		}
	}
}

// shift moves every region at or past from by delta, keeping records and
// spans aligned with the document after an edit.
func (s *Session) shift(from, delta int) {
	if delta == 0 {
		return
	}
	for _, r := range s.regions {
		if r.Change.Start < from {
			continue
		}
		r.Change.Start += delta
		r.Change.End += delta
		r.Start += delta
		r.End += delta
	}
}
