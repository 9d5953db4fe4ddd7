package decoration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmark/revmark/internal/document"
	"github.com/revmark/revmark/internal/gitdiff"
	"github.com/revmark/revmark/internal/worddiff"
)

type failingSource struct{}

func (failingSource) WordDiff(ctx context.Context) (gitdiff.Output, error) {
	return gitdiff.Output{ExitCode: 128}, nil
}

func refreshText(t *testing.T, s *Session, porcelain string) []*Region {
	t.Helper()
	regions, err := s.Refresh(context.Background(), gitdiff.TextSource{Porcelain: porcelain})
	require.NoError(t, err)
	return regions
}

func TestRefresh_BuildsRegions(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)

	regions := refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, KindChanged, r.Kind())
	assert.Equal(t, 0, r.Start)
	assert.Equal(t, 2, r.End)
	assert.Equal(t, "Hello", r.Restorable())
	assert.False(t, r.Focused)
}

func TestRefresh_ReplacesPriorRegions(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)

	first := refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")
	require.Len(t, first, 1)

	second := refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")
	require.Len(t, second, 1)
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, first[0].Change, second[0].Change)
}

func TestRefresh_ToolFailureClearsRegions(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)

	refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")
	require.Len(t, s.Regions(), 1)

	_, err := s.Refresh(context.Background(), failingSource{})
	require.ErrorIs(t, err, ErrToolFailed)
	assert.Empty(t, s.Regions())
}

func TestDeleteRegion_AnchorsBeforeDeletionPoint(t *testing.T) {
	doc := document.New("Keep\n")
	s := NewSession(doc)

	regions := refreshText(t, s, "@@ -1,2 +1,1 @@\n Keep\n~\n-Remove\n")
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, KindRemoved, r.Kind())
	assert.Equal(t, 4, r.Start)
	assert.Equal(t, 5, r.End)
	assert.Equal(t, "Remove", r.Restorable())
}

func TestDeleteRegion_ClampedAtDocumentStart(t *testing.T) {
	doc := document.New("a\n")
	s := NewSession(doc)

	regions := refreshText(t, s, "@@ -1,2 +0,0 @@\n-x\n~\n")
	require.Len(t, regions, 1)
	assert.Equal(t, 0, regions[0].Start)
	assert.Equal(t, 1, regions[0].End)
}

func TestRevertAt_NoRegionIsNoOp(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)
	refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")

	assert.False(t, s.RevertAt(5))
	assert.Equal(t, "Hi world", doc.Text())
	assert.Len(t, s.Regions(), 1)
}

func TestRevertAt_Change(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)
	refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")

	assert.True(t, s.RevertAt(0))
	assert.Equal(t, "Hello world", doc.Text())
	assert.Empty(t, s.Regions())
}

func TestRevertAt_DeleteInsertsWithoutDeleting(t *testing.T) {
	doc := document.New("Keep\n")
	s := NewSession(doc)
	refreshText(t, s, "@@ -1,2 +1,1 @@\n Keep\n~\n-Remove\n")

	assert.True(t, s.RevertAt(4))
	assert.Equal(t, "Keep\nRemove", doc.Text())
	assert.Empty(t, s.Regions())
}

func TestRevertAt_Insert(t *testing.T) {
	doc := document.New("a b c\n")
	s := NewSession(doc)

	regions, err := s.Refresh(context.Background(), gitdiff.LocalSource{OldText: "a c\n", Doc: doc})
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.Equal(t, KindAdded, regions[0].Kind())

	assert.True(t, s.RevertAt(regions[0].Start))
	assert.Equal(t, "a c\n", doc.Text())
}

func TestSetFocus(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)
	refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")
	r := s.Regions()[0]

	changed := s.SetFocus(1)
	require.Len(t, changed, 1)
	assert.True(t, r.Focused)

	// Focus is already inside the span; nothing flips.
	assert.Empty(t, s.SetFocus(0))
	assert.True(t, r.Focused)

	changed = s.SetFocus(5)
	require.Len(t, changed, 1)
	assert.False(t, r.Focused)

	s.SetFocus(1)
	changed = s.SetFocus(-1)
	require.Len(t, changed, 1)
	assert.False(t, r.Focused)
}

func TestRevertAll_RestoresOldText(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{name: "word replacement", old: "Hello world\n", new: "Hi world\n"},
		{name: "word insertion", old: "a c\n", new: "a b c\n"},
		{name: "line deletion", old: "a\nx\nb\n", new: "a\nb\n"},
		{name: "two line deletions", old: "a\nx\nb\ny\nc\n", new: "a\nb\nc\n"},
		{name: "trailing line removed", old: "Keep\nRemove", new: "Keep"},
		{name: "two word changes", old: "one 2\nsame\nfive 6\n", new: "one two\nsame\nfive six\n"},
		{name: "assignment rewritten", old: "count=1;\n", new: "total=2;\n"},
	}

	orders := []string{"forward", "reverse"}
	for _, tt := range tests {
		for _, order := range orders {
			t.Run(fmt.Sprintf("%s/%s", tt.name, order), func(t *testing.T) {
				doc := document.New(tt.new)
				s := NewSession(doc)

				regions, err := s.Refresh(context.Background(), gitdiff.LocalSource{OldText: tt.old, Doc: doc})
				require.NoError(t, err)
				require.NotEmpty(t, regions)

				for len(s.Regions()) > 0 {
					var r *Region
					if order == "forward" {
						r = s.Regions()[0]
					} else {
						r = s.Regions()[len(s.Regions())-1]
					}
					require.True(t, s.RevertAt(r.Start))
				}

				assert.Equal(t, tt.old, doc.Text())
			})
		}
	}
}

func TestRevert_ShiftsLaterRegions(t *testing.T) {
	doc := document.New("one two\nsame\nfive six\n")
	s := NewSession(doc)

	_, err := s.Refresh(context.Background(), gitdiff.LocalSource{
		OldText: "one 2\nsame\nfive 6\n",
		Doc:     doc,
	})
	require.NoError(t, err)
	require.Len(t, s.Regions(), 2)

	second := s.Regions()[1]
	require.Equal(t, "six", doc.Slice(second.Start, second.End))

	// Reverting "two" -> "2" shrinks the document by two runes; the second
	// region must still cover "six".
	require.True(t, s.RevertAt(s.Regions()[0].Start))
	assert.Equal(t, "six", doc.Slice(second.Start, second.End))

	require.True(t, s.RevertAt(second.Start))
	assert.Equal(t, "one 2\nsame\nfive 6\n", doc.Text())
}

func TestChangeRecords_MatchParserOutput(t *testing.T) {
	doc := document.New("Hi world")
	s := NewSession(doc)
	regions := refreshText(t, s, "@@ -1,1 +1,1 @@\n-Hello\n+Hi\n  world\n~\n")

	require.Len(t, regions, 1)
	assert.Equal(t, worddiff.Change{Kind: worddiff.KindChange, Start: 0, End: 2, Previous: "Hello"}, regions[0].Change)
}
