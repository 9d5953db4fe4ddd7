// Package render turns a document plus its decoration set into styled
// terminal text.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/revmark/revmark/internal/decoration"
	"github.com/revmark/revmark/internal/document"
)

// Styles holds the three semantic region styles and the focused-change
// variant.
type Styles struct {
	Added   lipgloss.Style
	Removed lipgloss.Style
	Changed lipgloss.Style

	// FocusedChanged restyles a focused changed span as added, visually
	// separating the new text from the restored old text trailing it.
	FocusedChanged lipgloss.Style
}

// DefaultStyles returns the default palette: light green for additions,
// light pink for removals, light yellow for changes, black foreground over
// each.
func DefaultStyles() Styles {
	added := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("194"))
	return Styles{
		Added:          added,
		Removed:        lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("224")),
		Changed:        lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229")),
		FocusedChanged: added,
	}
}

// PlainStyles returns pass-through styles (no ANSI), for tests and non-color
// output.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Added: plain, Removed: plain, Changed: plain, FocusedChanged: plain}
}

// Render returns doc's text with every region styled per its kind and focus
// state. Regions must be in position order and non-overlapping, which is how
// a session produces them.
//
// Focused removed and changed regions additionally render their restorable
// text as trailing inline content in the removed style; the document text
// itself is never altered.
func Render(doc *document.Document, regions []*decoration.Region, st Styles) string {
	var b strings.Builder
	cur := 0

	for _, r := range regions {
		if r.Start > cur {
			b.WriteString(doc.Slice(cur, r.Start))
		}
		seg := doc.Slice(r.Start, r.End)

		switch r.Kind() {
		case decoration.KindAdded:
			b.WriteString(st.Added.Render(seg))
		case decoration.KindRemoved:
			b.WriteString(st.Removed.Render(seg))
			if r.Focused {
				b.WriteString(st.Removed.Render(r.Restorable()))
			}
		case decoration.KindChanged:
			if r.Focused {
				b.WriteString(st.FocusedChanged.Render(seg))
				b.WriteString(st.Removed.Render(r.Restorable()))
			} else {
				b.WriteString(st.Changed.Render(seg))
			}
		}

		if r.End > cur {
			cur = r.End
		}
	}

	b.WriteString(doc.Slice(cur, doc.Len()))
	return b.String()
}
