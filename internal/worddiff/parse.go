package worddiff

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/revmark/revmark/internal/document"
)

var hunkHeaderRE = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// Parse consumes porcelain word-diff text line by line and returns the
// ordered change records it describes, positioned in doc.
//
// Each line is classified by its first character: ' ' context, '~' line
// break, '-' deletion, '+' insertion, or a hunk header. Anything before the
// first hunk header (the "diff --git"/"index"/"---"/"+++" preamble) and any
// line that matches no class is skipped; malformed input never produces an
// error, only fewer records.
//
// Only the most recently emitted record can absorb subsequent '-' and '~'
// lines; once the cursor moves past its end it is final. Emission order
// already equals position order, so the result needs no sorting.
func Parse(porcelain string, doc *document.Document) []Change {
	var changes []Change

	pos := 0
	blank := false
	inHunk := false

	last := func() *Change {
		if len(changes) == 0 {
			return nil
		}
		return &changes[len(changes)-1]
	}

	for _, line := range strings.Split(porcelain, "\n") {
		if line == "" {
			continue
		}

		if m := hunkHeaderRE.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			pos = doc.OffsetOfLine(n)
			r, ok := doc.RuneAt(pos)
			blank = !ok || r == '\n'
			inHunk = true
			continue
		}
		if !inHunk {
			continue
		}

		switch line[0] {
		case ' ':
			pos += utf8.RuneCountInString(line[1:])
			blank = false

		case '~':
			// A '~' right after a deletion is the deleted line's own line
			// break: it belongs to the record, not the cursor.
			if lc := last(); blank && lc != nil && lc.End == pos && (lc.Kind == KindDelete || lc.Kind == KindChange) {
				lc.Previous += "\n"
			} else {
				pos++
			}
			blank = false

		case '-':
			text := line[1:]
			isBlank := strings.TrimSpace(text) == ""
			lc := last()
			switch {
			case lc != nil && lc.End == pos && lc.Kind == KindDelete:
				lc.Previous += text
			case lc != nil && lc.End == pos && lc.Kind == KindInsert:
				lc.Kind = KindChange
				lc.Previous = text
			case lc != nil && lc.End == pos && lc.Kind == KindChange:
				lc.Previous += text
			case !isBlank:
				previous := text
				if blank {
					previous = "\n" + text
				}
				changes = append(changes, Change{Kind: KindDelete, Start: pos, End: pos, Previous: previous})
			}
			blank = true

		case '+':
			text := line[1:]
			newpos := pos + utf8.RuneCountInString(text)
			isBlank := strings.TrimSpace(text) == ""
			lc := last()
			switch {
			case lc != nil && lc.End == pos && lc.Kind == KindDelete:
				lc.Kind = KindChange
				lc.End = newpos
			case lc != nil && lc.End == pos && (lc.Kind == KindInsert || lc.Kind == KindChange):
				lc.End = newpos
			case !isBlank:
				changes = append(changes, Change{Kind: KindInsert, Start: pos, End: newpos})
			}
			pos = newpos
			blank = false

		default:
			// Unrecognized line; skip.
		}
	}

	return changes
}
