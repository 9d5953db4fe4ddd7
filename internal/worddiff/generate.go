package worddiff

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultWordRegex is the default word pattern: runs of non-whitespace. It
// mirrors what the external diff tool uses when no --word-diff-regex is given.
const DefaultWordRegex = `[^\s]+`

// Generate synthesizes porcelain word-diff text describing the edit from
// oldText to newText, in the same line-oriented format Parse consumes: hunk
// headers, ' '/'-'/'+' word chunks, and '~' line-break markers. wordRegex
// defines what counts as one word; "" means DefaultWordRegex.
//
// It diffs lines first and then word-diffs each changed line group, so hunk
// headers carry correct new-file line numbers. Runs of deleted-only lines are
// anchored to the preceding kept line so their records land after that line's
// break. Equal inputs yield "".
func Generate(oldText, newText, wordRegex string) (string, error) {
	if wordRegex == "" {
		wordRegex = DefaultWordRegex
	}
	re, err := regexp.Compile(wordRegex)
	if err != nil {
		return "", fmt.Errorf("compile word regex: %w", err)
	}
	if oldText == newText {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(oldText, newText)
	lineDiffs := dmp.DiffMainRunes(rOld, rNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	// Decode rune-strings back to original lines via the lineArray mapping.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var out []string
	oldLine, newLine := 1, 1
	lastKept := "" // most recent equal line, for anchoring pure deletions
	var dels, ins []string

	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		oldStart, newStart := oldLine, newLine
		oldCount, newCount := len(dels), len(ins)

		var body []string
		if newCount == 0 && newStart > 1 && lastKept != "" {
			// Deletion with nothing added: anchor to the kept line above it.
			oldStart--
			oldCount++
			newStart--
			newCount = 1
			body = appendContext(body, lastKept)
			body, _ = appendDeletion(body, strings.Join(dels, ""), false)
		} else {
			body = wordChunks(re, strings.Join(dels, ""), strings.Join(ins, ""))
		}

		headerOld := oldStart
		if oldCount == 0 {
			headerOld--
		}
		headerNew := newStart
		if newCount == 0 {
			headerNew--
		}
		out = append(out, fmt.Sprintf("@@ -%d,%d +%d,%d @@", headerOld, oldCount, headerNew, newCount))
		out = append(out, body...)

		oldLine += len(dels)
		newLine += len(ins)
		dels, ins = nil, nil
	}

	for _, d := range lineDiffs {
		lines := decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			if len(lines) > 0 {
				lastKept = lines[len(lines)-1]
			}
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			dels = append(dels, lines...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, lines...)
		}
	}
	flush()

	if len(out) == 0 {
		return "", nil
	}
	return strings.Join(out, "\n") + "\n", nil
}

// wordChunks word-diffs one hunk's old and new text and renders the result as
// porcelain body lines.
func wordChunks(re *regexp.Regexp, oldBlock, newBlock string) []string {
	var vocab []string
	index := map[string]rune{}
	encode := func(tokens []string) []rune {
		rs := make([]rune, len(tokens))
		for i, tok := range tokens {
			r, ok := index[tok]
			if !ok {
				r = tokenRune(len(vocab))
				index[tok] = r
				vocab = append(vocab, tok)
			}
			rs[i] = r
		}
		return rs
	}

	rOld := encode(tokenize(re, oldBlock))
	rNew := encode(tokenize(re, newBlock))

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(rOld, rNew, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	decode := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			b.WriteString(vocab[runeIndex(r)])
		}
		return b.String()
	}

	var lines []string
	haveRecord := false
	for _, d := range diffs {
		text := decode(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			lines = appendContext(lines, text)
			haveRecord = false
		case diffmatchpatch.DiffDelete:
			lines, haveRecord = appendDeletion(lines, text, haveRecord)
		case diffmatchpatch.DiffInsert:
			lines = appendInsertion(lines, text)
			haveRecord = false
		}
	}
	return lines
}

// tokenize splits text into word tokens per re. Text between matches is kept
// too: newlines as their own tokens, other separator runs as-is, so that
// positions stay exact when the chunks are replayed.
func tokenize(re *regexp.Regexp, text string) []string {
	var tokens []string
	appendGap := func(gap string) {
		for gap != "" {
			i := strings.IndexByte(gap, '\n')
			if i < 0 {
				tokens = append(tokens, gap)
				return
			}
			if i > 0 {
				tokens = append(tokens, gap[:i])
			}
			tokens = append(tokens, "\n")
			gap = gap[i+1:]
		}
	}

	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] > last {
			appendGap(text[last:m[0]])
		}
		if m[1] > m[0] {
			tokens = append(tokens, text[m[0]:m[1]])
		}
		last = m[1]
	}
	appendGap(text[last:])
	return tokens
}

// appendContext renders an equal chunk: ' '-prefixed segments with '~' at
// each line break.
func appendContext(lines []string, text string) []string {
	pieces := strings.Split(text, "\n")
	for i, seg := range pieces {
		if i > 0 {
			lines = append(lines, "~")
		}
		if seg != "" {
			lines = append(lines, " "+seg)
		}
	}
	return lines
}

// appendInsertion renders an inserted chunk: '+'-prefixed segments with '~'
// at each line break (the break itself is new text, so the cursor advances).
func appendInsertion(lines []string, text string) []string {
	pieces := strings.Split(text, "\n")
	for i, seg := range pieces {
		if i > 0 {
			lines = append(lines, "~")
		}
		if seg != "" {
			lines = append(lines, "+"+seg)
		}
	}
	return lines
}

// appendDeletion renders a deleted chunk. Deleted line breaks are not present
// in the new document, so they must fold into the deletion record rather than
// advance the cursor: an interior break renders as '~' directly after a '-'
// line (re-armed with an empty '-' when needed), and a leading break renders
// as an empty '-' line so the first real '-' picks it up.
//
// haveRecord says whether the directly preceding chunk left a deletion record
// at the cursor; the updated value is returned.
func appendDeletion(lines []string, text string, haveRecord bool) ([]string, bool) {
	pieces := strings.Split(text, "\n")
	armed := false // a '-' line was just emitted, so a '~' will merge
	for i, seg := range pieces {
		if i > 0 {
			if haveRecord {
				if !armed {
					lines = append(lines, "-")
				}
				lines = append(lines, "~")
				armed = false
			} else {
				lines = append(lines, "-")
				armed = true
			}
		}
		if seg != "" {
			lines = append(lines, "-"+seg)
			haveRecord = true
			armed = true
		}
	}
	return lines, haveRecord
}

// tokenRune maps a vocabulary index to a stand-in rune, skipping the
// surrogate range.
func tokenRune(i int) rune {
	r := i + 1
	if r >= 0xD800 {
		r += 0x800
	}
	return rune(r)
}

// runeIndex is the inverse of tokenRune.
func runeIndex(r rune) int {
	i := int(r)
	if i >= 0xE000 {
		i -= 0x800
	}
	return i - 1
}
