package worddiff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmark/revmark/internal/document"
)

func generateAndParse(t *testing.T, oldText, newText, wordRegex string) []Change {
	t.Helper()
	porcelain, err := Generate(oldText, newText, wordRegex)
	require.NoError(t, err)
	changes := Parse(porcelain, document.New(newText))
	require.NoError(t, Validate(changes))
	return changes
}

func TestGenerate_EqualTextsYieldNothing(t *testing.T) {
	porcelain, err := Generate("same\n", "same\n", "")
	require.NoError(t, err)
	assert.Empty(t, porcelain)
}

func TestGenerate_WordReplacement(t *testing.T) {
	porcelain, err := Generate("Hello world\n", "Hi world\n", "")
	require.NoError(t, err)
	assert.Contains(t, porcelain, "-Hello")
	assert.Contains(t, porcelain, "+Hi")

	changes := generateAndParse(t, "Hello world\n", "Hi world\n", "")
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: KindChange, Start: 0, End: 2, Previous: "Hello"}, changes[0])
}

func TestGenerate_DeletedLineAnchorsAfterKeptLine(t *testing.T) {
	changes := generateAndParse(t, "a\nx\nb\n", "a\nb\n", "")
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: KindDelete, Start: 2, End: 2, Previous: "x\n"}, changes[0])
}

func TestGenerate_DeletedLinesAtTop(t *testing.T) {
	changes := generateAndParse(t, "x\ny\na\n", "a\n", "")
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: KindDelete, Start: 0, End: 0, Previous: "x\ny\n"}, changes[0])
}

func TestGenerate_TrailingLineRemoved(t *testing.T) {
	changes := generateAndParse(t, "Keep\nRemove", "Keep", "")
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: KindDelete, Start: 4, End: 4, Previous: "\nRemove"}, changes[0])
}

func TestGenerate_InsertedWord(t *testing.T) {
	changes := generateAndParse(t, "a c\n", "a b c\n", "")
	require.Len(t, changes, 1)
	require.Equal(t, KindInsert, changes[0].Kind)

	// The inserted span must cover exactly the text absent from the old
	// document, so deleting it restores the old text.
	doc := document.New("a b c\n")
	doc.Replace(changes[0].Start, changes[0].End, "")
	assert.Equal(t, "a c\n", doc.Text())
}

func TestGenerate_AddedLine(t *testing.T) {
	changes := generateAndParse(t, "a\nc\n", "a\nb\nc\n", "")
	require.Len(t, changes, 1)
	assert.Equal(t, KindInsert, changes[0].Kind)
	assert.Equal(t, 2, changes[0].Start)
	assert.Equal(t, 3, changes[0].End)
}

func TestGenerate_MultipleHunks(t *testing.T) {
	oldText := "one 2\nsame\nsame\nsame\nfive 6\n"
	newText := "one two\nsame\nsame\nsame\nfive six\n"

	changes := generateAndParse(t, oldText, newText, "")
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Kind: KindChange, Start: 4, End: 7, Previous: "2"}, changes[0])
	assert.Equal(t, Change{Kind: KindChange, Start: 28, End: 31, Previous: "6"}, changes[1])
}

func TestGenerate_CustomWordRegex(t *testing.T) {
	// With a letters-only word pattern, digits and punctuation are
	// separators, so only the identifier differs.
	changes := generateAndParse(t, "count=1;\n", "total=1;\n", "[a-zA-Z]+")
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Kind: KindChange, Start: 0, End: 5, Previous: "count"}, changes[0])
}

func TestGenerate_BadWordRegex(t *testing.T) {
	_, err := Generate("a", "b", "[")
	require.Error(t, err)
}

func TestGenerate_HeaderCarriesNewFileLineNumbers(t *testing.T) {
	porcelain, err := Generate("a\nb\nold\n", "a\nb\nnew\n", "")
	require.NoError(t, err)

	var header string
	for _, line := range strings.Split(porcelain, "\n") {
		if strings.HasPrefix(line, "@@") {
			header = line
			break
		}
	}
	assert.Equal(t, "@@ -3,1 +3,1 @@", header)
}
