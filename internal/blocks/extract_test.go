package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextJoinsTextBlocks(t *testing.T) {
	input := []Block{
		{Type: TypeText, Content: map[string]any{"markdown": "A"}},
		{Type: TypeBookCard, Content: map[string]any{"title": "X", "author": "Y"}},
		{Type: TypeText, Content: map[string]any{"markdown": "B"}},
	}

	assert.Equal(t, "A\n\nB", ExtractText(input))
}

func TestExtractTextEmptyInput(t *testing.T) {
	assert.Equal(t, "", ExtractText(nil))
	assert.Equal(t, "", ExtractText([]Block{}))
}

func TestExtractTextIgnoresStructuredBlocks(t *testing.T) {
	input := []Block{
		{Type: TypeBookList, Content: map[string]any{"books": []any{1, 2}}},
	}
	assert.Equal(t, "", ExtractText(input))
}

func TestSummarizeBookList(t *testing.T) {
	input := []Block{
		{Type: TypeBookList, Content: map[string]any{
			"books": []any{map[string]any{}, map[string]any{}},
		}},
	}

	assert.Equal(t, "I showed you 2 book recommendations.", Summarize(input))
}

func TestSummarizeBookCardAndSpotlight(t *testing.T) {
	input := []Block{
		{Type: TypeBookCard, Content: map[string]any{"title": "Dune", "author": "Frank Herbert"}},
		{Type: TypeBookSpotlight, Content: map[string]any{"title": "Hyperion"}},
	}

	assert.Equal(t,
		"I recommended Dune by Frank Herbert. I provided detailed information about Hyperion.",
		Summarize(input))
}

func TestSummarizeBookListWithoutBooks(t *testing.T) {
	input := []Block{
		{Type: TypeBookList, Content: map[string]any{"title": "Empty"}},
	}
	assert.Equal(t, "I showed you 0 book recommendations.", Summarize(input))
}

func TestSummarizeTextOnly(t *testing.T) {
	input := []Block{
		{Type: TypeText, Content: map[string]any{"markdown": "hello"}},
	}
	assert.Equal(t, "", Summarize(input))
}

func TestExtractEmbeddedJSON(t *testing.T) {
	raw := `Here are some books:

{"blocks":[{"type":"text","content":{"markdown":"I found these great books:"}}]}

Enjoy reading!`

	extracted := ExtractEmbeddedJSON(raw)
	require.NotEmpty(t, extracted)

	doc, err := Parse(extracted, true)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "I found these great books:", doc.Blocks[0].Content["markdown"])
}

func TestExtractEmbeddedJSONNoMatch(t *testing.T) {
	assert.Equal(t, "", ExtractEmbeddedJSON("no structured payload here"))
}
