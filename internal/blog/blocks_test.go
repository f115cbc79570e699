package blog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInlineOrderedRuns(t *testing.T) {
	t.Parallel()

	spans := ParseInline("a **bold** and *italic* end")

	require.Len(t, spans, 5)
	require.Equal(t, "a ", spans[0].Text)
	require.Empty(t, spans[0].Marks)
	require.Equal(t, "bold", spans[1].Text)
	require.Equal(t, []string{"strong"}, spans[1].Marks)
	require.Equal(t, " and ", spans[2].Text)
	require.Empty(t, spans[2].Marks)
	require.Equal(t, "italic", spans[3].Text)
	require.Equal(t, []string{"em"}, spans[3].Marks)
	require.Equal(t, " end", spans[4].Text)
	require.Empty(t, spans[4].Marks)

	var rebuilt strings.Builder
	for _, s := range spans {
		rebuilt.WriteString(s.Text)
	}
	require.Equal(t, "a bold and italic end", rebuilt.String())
}

func TestParseInlinePlainOnly(t *testing.T) {
	t.Parallel()

	spans := ParseInline("no formatting here")
	require.Len(t, spans, 1)
	require.Equal(t, "no formatting here", spans[0].Text)
	require.Empty(t, spans[0].Marks)
}

func TestParseInlineTrailingPlainKept(t *testing.T) {
	t.Parallel()

	spans := ParseInline("*lead* trailing tail")
	require.Len(t, spans, 2)
	require.Equal(t, "lead", spans[0].Text)
	require.Equal(t, []string{"em"}, spans[0].Marks)
	require.Equal(t, " trailing tail", spans[1].Text)
}

func TestBlocksFromDraft(t *testing.T) {
	t.Parallel()

	body := []DraftBlock{
		{Type: "heading", Level: 2, Content: "The Hour of Candlelight"},
		{Type: "paragraph", Content: "Desire is a **fever** that blooms."},
		{Type: "blockquote", Content: "Let them ache."},
		{Type: "list", Items: []string{"one", "*two*"}},
	}

	blocks, err := BlocksFromDraft(body)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	require.Equal(t, "h2", blocks[0].Style)
	require.Equal(t, "The Hour of Candlelight", blocks[0].Children[0].Text)

	require.Equal(t, "normal", blocks[1].Style)
	require.Equal(t, []string{"strong"}, blocks[1].Children[1].Marks)

	require.Equal(t, "blockquote", blocks[2].Style)

	require.Equal(t, "bullet", blocks[3].ListItem)
	require.Equal(t, 1, blocks[3].Level)
	require.Equal(t, "bullet", blocks[4].ListItem)
	require.Equal(t, []string{"em"}, blocks[4].Children[0].Marks)

	for _, b := range blocks {
		require.NotEmpty(t, b.Key)
		for _, s := range b.Children {
			require.NotEmpty(t, s.Key)
			require.Equal(t, "span", s.Type)
		}
	}
}

func TestBlocksFromDraftUnknownType(t *testing.T) {
	t.Parallel()

	_, err := BlocksFromDraft([]DraftBlock{{Type: "table", Content: "x"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown type")
}

func TestBlocksFromDraftHeadingDefaultsToH2(t *testing.T) {
	t.Parallel()

	blocks, err := BlocksFromDraft([]DraftBlock{{Type: "heading", Content: "x"}})
	require.NoError(t, err)
	require.Equal(t, "h2", blocks[0].Style)
}
