package blog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Span is one inline run inside a block: plain text or a marked
// (strong/em) stretch. Keys are required by the content store.
type Span struct {
	Key   string   `json:"_key"`
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// Block is one element of the stored rich-text body. Style carries the
// variant: "h2".."h6" for headings, "normal" for paragraphs and list rows,
// "blockquote" for quotes. List rows additionally set ListItem and Level.
type Block struct {
	Key      string `json:"_key"`
	Type     string `json:"_type"`
	Style    string `json:"style"`
	ListItem string `json:"listItem,omitempty"`
	Level    int    `json:"level,omitempty"`
	Children []Span `json:"children"`
}

// newKey returns a short random key for blocks and spans.
func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

var inlineMarks = regexp.MustCompile(`(\*\*.*?\*\*)|(\*.*?\*)`)

// ParseInline scans literal **...** and *...* delimiters left to right and
// splits text into alternating plain and marked runs, in order. Trailing
// plain text after the last match is preserved; concatenating the run texts
// reproduces the input with delimiters removed.
func ParseInline(text string) []Span {
	var spans []Span
	last := 0
	for _, loc := range inlineMarks.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, plainSpan(text[last:loc[0]]))
		}
		matched := text[loc[0]:loc[1]]
		var marks []string
		var content string
		if strings.HasPrefix(matched, "**") {
			marks = []string{"strong"}
			content = matched[2 : len(matched)-2]
		} else {
			marks = []string{"em"}
			content = matched[1 : len(matched)-1]
		}
		spans = append(spans, Span{Key: newKey(), Type: "span", Text: content, Marks: marks})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, plainSpan(text[last:]))
	}
	if spans == nil {
		spans = []Span{plainSpan("")}
	}
	return spans
}

func plainSpan(text string) Span {
	return Span{Key: newKey(), Type: "span", Text: text}
}

// BlocksFromDraft converts a draft body to the stored rich-text model.
// Unknown block types are rejected rather than silently dropped.
func BlocksFromDraft(body []DraftBlock) ([]Block, error) {
	var blocks []Block
	for i, db := range body {
		switch db.Type {
		case "heading":
			level := db.Level
			if level == 0 {
				level = 2
			}
			blocks = append(blocks, Block{
				Key:      newKey(),
				Type:     "block",
				Style:    fmt.Sprintf("h%d", level),
				Children: []Span{plainSpan(db.Content)},
			})
		case "paragraph":
			blocks = append(blocks, Block{
				Key:      newKey(),
				Type:     "block",
				Style:    "normal",
				Children: ParseInline(db.Content),
			})
		case "blockquote":
			blocks = append(blocks, Block{
				Key:      newKey(),
				Type:     "block",
				Style:    "blockquote",
				Children: []Span{plainSpan(db.Content)},
			})
		case "list":
			for _, item := range db.Items {
				blocks = append(blocks, Block{
					Key:      newKey(),
					Type:     "block",
					Style:    "normal",
					ListItem: "bullet",
					Level:    1,
					Children: ParseInline(item),
				})
			}
		default:
			return nil, fmt.Errorf("block %d: unknown type %q", i, db.Type)
		}
	}
	return blocks, nil
}
