// Package blog defines the domain model for posts: slugs, drafts, and the
// rich-text block representation stored in the content store.
package blog

import (
	"regexp"
	"strings"
	"time"
)

// Post is the published article shape used for previews and announcements.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	ImageURL    string
	AuthorName  string
	PublishedAt time.Time
}

// Draft is the structured output of the text-generation step, prior to
// persistence. ImagePrompt is optional; the pipeline derives one when absent.
type Draft struct {
	Title       string       `json:"title"`
	Body        []DraftBlock `json:"body"`
	ImagePrompt string       `json:"image_prompt"`
}

// DraftBlock is one element of a draft body as emitted by the model.
type DraftBlock struct {
	Type    string   `json:"type"` // heading, paragraph, blockquote, list
	Level   int      `json:"level,omitempty"`
	Content string   `json:"content,omitempty"`
	Items   []string `json:"items,omitempty"`
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugStrip   = regexp.MustCompile(`[^\w-]+`)
	titleMarks  = regexp.MustCompile(`[^\w\s]`)
	titleSpaces = regexp.MustCompile(`\s+`)
)

// Slugify derives the URL-safe route segment from a title: lowercase,
// whitespace collapsed to hyphens, everything outside [\w-] stripped.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	return s
}

// NormalizeTitle lowers, trims, strips punctuation and collapses whitespace
// so titles can be compared for near-duplicates.
func NormalizeTitle(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = titleMarks.ReplaceAllString(s, "")
	s = titleSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TitleSimilarity returns the shared-word ratio between two normalized
// titles: |intersection| / max(|a|, |b|). Identical titles return 1.
func TitleSimilarity(a, b string) float64 {
	aWords := wordSet(NormalizeTitle(a))
	bWords := wordSet(NormalizeTitle(b))
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}
	shared := 0
	for w := range aWords {
		if bWords[w] {
			shared++
		}
	}
	larger := len(aWords)
	if len(bWords) > larger {
		larger = len(bWords)
	}
	return float64(shared) / float64(larger)
}

func wordSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// PlainText flattens a draft body to a single newline-joined string, used
// for excerpts and for prompting the caption generator.
func PlainText(body []DraftBlock) string {
	parts := make([]string, 0, len(body))
	for _, block := range body {
		switch {
		case block.Content != "":
			parts = append(parts, block.Content)
		case len(block.Items) > 0:
			parts = append(parts, strings.Join(block.Items, " "))
		}
	}
	return strings.Join(parts, "\n")
}

// DefaultExcerpt is served when a post has no usable body text.
const DefaultExcerpt = "Explore the depths of desire and forbidden attraction in this captivating piece from Ava Blackwood's collection."

// Excerpt collapses text to single-spaced prose and cuts it at maxLen with an
// ellipsis. Empty input yields DefaultExcerpt.
func Excerpt(text string, maxLen int) string {
	clean := strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " ")), " ")
	if clean == "" {
		return DefaultExcerpt
	}
	// Cut on a rune boundary; a byte slice can split a multi-byte character.
	runes := []rune(clean)
	if maxLen > 0 && len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen])) + "..."
	}
	return clean
}
