package pipeline

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/avablackwood/presskit/internal/blog"
)

// scenePool backs image-prompt derivation when the draft carries no usable
// scene of its own.
var scenePool = []string{
	"A single black stocking draped over a velvet armchair",
	"A woman's bare back, bathed in golden candlelight",
	"A silk slip, clinging to the curve of a hip in the hush of moonlight",
	"A wrist turned upward, veins like silk threads, pulse flickering beneath the surface",
	"A lace glove resting on a marble mantel beside a dying candle",
}

// scenePhrase matches a short symbolic noun phrase in a trailing paragraph.
var scenePhrase = regexp.MustCompile(`(?i)\b(?:a|an) [^.!?\n]{10,90}`)

func draftPrompt(authorName string, existingTitles []string) string {
	var negative string
	if len(existingTitles) > 0 {
		var b strings.Builder
		b.WriteString("\n\nCRITICAL: AVOID THESE EXISTING TITLES.\n")
		b.WriteString("Do NOT create titles similar to these already published posts:\n")
		for _, title := range existingTitles {
			fmt.Fprintf(&b, "- %q\n", title)
		}
		b.WriteString("Your title MUST be completely unique and different from all of the above.\n")
		negative = b.String()
	}

	return fmt.Sprintf(`You are %s, an author of dark academia and sensual romance. Your prose is evocative, mysterious, and magnetic.
%s
TASK:
Write a new, original blog post that reads as a guide to real-world romance and intimacy, in your own voice.

TITLE REQUIREMENTS:
The title must feel refined, emotionally potent, and artistically composed. Never formulaic.

BODY FORMAT:
Output the body as a JSON array containing at least one of each of:
- { "type": "heading", "level": 2, "content": "..." }
- { "type": "paragraph", "content": "..." } (use **bold** and *italic* for emphasis)
- { "type": "blockquote", "content": "..." }
- { "type": "list", "items": ["...", "...", "..."] }

The final paragraph must feature a single, symbolic, sensual image: a human detail or a symbolic object.

IMAGE PROMPT:
From the final paragraph, derive a scene description under 15 words.

FINAL OUTPUT FORMAT:
Return one valid JSON object with keys:
- "title": the blog post title
- "body": the JSON array of structured blocks
- "image_prompt": the visual scene`, authorName, negative)
}

// retryDraftPrompt strengthens the uniqueness constraint after a
// near-duplicate title.
func retryDraftPrompt(base, duplicateTitle string) string {
	urgent := fmt.Sprintf("URGENT: the title %q already exists. Generate a COMPLETELY DIFFERENT title.\n\nTASK:", duplicateTitle)
	return strings.Replace(base, "TASK:", urgent, 1)
}

// imagePrompt frames a scene description for the image providers.
func imagePrompt(scene string) string {
	return fmt.Sprintf(`Photorealistic person or still life, cinematic lighting with deep shadows, shallow depth of field.
Focus on: %s.
The scene should feel intimate, evocative, and poetic.
No text, no logos. Emphasis on texture and mood.`, scene)
}

// deriveScene picks the image scene for a draft: the draft's own field first,
// then a phrase extracted from the trailing paragraphs, then a pool entry
// chosen deterministically from the title.
func deriveScene(draft blog.Draft) string {
	if scene := strings.TrimSpace(draft.ImagePrompt); scene != "" {
		return scene
	}
	for i := len(draft.Body) - 1; i >= 0; i-- {
		block := draft.Body[i]
		if block.Type != "paragraph" {
			continue
		}
		text := strings.NewReplacer("**", "", "*", "").Replace(block.Content)
		if match := scenePhrase.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
		break
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(blog.NormalizeTitle(draft.Title)))
	return scenePool[int(h.Sum32())%len(scenePool)]
}

func captionPrompt(authorName, title, summary string) string {
	return fmt.Sprintf(`You are a social media manager for romance author %s.
Create a short, catchy, and intriguing social media post based on her latest blog post.
The tone should be sophisticated and tempting.
Include this link at the end: [Link to blog post]
Include 3 relevant hashtags.
Keep the output text under 280 characters for posting on X.

Blog Post Title: %q
Blog Post Content Summary: %q

Based on this, generate a JSON object with one key: "social_post_text".`, authorName, title, summary)
}
