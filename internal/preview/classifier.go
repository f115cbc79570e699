// Package preview serves crawler-optimized link previews for blog posts.
// Social platforms fetch a slug with a bot User-Agent and need full metadata
// tags; human visitors get redirected to the canonical page instead.
package preview

import "strings"

// socialCrawlers are the known link-preview bot User-Agent tokens. Matching
// is case-insensitive substring, the classification is a heuristic.
var socialCrawlers = []string{
	"facebookexternalhit",
	"Twitterbot",
	"LinkedInBot",
	"WhatsApp",
	"TelegramBot",
	"DiscordBot",
	"SlackBot",
	"SkypeUriPreview",
	"MicrosoftPreview",
	"RedditBot",
	"PinterestBot",
	"GoogleBot",
	"bingbot",
	"YandexBot",
	"DuckDuckBot",
}

// IsSocialCrawler reports whether a User-Agent belongs to a link-preview bot.
// An empty User-Agent is treated as a human visitor.
func IsSocialCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	lower := strings.ToLower(userAgent)
	for _, crawler := range socialCrawlers {
		if strings.Contains(lower, strings.ToLower(crawler)) {
			return true
		}
	}
	return false
}
