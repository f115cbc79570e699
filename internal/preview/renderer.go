package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/avablackwood/presskit/internal/blog"
)

// SiteConfig carries the site-wide values embedded in preview documents.
type SiteConfig struct {
	BaseURL       string
	SiteName      string
	AuthorName    string
	TwitterHandle string
}

// Renderer produces the crawler-facing HTML document for a post.
type Renderer struct {
	cfg  SiteConfig
	tmpl *template.Template
}

// NewRenderer parses the preview template.
func NewRenderer(cfg SiteConfig) (*Renderer, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	tmpl, err := template.New("preview").Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("preview: parse template: %w", err)
	}
	return &Renderer{cfg: cfg, tmpl: tmpl}, nil
}

type previewData struct {
	Title         string
	Description   string
	ImageURL      string
	FullURL       string
	AuthorName    string
	SiteName      string
	TwitterHandle string
	PublishedISO  string
	PublishedDate string
}

// Render builds the preview document. It carries the full metadata tag set
// plus a client-side redirect so a human that slipped past classification
// still lands on the canonical page.
func (r *Renderer) Render(post blog.Post) ([]byte, error) {
	description := strings.TrimSpace(post.Excerpt)
	if description == "" {
		description = blog.DefaultExcerpt
	}
	imageURL := post.ImageURL
	if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
		imageURL = r.cfg.BaseURL + imageURL
	}
	author := post.AuthorName
	if author == "" {
		author = r.cfg.AuthorName
	}
	published := post.PublishedAt
	if published.IsZero() {
		published = time.Now()
	}

	data := previewData{
		Title:         post.Title,
		Description:   description,
		ImageURL:      imageURL,
		FullURL:       fmt.Sprintf("%s/blog/%s", r.cfg.BaseURL, post.Slug),
		AuthorName:    author,
		SiteName:      r.cfg.SiteName,
		TwitterHandle: r.cfg.TwitterHandle,
		PublishedISO:  published.UTC().Format(time.RFC3339),
		PublishedDate: published.Format("January 2, 2006"),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("preview: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">

    <title>{{.Title}} | {{.SiteName}}</title>
    <meta name="description" content="{{.Description}}">
    <meta name="author" content="{{.AuthorName}}">
    <meta name="robots" content="index, follow">

    <!-- Open Graph -->
    <meta property="og:type" content="article">
    <meta property="og:site_name" content="{{.SiteName}}">
    <meta property="og:url" content="{{.FullURL}}">
    <meta property="og:title" content="{{.Title}}">
    <meta property="og:description" content="{{.Description}}">
    <meta property="og:image" content="{{.ImageURL}}">
    <meta property="og:image:secure_url" content="{{.ImageURL}}">
    <meta property="og:image:width" content="1200">
    <meta property="og:image:height" content="630">
    <meta property="og:image:alt" content="{{.Title}}">
    <meta property="og:locale" content="en_US">
    <meta property="article:published_time" content="{{.PublishedISO}}">
    <meta property="article:author" content="{{.AuthorName}}">
    <meta property="article:section" content="Blog">

    <!-- Twitter Card -->
    <meta name="twitter:card" content="summary_large_image">
    <meta name="twitter:site" content="{{.TwitterHandle}}">
    <meta name="twitter:creator" content="{{.TwitterHandle}}">
    <meta name="twitter:url" content="{{.FullURL}}">
    <meta name="twitter:title" content="{{.Title}}">
    <meta name="twitter:description" content="{{.Description}}">
    <meta name="twitter:image" content="{{.ImageURL}}">
    <meta name="twitter:image:alt" content="{{.Title}}">

    <link rel="canonical" href="{{.FullURL}}">
    <meta name="theme-color" content="#000000">

    <script type="application/ld+json">
    {
      "@context": "https://schema.org",
      "@type": "BlogPosting",
      "headline": "{{.Title}}",
      "description": "{{.Description}}",
      "image": "{{.ImageURL}}",
      "author": {
        "@type": "Person",
        "name": "{{.AuthorName}}"
      },
      "publisher": {
        "@type": "Person",
        "name": "{{.AuthorName}}"
      },
      "datePublished": "{{.PublishedISO}}",
      "dateModified": "{{.PublishedISO}}",
      "mainEntityOfPage": {
        "@type": "WebPage",
        "@id": "{{.FullURL}}"
      }
    }
    </script>

    <!-- Redirect browsers that slipped past crawler classification -->
    <script>
        (function() {
            var userAgent = navigator.userAgent.toLowerCase();
            var isCrawler = /bot|crawler|spider|crawling|facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegram|discord|slack/i.test(userAgent);
            if (!isCrawler) {
                setTimeout(function() {
                    window.location.replace({{.FullURL}});
                }, 100);
            }
        })();
    </script>
    <noscript>
        <meta http-equiv="refresh" content="2; url={{.FullURL}}">
    </noscript>

    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', sans-serif;
            max-width: 600px;
            margin: 50px auto;
            padding: 20px;
            background: #f9f9f9;
            color: #333;
        }
        .card {
            background: white;
            border-radius: 8px;
            padding: 30px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            text-align: center;
        }
        .loading { color: #666; margin-bottom: 20px; }
        .title { color: #2c3e50; margin: 20px 0; }
        .description { color: #7f8c8d; line-height: 1.6; margin-bottom: 30px; }
        .cta {
            display: inline-block;
            background: #3498db;
            color: white;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 5px;
            font-weight: bold;
        }
        .meta { margin-top: 20px; color: #95a5a6; font-size: 14px; }
    </style>
</head>
<body>
    <div class="card">
        <div class="loading">Loading article...</div>
        <h1 class="title">{{.Title}}</h1>
        <p class="description">{{.Description}}</p>
        <a href="{{.FullURL}}" class="cta">Read Full Article</a>
        <div class="meta">By {{.AuthorName}} &bull; {{.PublishedDate}}</div>
    </div>
</body>
</html>`
