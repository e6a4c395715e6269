package utils

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var minifier = minify.New()

func init() {
	minifier.AddFunc("text/html", mhtml.Minify)
}

// RenderMarkdown converts a markdown body into the HTML stored in html_cache.
// The output is minified so the cache column stays small.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	minified, err := minifier.String("text/html", buf.String())
	if err != nil {
		// Minification is an optimization; fall back to the raw render.
		return buf.String(), nil
	}
	return minified, nil
}

// stripMarkdown removes markdown formatting for excerpt/search-text purposes.
func stripMarkdown(md string) string {
	// 1. Remove markdown images and links
	re := regexp.MustCompile(`(\[!\[.*?\]\(.*?\)\])|(\[.*?\]\(.*?\))`)
	md = re.ReplaceAllString(md, "")
	// 2. Remove headings, bold, italics, etc.
	re = regexp.MustCompile("(?m)[*#>`~-]")
	md = re.ReplaceAllString(md, "")
	// 3. Collapse whitespace
	re = regexp.MustCompile(`\s+`)
	md = re.ReplaceAllString(md, " ")
	return strings.TrimSpace(md)
}

// GenerateExcerpt produces a plain-text excerpt of at most length runes.
func GenerateExcerpt(md string, length int) string {
	plainText := stripMarkdown(md)
	// Use runes so multi-byte characters are never split
	runes := []rune(plainText)
	if len(runes) > length {
		return string(runes[:length]) + "..."
	}
	return string(runes)
}

// PlainText exposes the stripped form for search-field derivation.
func PlainText(md string) string {
	return stripMarkdown(md)
}
