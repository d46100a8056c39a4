// Package normalize turns raw articles into deterministic, filtered,
// embedding-ready text.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"newsintel/internal/core"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace into single spaces and trims
// the result. The output is deterministic for a given input.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// ExtractFullText combines the textual fields of a raw article in a fixed
// order: title, snippet, description, body.
func ExtractFullText(article *core.RawArticle) string {
	var parts []string
	for _, part := range []string{article.Title, article.Snippet, article.Description, article.Body} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// IsEnglish is a cheap language gate: text whose ASCII ratio exceeds 0.85
// is assumed English.
func IsEnglish(text string) bool {
	if text == "" {
		return false
	}
	ascii := 0
	runes := []rune(text)
	for _, r := range runes {
		if r < 128 {
			ascii++
		}
	}
	return float64(ascii)/float64(len(runes)) > 0.85
}

// ContentHash computes the SHA-256 hex digest of the normalized text,
// usable as a deterministic duplicate key.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// Similarity computes the Jaccard similarity of the two texts' word sets
// after normalization and lower-casing. Returns a ratio in [0, 1].
func Similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for word := range wordsA {
		if _, ok := wordsB[word]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(NormalizeText(text))) {
		set[word] = struct{}{}
	}
	return set
}

// StripHTML extracts the readable text from an HTML fragment, dropping
// script/style/navigation elements. Input that does not parse as HTML is
// returned as-is after whitespace normalization.
func StripHTML(html string) string {
	if !strings.Contains(html, "<") {
		return NormalizeText(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return NormalizeText(html)
	}
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()
	return NormalizeText(doc.Text())
}
