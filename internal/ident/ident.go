// Package ident holds identifier, slug and attribution-token helpers shared by
// the directory, link registry and public flow.
package ident

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStrip      = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace      = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
	tokenQuotes    = regexp.MustCompile(`['"]`)
	tokenSeparator = regexp.MustCompile(`[^a-z0-9]+`)
)

// NewID returns a random identifier for businesses, links, events, feedback
// and activity entries.
func NewID() string {
	return uuid.New().String()
}

// Slug turns a business name or requested slug into its URL-safe form.
// Characters outside [a-z0-9], whitespace and hyphens are dropped, so
// "  Café Déjà-Vu!! " becomes "caf-dj-vu". Empty input yields "".
func Slug(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SourceToken derives a link attribution token from a label or requested
// source. Unlike Slug it joins words with underscores: "Table 1" -> "table_1".
func SourceToken(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = tokenQuotes.ReplaceAllString(s, "")
	s = tokenSeparator.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// PublicURL builds the customer-facing review link for a business slug,
// optionally tagged with an attribution source.
func PublicURL(origin, slug, source string) string {
	base := strings.TrimRight(origin, "/") + "/r/" + url.PathEscape(slug)
	if source == "" {
		return base
	}
	return base + "?src=" + url.QueryEscape(source)
}
