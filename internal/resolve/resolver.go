// Package resolve maps pasted market URLs to a provider and identifier.
package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/signalboard/signalboard/internal/domain"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Resolve parses free text as a market URL and extracts the provider plus
// its market identifier. Providers are tried in precedence order and the
// first match wins. Malformed or unrecognized input yields ok=false; this
// never returns an error so callers can feed it arbitrary chat text.
func Resolve(text string) (domain.MarketRef, bool) {
	u, err := url.Parse(strings.TrimSpace(text))
	if err != nil || u.Hostname() == "" {
		return domain.MarketRef{}, false
	}

	for _, p := range domain.Providers {
		if id := identifierFor(p, u); id != "" {
			return domain.MarketRef{Provider: p, Identifier: id}, true
		}
	}
	return domain.MarketRef{}, false
}

// identifierFor extracts the market identifier for one provider, or "" when
// the URL does not belong to it.
func identifierFor(p domain.Provider, u *url.URL) string {
	host := u.Hostname()
	parts := pathParts(u)

	switch p {
	case domain.ProviderPolymarket:
		if !strings.Contains(host, "polymarket.com") {
			return ""
		}
		return afterAnchor(parts, "event")
	case domain.ProviderKalshi:
		if !strings.Contains(host, "kalshi.com") {
			return ""
		}
		return afterAnchor(parts, "markets")
	case domain.ProviderSimmer:
		if !strings.Contains(host, "simmer.markets") {
			return ""
		}
		if id := nextSegment(parts, "markets"); id != "" {
			return id
		}
		// No anchor: accept the first UUID-shaped path segment.
		for _, part := range parts {
			if uuidRe.MatchString(strings.ToLower(part)) {
				return part
			}
		}
		return ""
	}
	return ""
}

// afterAnchor returns the segment following anchor, falling back to the last
// path segment when the anchor is absent and the path does not start with it.
func afterAnchor(parts []string, anchor string) string {
	if id := nextSegment(parts, anchor); id != "" {
		return id
	}
	if len(parts) > 0 && parts[0] != anchor {
		return parts[len(parts)-1]
	}
	return ""
}

// nextSegment returns the path segment immediately after the first occurrence
// of anchor, or "".
func nextSegment(parts []string, anchor string) string {
	for i, part := range parts {
		if part == anchor && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

// pathParts splits the URL path into non-empty segments.
func pathParts(u *url.URL) []string {
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
