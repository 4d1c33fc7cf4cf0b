// Package route maps free-text queries onto a navigable location and runs
// a search for every location change.
package route

import (
	"net/url"
	"strings"
)

// Encode turns query text into a location fragment.
//
// The query is split on single spaces and each token is percent-encoded on
// its own, then joined with "/". Empty tokens are kept so Decode restores
// runs of spaces exactly.
func Encode(query string) string {
	if query == "" {
		return ""
	}
	tokens := strings.Split(query, " ")
	for i, tok := range tokens {
		tokens[i] = url.PathEscape(tok)
	}
	return strings.Join(tokens, "/")
}

// Decode reverses Encode. Segments with malformed escapes are kept verbatim.
func Decode(fragment string) string {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return ""
	}
	segments := strings.Split(fragment, "/")
	for i, seg := range segments {
		if s, err := url.PathUnescape(seg); err == nil {
			segments[i] = s
		}
	}
	return strings.Join(segments, " ")
}
