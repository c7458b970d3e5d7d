package google

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var placeIDPattern = regexp.MustCompile(`!1s([^!/?#]+)`)

var placeIDKeys = []string{"query_place_id", "place_id", "placeid"}

// ParsePlaceID extracts a place id from the common Google Maps URL shapes:
// explicit query keys, a short link carrying the real URL in ?link=, or the
// "!1s<id>" data segment of a /maps/place/ path. It returns "" when none match.
func ParsePlaceID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	id := extractPlaceID(u, 0)
	if id == "" {
		return ""
	}
	return norm.NFKC.String(id)
}

func extractPlaceID(u *url.URL, depth int) string {
	q := u.Query()
	for _, k := range placeIDKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	// short links wrap the full maps URL; one level of nesting is enough
	if link := q.Get("link"); link != "" && depth == 0 {
		if inner, err := url.Parse(link); err == nil {
			if id := extractPlaceID(inner, depth+1); id != "" {
				return id
			}
		}
	}
	if strings.Contains(u.Path, "/maps/place/") {
		if m := placeIDPattern.FindStringSubmatch(u.Path + u.Fragment); m != nil {
			return m[1]
		}
	}
	return ""
}
