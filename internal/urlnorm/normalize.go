// Package urlnorm normalizes user supplied profile links to canonical https URLs.
package urlnorm

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

var ErrInvalidURL = errors.New("invalid url")

const flags = purell.FlagsUsuallySafeGreedy |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveWWW |
	purell.FlagSortQuery

// Normalize returns raw as a canonical https URL. Missing schemes are added,
// http is upgraded, and the host is lowercased with any leading www. removed.
// Empty input yields an empty string.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "https://"):
	case strings.HasPrefix(lower, "http://"):
		raw = "https://" + raw[len("http://"):]
	case strings.HasPrefix(raw, "//"):
		raw = "https:" + raw
	case strings.Contains(raw, "://"):
		return "", ErrInvalidURL
	default:
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	u.Scheme = "https"

	return purell.NormalizeURL(u, flags), nil
}
