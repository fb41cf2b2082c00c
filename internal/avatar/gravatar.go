// Package avatar builds gravatar image URLs for registered emails.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// Gravatar returns a 200px, PG-rated gravatar URL for email that falls back to
// the "mystery man" placeholder.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")

	return gravatarBase + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
