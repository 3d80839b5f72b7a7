// Package keys builds the object keys results are stored under.
package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrSlugCollision = errors.New("names share a key")

const (
	TablePrefix = "results/"
	MapPrefix   = "maps/"
)

// sanitizeKey lowercases s and turns every run of characters other than
// letters and digits into a single hyphen.
func sanitizeKey(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "_"
	}
	return out
}

// Table returns the key of a location's merged table.
func Table(query, location string) string {
	return fmt.Sprintf("%s%s/%s.json", TablePrefix, sanitizeKey(query), sanitizeKey(location))
}

// Map returns the key of a location's rendered map.
func Map(query, location string) string {
	return fmt.Sprintf("%s%s/%s.html", MapPrefix, sanitizeKey(query), sanitizeKey(location))
}

// IsTable reports whether key names a merged table.
func IsTable(key string) bool {
	return strings.HasPrefix(key, TablePrefix) && strings.HasSuffix(key, ".json")
}

// Slug is the sanitized form used in keys, also usable as a file name.
func Slug(s string) string {
	return sanitizeKey(s)
}

// CheckSlugs fails when two distinct names sanitize to the same slug, since
// their files and objects would overwrite each other.
func CheckSlugs(names []string) error {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		slug := sanitizeKey(name)
		if prev, ok := seen[slug]; ok && prev != name {
			return fmt.Errorf("%w: %q and %q both become %q", ErrSlugCollision, prev, name, slug)
		}
		seen[slug] = name
	}
	return nil
}
