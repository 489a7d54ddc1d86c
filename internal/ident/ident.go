// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident derives deterministic identifiers for pipeline artifacts.
// Identifiers must be stable across re-runs over unchanged inputs so that
// re-generation deduplicates via set union instead of accumulating copies.
package ident

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// Slug converts s to a lowercase hyphenated identifier fragment. Runs of
// non-alphanumeric characters collapse to a single hyphen.
func Slug(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ShortHash returns the first 12 hex characters of SHA-256 over the
// concatenated parts. A NUL separator keeps distinct part boundaries from
// colliding.
func ShortHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
