// Package normalize contains the pure field-level cleaning functions applied
// to raw extract values. Every function is total: bad input degrades to an
// absent (nil) result or a sentinel, never an error. Date handling lives in
// date.go.
package normalize

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CleanPhone strips everything but digits from raw. Fewer than 10 digits is
// unusable and yields nil; otherwise the last 10 digits are kept and prefixed
// with countryCode. Taking the rightmost digits drops leading punctuation and
// redundant country codes while keeping the locally significant number.
func CleanPhone(raw, countryCode string) *string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return nil
	}
	s := countryCode + digits[len(digits)-10:]
	return &s
}

// CleanID extracts the digit substring of raw and parses it as an integer.
// Input with no digits yields nil.
func CleanID(raw string) *int64 {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// CleanCategory trims and lowercases raw, then uppercases the first letter.
// Empty input maps to the "Unknown" sentinel so categories are never absent
// downstream.
func CleanCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "Unknown"
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// CanonicalEmail trims, lowercases, and removes all internal whitespace.
// An empty result is nil.
func CanonicalEmail(raw string) *string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return nil
	}
	return &s
}

// SynthesizeEmail produces a placeholder address for a record with no usable
// email. A stable source id keeps the placeholder deterministic across runs;
// without one, a random 8-hex suffix guarantees uniqueness within a run.
func SynthesizeEmail(sourceID *int64) string {
	var suffix string
	if sourceID != nil {
		suffix = strconv.FormatInt(*sourceID, 10)
	} else {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return "unknown+" + suffix + "@example.com"
}
