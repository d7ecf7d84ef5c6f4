// Package plate turns noisy OCR output into canonical plate keys.
//
// Two forms exist: the normalized form keeps hyphens for display
// ("ABC-123"), the canonical key drops every separator and is what the
// directory lookup matches on ("ABC123"). Matching two plates therefore
// tolerates any separator between the letter and digit blocks but still
// requires the full string to agree.
package plate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformed marks a candidate too short or too garbled to match.
// It is a benign "no plate detected" condition, not a failure.
var ErrMalformed = errors.New("malformed plate")

// MinSignificant is the default minimum number of alphanumeric characters
// a candidate must retain after normalization.
const MinSignificant = 6

var keyPattern = regexp.MustCompile(`^([A-Z]{2,3})-?([0-9]{2,4})$`)

// Normalize uppercases the input and strips everything that is not
// A-Z, 0-9 or '-'. Whitespace and diacritic marks fall out with the rest.
// Normalize is idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalKey reduces the input to its alphanumeric characters only.
// "ABC-123", "abc 123" and "ABC123" all canonicalize to "ABC123".
func CanonicalKey(raw string) string {
	return strings.ReplaceAll(Normalize(raw), "-", "")
}

// Candidate normalizes a raw OCR string and rejects it with ErrMalformed
// when fewer than minLen significant characters remain. minLen <= 0 uses
// MinSignificant.
func Candidate(raw string, minLen int) (string, error) {
	if minLen <= 0 {
		minLen = MinSignificant
	}
	normalized := Normalize(raw)
	if len(CanonicalKey(normalized)) < minLen {
		return "", ErrMalformed
	}
	return normalized, nil
}

// Key is a parsed plate: a 2-3 letter region code and a 2-4 digit serial.
type Key struct {
	Region string
	Serial string
}

func (k Key) String() string {
	return k.Region + "-" + k.Serial
}

// ParseKey splits a normalized plate into region and serial blocks when the
// whole string follows the LETTERS-DIGITS shape (separator optional).
// Plates outside that shape match on their raw canonical form instead.
func ParseKey(normalized string) (Key, bool) {
	m := keyPattern.FindStringSubmatch(normalized)
	if m == nil {
		return Key{}, false
	}
	return Key{Region: m[1], Serial: m[2]}, true
}
