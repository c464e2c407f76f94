package ingest

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans each field of the pair and joins them with newlines.
// Lowercasing, trimming and line-ending normalization mean cosmetic edits
// to a deck file do not produce a "new" card on the next import.
func Normalize(p Pair) string {
	normalizePart := func(part string) string {
		s := strings.ToLower(part)
		s = strings.TrimSpace(s)
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return s
	}

	q := normalizePart(p.Question)
	a := normalizePart(p.Answer)
	topic := normalizePart(p.Topic)

	return strings.Join([]string{q, a, topic}, "\n")
}

// Hash returns the SHA-256 of the normalized pair as a hex string. It is
// the identity used to skip already-imported cards during sync.
func Hash(p Pair) string {
	normalized := Normalize(p)
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", sum)
}
