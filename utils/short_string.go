package utils

import "fmt"

// ShortenDigest produces the display form of a digest for logs and UI
// panels. Never use the short form for integrity decisions.
func ShortenDigest(digest string) string {
	indexCut := 8
	if len(digest) <= 8 {
		return digest
	} else if len(digest) <= 16 {
		indexCut = 4
	}
	return fmt.Sprintf("%s...%s", digest[:indexCut], digest[len(digest)-indexCut:])
}
