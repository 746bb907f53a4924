package httpds

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// SourceID derives a short stable ID from a records URL. Export URLs of
// different sheets often share their query string, so the whole URL is
// hashed.
func SourceID(rawURL string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(rawURL))
}
