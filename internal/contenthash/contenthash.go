// Package contenthash computes the content hash recorded on FileSummary
// (spec.md §9, Open Question 3: decided as 64-bit xxhash, hex-encoded —
// fast enough to run on every batch member without becoming the bottleneck
// a cryptographic hash would; it is never used as a content-addressed
// key). The hash is only recorded: no component compares it to skip a
// re-parse, so every drained create/modify event is parsed again.
package contenthash

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the hex-encoded 64-bit xxhash digest of content.
func Sum(content []byte) string {
	sum := xxhash.Sum64(content)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], sum)
	return hex.EncodeToString(buf[:])
}
