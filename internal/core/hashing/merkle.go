package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// EmptyHash is the Merkle root of a period with no entries: SHA-256 of the
// empty byte string.
func EmptyHash() string {
	sum := sha256.Sum256(nil)
	return hex.EncodeToString(sum[:])
}

// CombineHashes derives a parent node from two children: SHA-256 over the
// concatenated hex representations.
func CombineHashes(left, right string) string {
	h := sha256.New()
	h.Write([]byte(left))
	h.Write([]byte(right))
	return hex.EncodeToString(h.Sum(nil))
}

// BuildMerkle builds a Merkle tree bottom-up over the given leaf hashes and
// returns the root plus every level, leaves first. An odd node at the end of a
// level is paired with itself. Zero leaves yield EmptyHash; a single leaf is
// its own root.
func BuildMerkle(leaves []string) (string, [][]string) {
	if len(leaves) == 0 {
		return EmptyHash(), [][]string{{}}
	}

	current := make([]string, len(leaves))
	copy(current, leaves)
	levels := [][]string{append([]string(nil), current...)}

	for len(current) > 1 {
		next := make([]string, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, CombineHashes(current[i], current[i+1]))
			} else {
				next = append(next, CombineHashes(current[i], current[i]))
			}
		}
		current = next
		levels = append(levels, append([]string(nil), current...))
	}

	return current[0], levels
}
