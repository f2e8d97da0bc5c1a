// Package collection manages personal tool collections and content-addressed
// shared collections.
package collection

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Normalize trims ids, drops empty entries and drops repeats, keeping the
// first occurrence. The result is the order that gets stored.
func Normalize(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ContentHash is the hex SHA-256 of the sorted ids joined with ",". Two
// normalized lists holding the same set always hash the same.
func ContentHash(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
