// Package statekey derives deterministic hash keys from arbitrary state
// maps. The contract is fixed: sort the keys, serialize each entry, hash
// the whole serialization, render 16 hex characters. The digest is a full
// 64-bit xxhash, so the 16-character rendering loses nothing; collisions
// are possible in principle but require ~2^32 distinct states before
// becoming likely.
package statekey

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ForState returns the canonical 16-hex-character key for a state map.
// Two maps with the same entries produce the same key regardless of
// iteration order. A nil or empty map has a well-defined key.
func ForState(state map[string]any) string {
	return fmt.Sprintf("%016x", Sum(state))
}

// Sum returns the raw 64-bit digest of the canonical serialization.
func Sum(state map[string]any) uint64 {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%v;", k, state[k])
	}
	return xxhash.Sum64String(b.String())
}

// ForAction hashes an action identifier into [0,1) for use as a feature.
func ForAction(action string) float64 {
	return float64(xxhash.Sum64String(action)%1000) / 1000.0
}

// ForValue hashes an arbitrary non-numeric value into [0,1).
func ForValue(v any) float64 {
	return float64(xxhash.Sum64String(fmt.Sprintf("%v", v))%1000) / 1000.0
}
