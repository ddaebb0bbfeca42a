package regkit

import "strings"

// KeyFunc canonicalizes a raw lookup key. It is applied on both the
// registration and lookup paths, so aliases that normalize to the same
// canonical key resolve to the same entry.
//
// KeyFuncs must be pure and idempotent: f(f(k)) == f(k).
type KeyFunc func(key string) string

// Identity returns the key unchanged. This is the default KeyFunc.
func Identity(key string) string {
	return key
}

// CaseFold lowercases the key, making lookups case-insensitive.
func CaseFold(key string) string {
	return strings.ToLower(key)
}
