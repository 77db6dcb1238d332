package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	SchemaHash Hash
	ConfigHash Hash
)

func (h SchemaHash) String() string { return Hash(h).String() }
func (h SchemaHash) IsEmpty() bool  { return Hash(h).IsEmpty() }
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash hashes a flat key/value view of the run configuration.
// Keys are sorted so map iteration order does not leak into the hash.
func ComputeConfigHash(settings map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", settings[key]))
		data.WriteString(";")
	}

	return ConfigHash(NewHash([]byte(data.String())))
}
