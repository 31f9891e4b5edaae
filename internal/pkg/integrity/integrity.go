// Package integrity computes and checks the digests that certify reports.
//
// A payload is reduced to a canonical JSON string (object keys sorted at every
// depth, compact, no HTML escaping) and hashed with SHA-256. The digest is
// returned as lowercase hex.
package integrity

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnserializable is returned when a value has no JSON representation
	// (cycles, NaN or infinite floats, channels, funcs).
	ErrUnserializable = errors.New("integrity: payload is not serializable")

	// ErrEmptyPayload is returned when hashing a nil or empty payload.
	ErrEmptyPayload = errors.New("integrity: payload is empty")
)

// Canonicalize returns the canonical JSON string of v.
func Canonicalize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}

	// Decoding into generic values makes every object a map, which the
	// encoder always writes in sorted key order.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Sum returns the lowercase hex SHA-256 of s.
func Sum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Hash returns the integrity digest of payload.
func Hash(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}

	return Sum(canonical), nil
}

// Verify reports whether payload still hashes to storedDigest.
// A missing payload or one that cannot be hashed never verifies.
func Verify(payload map[string]any, storedDigest string) bool {
	if len(payload) == 0 || storedDigest == "" {
		return false
	}

	digest, err := Hash(payload)
	if err != nil {
		return false
	}

	stored := strings.ToLower(strings.TrimSpace(storedDigest))
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}
