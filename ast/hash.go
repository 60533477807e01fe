package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// future algorithm migration without colliding with old hashes.
const (
	DomainGraph = "rado/graph/v1"
	DomainRun   = "rado/run/v1"
)

// HashCanonical computes SHA256(domain + 0x00 + canonical(v)) in hex. The
// null separator prevents domain/data boundary ambiguity.
func HashCanonical(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MustHashCanonical is like HashCanonical but panics on error. Use only in
// tests or when inputs are known to be hashable.
func MustHashCanonical(domain string, v any) string {
	id, err := HashCanonical(domain, v)
	if err != nil {
		panic(err)
	}
	return id
}
