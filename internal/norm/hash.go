package norm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTree is the domain prefix for content-addressed tree identity.
// Version suffix enables future algorithm migration.
const DomainTree = "normjump/tree/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TreeHash computes the content-addressed identity of a tree. Two
// structurally equal trees always hash identically, across restarts
// and replays.
func TreeHash(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("TreeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTree, canonical), nil
}
