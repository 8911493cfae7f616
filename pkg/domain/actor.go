package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Actor is the opaque handle of a participant: farmers, certifiers,
// collaborators and the registry admin. The registry never interprets it;
// it is only compared and used as a map key. By convention handles are
// public-key derived addresses (see DeriveActor), but any non-empty string
// supplied by the execution environment is accepted.
type Actor string

func (a Actor) IsZero() bool {
	return a == ""
}

func (a Actor) String() string {
	return string(a)
}

// DeriveActor computes the address form of a public key: the hex encoding
// of the last 20 bytes of its SHA3-256 digest, 0x-prefixed. This mirrors
// how the hosting ledger assigns identities to signing keys.
func DeriveActor(publicKey []byte) Actor {
	digest := sha3.Sum256(publicKey)
	return Actor("0x" + hex.EncodeToString(digest[12:]))
}

// ParseActor normalizes a transport-supplied actor handle. Address-form
// handles are lowercased so comparisons are stable across callers.
func ParseActor(s string) (Actor, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = "0x" + strings.ToLower(s[2:])
	}
	return Actor(s), true
}
