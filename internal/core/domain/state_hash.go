package domain

import (
	"bytes"
	"encoding/hex"
	"strings"

	"go.trai.ch/zerr"
)

// StateHashSize is the length of a StateHash in bytes.
const StateHashSize = 32

// StateHash is a chained digest identifying the database state reached after a
// specific prefix of deploy steps.
type StateHash [StateHashSize]byte

// EmptyStateHash is the state before any step has been applied.
var EmptyStateHash StateHash

// ParseStateHash decodes a 64-character hex string.
func ParseStateHash(s string) (StateHash, error) {
	var h StateHash

	s = strings.TrimSpace(s)
	if len(s) != hex.EncodedLen(StateHashSize) {
		return h, zerr.With(ErrInvalidStateHash, "value", s)
	}

	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, zerr.With(zerr.Wrap(err, ErrInvalidStateHash.Error()), "value", s)
	}

	return h, nil
}

// String returns the lowercase hex form used in file names and the resume marker.
func (h StateHash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the digest bytes.
func (h StateHash) Bytes() []byte {
	return bytes.Clone(h[:])
}

// IsEmpty reports whether h is the empty sentinel.
func (h StateHash) IsEmpty() bool {
	return h == EmptyStateHash
}

// Equal reports whether both hashes have the same content.
func (h StateHash) Equal(other StateHash) bool {
	return h == other
}

// MarshalText implements encoding.TextMarshaler.
func (h StateHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *StateHash) UnmarshalText(text []byte) error {
	parsed, err := ParseStateHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
