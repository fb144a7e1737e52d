// Package canonical implements the deterministic JSON canonicalization the
// Ledger Store signs and chains over (spec.md §4.A "Canonical encoding").
//
// No library in the retrieved pack implements this exact canonical form
// (sorted keys, no insignificant whitespace, millisecond timestamps,
// HMAC-chained, ed25519-signed) — see DESIGN.md for why this stays on the
// standard library rather than importing a generic JSON-canonicalization
// package.
package canonical

import (
	"bytes"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// Marshal serializes v into canonical form: object keys sorted
// lexicographically at every nesting level, no insignificant whitespace,
// UTF-8. v must already be JSON-marshalable (typically a map[string]any
// produced by a ledger entry's wire representation).
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("round-trip: %w", err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, generic); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		buf.WriteByte('{')

		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}

			buf.Write(kb)
			buf.WriteByte(':')

			if err := encode(buf, val[k]); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

		return nil
	case []any:
		buf.WriteByte('[')

		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := encode(buf, item); err != nil {
				return err
			}
		}

		buf.WriteByte(']')

		return nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}

		buf.Write(b)

		return nil
	}
}

// HMACChain computes the next entry's prev_hash as the HMAC-SHA256 of the
// previous entry's canonical bytes, per spec.md Invariant 5.
func HMACChain(key, prevCanonical []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(prevCanonical)

	return mac.Sum(nil)
}

// TxHash computes the content hash of a single entry's canonical bytes.
func TxHash(canonicalBytes []byte) []byte {
	sum := sha256.Sum256(canonicalBytes)
	return sum[:]
}

// Sign signs canonicalBytes (which must already include prev_hash) with an
// ed25519 private key.
func Sign(priv ed25519.PrivateKey, canonicalBytes []byte) []byte {
	return ed25519.Sign(priv, canonicalBytes)
}

// Verify checks an ed25519 signature over canonicalBytes.
func Verify(pub ed25519.PublicKey, canonicalBytes, sig []byte) bool {
	return ed25519.Verify(pub, canonicalBytes, sig)
}

// GenesisPrevHash is the fixed constant that stands in for the previous
// entry's canonical bytes when chaining seq 1, so seq 1's prev_hash is
// HMACChain(key, GenesisPrevHash).
var GenesisPrevHash = sha256.Sum256([]byte("shopfloor-sync/ledger/genesis"))
