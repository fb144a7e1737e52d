package canonical

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeysAtEveryLevel(t *testing.T) {
	a, err := Marshal(map[string]any{"b": 1, "a": map[string]any{"z": 1, "y": 2}})
	require.NoError(t, err)

	b, err := Marshal(map[string]any{"a": map[string]any{"y": 2, "z": 1}, "b": 1})
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, `{"a":{"y":2,"z":1},"b":1}`, string(a))
}

func TestMarshal_NoInsignificantWhitespace(t *testing.T) {
	out, err := Marshal(map[string]any{"list": []any{1, 2, 3}})
	require.NoError(t, err)

	assert.NotContains(t, string(out), " ")
	assert.NotContains(t, string(out), "\n")
}

func TestHMACChain_IsDeterministicAndKeyed(t *testing.T) {
	prev := []byte("canonical-bytes")

	h1 := HMACChain([]byte("key-a"), prev)
	h2 := HMACChain([]byte("key-a"), prev)
	h3 := HMACChain([]byte("key-b"), prev)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestSignVerify_RoundTrips(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	msg := []byte("entry canonical bytes")
	sig := Sign(priv, msg)

	assert.True(t, Verify(pub, msg, sig))
	assert.False(t, Verify(pub, []byte("tampered"), sig))
}

func TestTxHash_ChangesWithInput(t *testing.T) {
	h1 := TxHash([]byte("a"))
	h2 := TxHash([]byte("b"))

	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, 32)
}
