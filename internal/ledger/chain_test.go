package ledger

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valstan/MatricaRMZ-sub006/pkg/canonical"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	return &Store{
		hmacKey:   []byte("test-hmac-key"),
		signKey:   priv,
		verifyKey: priv.Public().(ed25519.PublicKey),
	}
}

func TestCanonicalizeEntry_IsStableAcrossCalls(t *testing.T) {
	s := newTestStore(t)

	entry := mmodel.LedgerEntry{
		Seq:       1,
		TS:        time.Unix(1700000000, 0).UTC(),
		Op:        mmodel.ChangeOpUpsert,
		TableName: "entities",
		RowID:     "row-1",
		RowJSON:   `{"id":"row-1"}`,
		ActorID:   "user-1",
		ActorName: "alice",
		ActorRole: mmodel.RoleUser,
		PrevHash:  canonical.GenesisPrevHash[:],
	}

	a, err := s.canonicalizeEntry(entry)
	require.NoError(t, err)

	b, err := s.canonicalizeEntry(entry)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCanonicalizeEntry_SignatureVerifiesAndDetectsTamper(t *testing.T) {
	s := newTestStore(t)

	entry := mmodel.LedgerEntry{
		Seq:       1,
		TS:        time.Unix(1700000000, 0).UTC(),
		Op:        mmodel.ChangeOpUpsert,
		TableName: "entities",
		RowID:     "row-1",
		RowJSON:   `{"id":"row-1"}`,
		ActorID:   "user-1",
		ActorName: "alice",
		ActorRole: mmodel.RoleUser,
		PrevHash:  canonical.HMACChain(s.hmacKey, canonical.GenesisPrevHash[:]),
	}

	entryCanonical, err := s.canonicalizeEntry(entry)
	require.NoError(t, err)

	sig := canonical.Sign(s.signKey, entryCanonical)
	assert.True(t, canonical.Verify(s.verifyKey, entryCanonical, sig))

	entry.RowID = "row-2"
	tampered, err := s.canonicalizeEntry(entry)
	require.NoError(t, err)

	assert.False(t, canonical.Verify(s.verifyKey, tampered, sig))
}

func TestCanonicalizeEntry_DifferentPrevHashChangesChain(t *testing.T) {
	s := newTestStore(t)

	base := mmodel.LedgerEntry{
		Seq:       2,
		TS:        time.Unix(1700000001, 0).UTC(),
		Op:        mmodel.ChangeOpDelete,
		TableName: "entities",
		RowID:     "row-1",
		RowJSON:   `{}`,
		ActorRole: mmodel.RoleAdmin,
	}

	withGenesis := base
	withGenesis.PrevHash = canonical.GenesisPrevHash[:]

	withChained := base
	withChained.PrevHash = canonical.HMACChain(s.hmacKey, canonical.GenesisPrevHash[:])

	a, err := s.canonicalizeEntry(withGenesis)
	require.NoError(t, err)

	b, err := s.canonicalizeEntry(withChained)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
