package bootstrap

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// LedgerKeys decodes the HMAC chain secret and ed25519 signing key from
// their configured string forms. The HMAC key is used as raw bytes; the
// sign key is a base64-encoded 32-byte ed25519 seed, expanded to a full
// private key the same way crypto/ed25519.NewKeyFromSeed documents.
//
// Exported so that cmd/ledgerctl can build a Ledger Store without
// pulling in the rest of InitServers' HTTP wiring.
func LedgerKeys(cfg *Config) ([]byte, ed25519.PrivateKey, error) {
	if cfg.LedgerHMACKey == "" {
		return nil, nil, fmt.Errorf("LEDGER_HMAC_KEY is required")
	}

	if cfg.LedgerSignKey == "" {
		return nil, nil, fmt.Errorf("LEDGER_SIGN_KEY is required")
	}

	seed, err := base64.StdEncoding.DecodeString(cfg.LedgerSignKey)
	if err != nil {
		return nil, nil, fmt.Errorf("decode LEDGER_SIGN_KEY: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, nil, fmt.Errorf("LEDGER_SIGN_KEY must decode to %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return []byte(cfg.LedgerHMACKey), ed25519.NewKeyFromSeed(seed), nil
}
