package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/canonical"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// VerifyReport summarizes a chain-verification pass, returned by ledgerctl.
type VerifyReport struct {
	FirstSeq   uint64
	LastSeq    uint64
	EntryCount int
	OK         bool
	BrokenAt   uint64
	Reason     string
}

// VerifyChain walks the ledger from seq 1, recomputing each entry's
// prev_hash and tx_hash/sig and failing fast on the first mismatch.
// It is read-only and safe to run against a live ledger.
func (s *Store) VerifyChain(ctx context.Context) (VerifyReport, error) {
	report := VerifyReport{OK: true}

	prevCanonical := canonical.GenesisPrevHash[:]

	const batchSize = 1000

	var from uint64 = 1

	for {
		entries, err := s.Range(ctx, from, batchSize)
		if err != nil {
			return report, err
		}

		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			if report.EntryCount == 0 {
				report.FirstSeq = e.Seq
			}

			wantPrevHash := canonical.HMACChain(s.hmacKey, prevCanonical)
			if string(wantPrevHash) != string(e.PrevHash) {
				report.OK = false
				report.BrokenAt = e.Seq
				report.Reason = "prev_hash mismatch"

				return report, nil
			}

			entryCanonical, err := s.canonicalizeEntry(e)
			if err != nil {
				return report, err
			}

			if string(canonical.TxHash(entryCanonical)) != string(e.TxHash) {
				report.OK = false
				report.BrokenAt = e.Seq
				report.Reason = "tx_hash mismatch"

				return report, nil
			}

			if !canonical.Verify(s.verifyKey, entryCanonical, e.Sig) {
				report.OK = false
				report.BrokenAt = e.Seq
				report.Reason = "signature invalid"

				return report, nil
			}

			prevCanonical = entryCanonical
			report.LastSeq = e.Seq
			report.EntryCount++
		}

		from = entries[len(entries)-1].Seq + 1
	}

	return report, nil
}

// Checkpoint computes a digest over the ledger's current last_seq and
// persists a signed attestation, per spec.md §4.A "checkpoint".
func (s *Store) Checkpoint(ctx context.Context) (mmodel.Checkpoint, error) {
	report, err := s.VerifyChain(ctx)
	if err != nil {
		return mmodel.Checkpoint{}, err
	}

	if !report.OK {
		return mmodel.Checkpoint{}, fmt.Errorf("ledger chain broken at seq %d: %s", report.BrokenAt, report.Reason)
	}

	digestInput, err := canonical.Marshal(map[string]any{
		"last_seq": report.LastSeq,
		"count":    report.EntryCount,
	})
	if err != nil {
		return mmodel.Checkpoint{}, err
	}

	cp := mmodel.Checkpoint{
		LastSeq:   report.LastSeq,
		Digest:    canonical.TxHash(digestInput),
		CreatedAt: time.Now().UTC(),
	}

	cpCanonical, err := canonical.Marshal(map[string]any{
		"last_seq":   cp.LastSeq,
		"digest":     cp.Digest,
		"created_at": cp.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return mmodel.Checkpoint{}, err
	}

	cp.Sig = canonical.Sign(s.signKey, cpCanonical)

	db, err := s.conn.DB()
	if err != nil {
		return mmodel.Checkpoint{}, apperrors.StorageUnavailableError{Err: err}
	}

	_, err = db.ExecContext(ctx, `INSERT INTO ledger_checkpoints (last_seq, digest, created_at, sig) VALUES ($1, $2, $3, $4)`,
		cp.LastSeq, cp.Digest, cp.CreatedAt, cp.Sig)
	if err != nil {
		return mmodel.Checkpoint{}, apperrors.StorageUnavailableError{Err: err}
	}

	return cp, nil
}

// LatestCheckpoint returns the most recently written checkpoint, or the
// zero value if none exists yet.
func (s *Store) LatestCheckpoint(ctx context.Context) (mmodel.Checkpoint, bool, error) {
	db, err := s.conn.DB()
	if err != nil {
		return mmodel.Checkpoint{}, false, apperrors.StorageUnavailableError{Err: err}
	}

	var cp mmodel.Checkpoint

	row := db.QueryRowContext(ctx, `SELECT last_seq, digest, created_at, sig FROM ledger_checkpoints ORDER BY last_seq DESC LIMIT 1`)
	if err := row.Scan(&cp.LastSeq, &cp.Digest, &cp.CreatedAt, &cp.Sig); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return mmodel.Checkpoint{}, false, nil
		}

		return mmodel.Checkpoint{}, false, apperrors.StorageUnavailableError{Err: err}
	}

	return cp, true, nil
}
