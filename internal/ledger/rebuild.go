package ledger

import (
	"context"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
)

// RebuildReport summarizes a rebuild-tx-index pass, returned by ledgerctl.
type RebuildReport struct {
	IndexedCount int
	LastSeq      uint64
}

// RebuildTxIndex truncates the disposable ledger_tx_index derived table
// and replays ledger_entries to repopulate it, per
// rebuildLedgerTxIndexFromLedger. The index exists only to make Range
// index-only; it carries no information ledger_entries doesn't already
// have, so truncating and replaying it is always safe.
func (s *Store) RebuildTxIndex(ctx context.Context) (RebuildReport, error) {
	db, err := s.conn.DB()
	if err != nil {
		return RebuildReport{}, apperrors.StorageUnavailableError{Err: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return RebuildReport{}, apperrors.StorageUnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `TRUNCATE TABLE ledger_tx_index`); err != nil {
		return RebuildReport{}, apperrors.StorageUnavailableError{Err: err}
	}

	var report RebuildReport

	const batchSize = 1000

	var from uint64 = 1

	for {
		rows, err := queryEntries(ctx, tx, from, batchSize)
		if err != nil {
			return RebuildReport{}, err
		}

		if len(rows) == 0 {
			break
		}

		for _, e := range rows {
			if _, err := tx.ExecContext(ctx, `INSERT INTO ledger_tx_index (server_seq, tx_hash) VALUES ($1, $2)`, e.Seq, e.TxHash); err != nil {
				return RebuildReport{}, apperrors.StorageUnavailableError{Err: err}
			}

			report.IndexedCount++
			report.LastSeq = e.Seq
		}

		from = rows[len(rows)-1].Seq + 1
	}

	if err := tx.Commit(); err != nil {
		return RebuildReport{}, apperrors.StorageUnavailableError{Err: err}
	}

	return report, nil
}
