// Package ledger implements the Ledger Store (spec.md §4.A): the
// append-only, HMAC-chained, signed log of every state change accepted
// into the Authoritative Store.
package ledger

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sqrl "github.com/Masterminds/squirrel"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/common/mpostgres"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/canonical"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// TxPayload is one pending ledger entry, not yet assigned a seq.
type TxPayload struct {
	Op        mmodel.ChangeOp
	TableName string
	RowID     string
	Row       map[string]any
	Actor     mmodel.Actor
}

// Store is the Ledger Store. It owns the ledger_entries/ledger_counter
// tables and is the only component permitted to assign server_seq values.
type Store struct {
	conn      *mpostgres.Connection
	hmacKey   []byte
	signKey   ed25519.PrivateKey
	verifyKey ed25519.PublicKey
	logger    mlog.Logger
}

// New builds a Ledger Store over the given Postgres connection. hmacKey
// chains entries (Invariant 5); signKey signs each entry and checkpoint.
func New(conn *mpostgres.Connection, hmacKey []byte, signKey ed25519.PrivateKey, logger mlog.Logger) *Store {
	return &Store{
		conn:      conn,
		hmacKey:   hmacKey,
		signKey:   signKey,
		verifyKey: signKey.Public().(ed25519.PublicKey),
		logger:    logger,
	}
}

// LastSeq returns the highest assigned sequence number, 0 if the ledger is empty.
func (s *Store) LastSeq(ctx context.Context) (uint64, error) {
	db, err := s.conn.DB()
	if err != nil {
		return 0, apperrors.StorageUnavailableError{Err: err}
	}

	var seq uint64
	if err := db.QueryRowContext(ctx, `SELECT last_seq FROM ledger_counter WHERE id = 1`).Scan(&seq); err != nil {
		return 0, apperrors.StorageUnavailableError{Err: err}
	}

	return seq, nil
}

// Append atomically assigns sequential seq values starting at
// observedLastSeq+1, chains each entry's prev_hash off the previous
// entry's canonical bytes, signs it, and writes all entries in one
// transaction. Returns LedgerConflict if the caller's observed last_seq
// no longer matches the counter under lock.
func (s *Store) Append(ctx context.Context, observedLastSeq uint64, txs []TxPayload) ([]mmodel.LedgerEntry, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	db, err := s.conn.DB()
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	entries, err := s.AppendTx(ctx, tx, observedLastSeq, txs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	return entries, nil
}

// AppendTx performs the same assignment/chaining/signing as Append, but
// inside a transaction the caller already owns and will commit. The
// Authoritative Store uses this so that table upserts, change_log
// inserts and ledger entries commit atomically in one transaction
// (spec.md §4.C rule 3, §5 "the ledger append is atomic with the
// change_log insert").
func (s *Store) AppendTx(ctx context.Context, tx *sql.Tx, observedLastSeq uint64, txs []TxPayload) ([]mmodel.LedgerEntry, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	var currentSeq uint64

	var prevCanonical []byte

	row := tx.QueryRowContext(ctx, `SELECT last_seq FROM ledger_counter WHERE id = 1 FOR UPDATE`)
	if err := row.Scan(&currentSeq); err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	if observedLastSeq != currentSeq {
		return nil, apperrors.LedgerConflictError{ObservedLastSeq: observedLastSeq, ActualLastSeq: currentSeq}
	}

	if currentSeq == 0 {
		prevCanonical = canonical.GenesisPrevHash[:]
	} else {
		var err error

		prevCanonical, err = s.canonicalOf(ctx, tx, currentSeq)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]mmodel.LedgerEntry, 0, len(txs))

	insert := sqrl.Insert("ledger_entries").
		Columns("seq", "ts", "op", "table_name", "row_id", "row_json", "actor_id", "actor_username", "actor_role", "prev_hash", "tx_hash", "sig").
		PlaceholderFormat(sqrl.Dollar)

	for _, payload := range txs {
		currentSeq++

		rowJSON, err := json.Marshal(payload.Row)
		if err != nil {
			return nil, fmt.Errorf("marshal row: %w", err)
		}

		entry := mmodel.LedgerEntry{
			Seq:       currentSeq,
			TS:        time.Now().UTC(),
			Op:        payload.Op,
			TableName: payload.TableName,
			RowID:     payload.RowID,
			RowJSON:   string(rowJSON),
			ActorID:   payload.Actor.UserID,
			ActorName: payload.Actor.Username,
			ActorRole: payload.Actor.Role,
			PrevHash:  canonical.HMACChain(s.hmacKey, prevCanonical),
		}

		entryCanonical, err := s.canonicalizeEntry(entry)
		if err != nil {
			return nil, err
		}

		entry.TxHash = canonical.TxHash(entryCanonical)
		entry.Sig = canonical.Sign(s.signKey, entryCanonical)

		insert = insert.Values(entry.Seq, entry.TS, string(entry.Op), entry.TableName, entry.RowID, entry.RowJSON,
			entry.ActorID, entry.ActorName, string(entry.ActorRole), entry.PrevHash, entry.TxHash, entry.Sig)

		entries = append(entries, entry)
		prevCanonical = entryCanonical
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE ledger_counter SET last_seq = $1 WHERE id = 1`, currentSeq); err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	return entries, nil
}

// Range reads a contiguous window of entries ordered by seq ascending,
// never returning holes.
func (s *Store) Range(ctx context.Context, fromSeq uint64, limit int) ([]mmodel.LedgerEntry, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}

	return queryEntries(ctx, db, fromSeq, limit)
}

// rowsQuerier is satisfied by both dbresolver.DB and *sql.Tx, letting
// queryEntries serve read-only callers (Range, VerifyChain) and
// transaction-scoped callers (RebuildTxIndex) alike.
type rowsQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryEntries(ctx context.Context, db rowsQuerier, fromSeq uint64, limit int) ([]mmodel.LedgerEntry, error) {
	query, args, err := sqrl.Select("seq", "ts", "op", "table_name", "row_id", "row_json", "actor_id", "actor_username", "actor_role", "prev_hash", "tx_hash", "sig").
		From("ledger_entries").
		Where(sqrl.GtOrEq{"seq": fromSeq}).
		OrderBy("seq ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sqrl.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StorageUnavailableError{Err: err}
	}
	defer rows.Close()

	var entries []mmodel.LedgerEntry

	for rows.Next() {
		var (
			e        mmodel.LedgerEntry
			op, role string
		)

		if err := rows.Scan(&e.Seq, &e.TS, &op, &e.TableName, &e.RowID, &e.RowJSON, &e.ActorID, &e.ActorName, &role, &e.PrevHash, &e.TxHash, &e.Sig); err != nil {
			return nil, apperrors.StorageUnavailableError{Err: err}
		}

		e.Op = mmodel.ChangeOp(op)
		e.ActorRole = mmodel.Role(role)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// canonicalOf returns the canonical bytes of the entry at the given seq,
// used to re-derive the chain's next prev_hash.
func (s *Store) canonicalOf(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, seq uint64) ([]byte, error) {
	entries, err := s.entriesByQuerier(ctx, q, seq)
	if err != nil {
		return nil, err
	}

	return s.canonicalizeEntry(entries)
}

func (s *Store) entriesByQuerier(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, seq uint64) (mmodel.LedgerEntry, error) {
	var (
		e        mmodel.LedgerEntry
		op, role string
	)

	row := q.QueryRowContext(ctx, `SELECT seq, ts, op, table_name, row_id, row_json, actor_id, actor_username, actor_role, prev_hash, tx_hash, sig FROM ledger_entries WHERE seq = $1`, seq)
	if err := row.Scan(&e.Seq, &e.TS, &op, &e.TableName, &e.RowID, &e.RowJSON, &e.ActorID, &e.ActorName, &role, &e.PrevHash, &e.TxHash, &e.Sig); err != nil {
		return e, apperrors.StorageUnavailableError{Err: err}
	}

	e.Op = mmodel.ChangeOp(op)
	e.ActorRole = mmodel.Role(role)

	return e, nil
}

// canonicalizeEntry serializes the entry (including prev_hash, excluding
// tx_hash/sig) the way it was signed, per spec.md §4.A.
func (s *Store) canonicalizeEntry(e mmodel.LedgerEntry) ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"seq":            e.Seq,
		"ts":             e.TS.UnixMilli(),
		"op":             string(e.Op),
		"table":          e.TableName,
		"row_id":         e.RowID,
		"row":            json.RawMessage(e.RowJSON),
		"actor_user_id":  e.ActorID,
		"actor_username": e.ActorName,
		"actor_role":     string(e.ActorRole),
		"prev_hash":      e.PrevHash,
	})
}
