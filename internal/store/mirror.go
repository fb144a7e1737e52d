package store

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

// mirrorAfterCommit pushes committed ledger entries into the ambient
// Mongo metadata-index and announces them on the RabbitMQ fanout
// exchange. Both are best-effort: a failure here never unwinds the
// already-committed Postgres transaction, and neither is consulted by
// queryPullSince - the relational tables and change_log remain the
// single source of truth (spec.md §4.C defines correctness purely in
// terms of those).
// NotifyCommitted runs the same best-effort mirroring as WriteSyncChanges
// for a write committed elsewhere (the Change-Request Gate's apply path,
// which shares its transaction with a change_requests status update and
// so cannot call WriteSyncChanges directly).
func (s *Store) NotifyCommitted(ctx context.Context, entries []mmodel.LedgerEntry) {
	s.mirrorAfterCommit(ctx, entries)
}

func (s *Store) mirrorAfterCommit(ctx context.Context, entries []mmodel.LedgerEntry) {
	if s.mongo != nil {
		s.mirrorToMongo(ctx, entries)
	}

	if s.rabbit != nil {
		s.publishChangeNotifications(ctx, entries)
	}
}

func (s *Store) mirrorToMongo(ctx context.Context, entries []mmodel.LedgerEntry) {
	db, err := s.mongo.DB(ctx)
	if err != nil {
		s.logger.Warnf("metadata_index mirror unavailable: %v", err)
		return
	}

	collection := db.Collection("metadata_index")

	for _, e := range entries {
		var payload map[string]any
		if err := json.Unmarshal([]byte(e.RowJSON), &payload); err != nil {
			s.logger.Warnf("metadata_index mirror: decode row for %s/%s: %v", e.TableName, e.RowID, err)
			continue
		}

		doc := map[string]any{
			"table_name": e.TableName,
			"row_id":     e.RowID,
			"server_seq": e.Seq,
			"row":        payload,
			"mirrored_at": time.Now().UTC(),
		}

		_, err := collection.InsertOne(ctx, doc)
		if err != nil {
			s.logger.Warnf("metadata_index mirror: insert for %s/%s: %v", e.TableName, e.RowID, err)
		}
	}
}

func (s *Store) publishChangeNotifications(ctx context.Context, entries []mmodel.LedgerEntry) {
	channel, err := s.rabbit.Channel()
	if err != nil {
		s.logger.Warnf("sync.changes fanout unavailable: %v", err)
		return
	}

	for _, e := range entries {
		body, err := json.Marshal(map[string]any{
			"server_seq": e.Seq,
			"table":      e.TableName,
			"row_id":     e.RowID,
			"op":         string(e.Op),
		})
		if err != nil {
			continue
		}

		err = channel.PublishWithContext(ctx, s.rabbit.Exchange, "", false, false, amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   e.TS,
		})
		if err != nil {
			s.logger.Warnf("sync.changes publish for seq %d: %v", e.Seq, err)
		}
	}
}
