// Package mmongo is a thin connection hub for the MongoDB-backed metadata
// index that mirrors committed rows of the replicated tables (see
// SPEC_FULL.md §3 "Ambient persistence split").
package mmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// Connection is a hub dealing with a single MongoDB client.
type Connection struct {
	URI      string
	Database string
	Logger   mlog.Logger

	client    *mongo.Client
	Connected bool
}

// Connect dials MongoDB and verifies connectivity with a ping.
func (c *Connection) Connect(ctx context.Context) error {
	c.Logger.Info("connecting to mongodb...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	c.client = client
	c.Connected = true

	c.Logger.Info("connected to mongodb")

	return nil
}

// DB returns the metadata-index database handle, connecting lazily.
func (c *Connection) DB(ctx context.Context) (*mongo.Database, error) {
	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client.Database(c.Database), nil
}
