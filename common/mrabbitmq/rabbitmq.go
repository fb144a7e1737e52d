// Package mrabbitmq is a thin connection hub for the RabbitMQ fanout
// exchange that relays committed change_log rows to ambient consumers
// (see SPEC_FULL.md §4.C) — it is never consulted by the sync protocol
// itself.
package mrabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// Connection is a hub dealing with a single RabbitMQ connection/channel.
type Connection struct {
	URI      string
	Exchange string
	Logger   mlog.Logger

	conn      *amqp.Connection
	channel   *amqp.Channel
	Connected bool
}

// Connect dials RabbitMQ, opens a channel, and declares the fanout
// exchange used to relay change_log events.
func (c *Connection) Connect() error {
	c.Logger.Info("connecting to rabbitmq...")

	conn, err := amqp.Dial(c.URI)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = ch
	c.Connected = true

	c.Logger.Info("connected to rabbitmq")

	return nil
}

// Channel returns the open channel, connecting lazily if necessary.
func (c *Connection) Channel() (*amqp.Channel, error) {
	if !c.Connected {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return c.channel, nil
}

// Close tears down the channel and connection.
func (c *Connection) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn != nil {
		_ = c.conn.Close()
	}
}
