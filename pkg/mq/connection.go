package mq

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "inbox.events"

	dialAttempts = 5
	dialBackoff  = time.Second
	heartbeat    = 10 * time.Second
)

// NewConnection dials RabbitMQ, retrying a few times with linear backoff so
// that a broker still starting up does not kill the process.
func NewConnection(url string) (*amqp091.Connection, error) {
	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(connectionName())

	var lastErr error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err := amqp091.DialConfig(url, amqp091.Config{
			Heartbeat:  heartbeat,
			Locale:     "en_US",
			Properties: props,
		})
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt < dialAttempts {
			time.Sleep(time.Duration(attempt) * dialBackoff)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", dialAttempts, lastErr)
}

// connectionName shows up in the management UI, e.g. "server@host".
func connectionName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return filepath.Base(os.Args[0]) + "@" + host
}

// DeclareExchange declares the durable topic exchange all events go through.
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil)
}
