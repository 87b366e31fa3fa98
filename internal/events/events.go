// Package events publishes notifications about processed files.
//
// The server publishes one FileProcessed event per successfully transformed
// upload. Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// DefaultExchange and DefaultRoutingKey are used when none are configured.
const (
	DefaultExchange   = "reorganizer"
	DefaultRoutingKey = "file.processed"
)

// FileProcessed describes one transformed upload.
type FileProcessed struct {
	CampaignID   string    `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	FileName     string    `json:"file_name"`
	OutputName   string    `json:"output_name"`
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	RulesApplied int       `json:"rules_applied"`
	RulesSkipped int       `json:"rules_skipped"`
	DurationMS   int64     `json:"duration_ms"`
	ClientIP     string    `json:"client_ip,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	PublishFileProcessed(ctx context.Context, e FileProcessed) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishFileProcessed(context.Context, FileProcessed) error { return nil }
func (Nop) Close() error                                              { return nil }

// AMQPPublisher publishes JSON events to a durable topic exchange.
type AMQPPublisher struct {
	conn       *amqp.Connection
	exchange   string
	routingKey string

	mu sync.Mutex
	ch *amqp.Channel
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange, routingKey string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:       conn,
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// PublishFileProcessed sends e as a persistent JSON message.
func (p *AMQPPublisher) PublishFileProcessed(ctx context.Context, e FileProcessed) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.Publish(
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.ProcessedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.routingKey, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
