package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"svitlo-ua/internal/logging"
)

// Exchange and queue/routing key constants.
const (
	ExchangeName = "svitlo"

	RoutingAlarmChange = "alarm.change"

	QueueAlarmChange = "svitlo.alarm_change"

	appID = "svitlo"
)

// ── Message types ────────────────────────────────────────────────────

// AlarmChangeMsg is published by the worker when a region's alarm is raised or cleared.
type AlarmChangeMsg struct {
	EventID    string    `json:"event_id"`
	RegionID   string    `json:"region_id"`
	RegionName string    `json:"region_name"`
	Active     bool      `json:"active"`
	AlertTypes []string  `json:"alert_types"`
	When       time.Time `json:"when"`
}

// ── Topology setup ───────────────────────────────────────────────────

// alarmTTL expires alarm changes the bot has not picked up.
const alarmTTL = time.Hour

// queues maps queue names to their routing keys and declaration args.
var queues = map[string]struct {
	key  string
	args amqp.Table
}{
	QueueAlarmChange: {key: RoutingAlarmChange, args: amqp.Table{"x-message-ttl": int32(alarmTTL / time.Millisecond)}},
}

// SetupTopology declares the exchange, all queues, and bindings.
// Safe to call multiple times (all declarations are idempotent).
func SetupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	for name, q := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, q.args); err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
		if err := ch.QueueBind(name, q.key, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", name, err)
		}
	}
	return nil
}

// session is one connection with one channel and the topology declared on it.
type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// openSession dials, opens a channel and declares the topology. A positive
// prefetch limits unacked deliveries on the channel.
func openSession(url string, prefetch int) (*session, error) {
	conn, err := dialWithRetry(url)
	if err != nil {
		return nil, err
	}
	s := &session{conn: conn}
	if s.ch, err = conn.Channel(); err != nil {
		s.close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := SetupTopology(s.ch); err != nil {
		s.close()
		return nil, err
	}
	if prefetch > 0 {
		if err := s.ch.Qos(prefetch, 0, false); err != nil {
			s.close()
			return nil, fmt.Errorf("set qos: %w", err)
		}
	}
	return s, nil
}

func (s *session) close() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// ── Publisher ────────────────────────────────────────────────────────

// Publisher publishes JSON messages to the svitlo exchange.
type Publisher struct {
	s *session
}

func NewPublisher(url string) (*Publisher, error) {
	s, err := openSession(url, 0)
	if err != nil {
		return nil, err
	}
	return &Publisher{s: s}, nil
}

// Publish serializes msg to JSON and publishes it as a persistent message.
// messageID lets consumers spot redeliveries; it may be empty.
func (p *Publisher) Publish(ctx context.Context, routingKey, messageID string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	err = p.s.ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now().UTC(),
		AppId:        appID,
		Body:         data,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() { p.s.close() }

// ── Consumer ─────────────────────────────────────────────────────────

// Consumer reads deliveries one at a time.
type Consumer struct {
	s *session
}

func NewConsumer(url string) (*Consumer, error) {
	s, err := openSession(url, 1)
	if err != nil {
		return nil, err
	}
	return &Consumer{s: s}, nil
}

// Consume starts consuming from queue with manual acks.
func (c *Consumer) Consume(queue string) (<-chan amqp.Delivery, error) {
	deliveries, err := c.s.ch.Consume(queue, appID+"."+queue, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return deliveries, nil
}

func (c *Consumer) Close() { c.s.close() }

// ── Helpers ──────────────────────────────────────────────────────────

// dialWithRetry attempts to connect to RabbitMQ with exponential backoff.
func dialWithRetry(url string) (*amqp.Connection, error) {
	logger := logging.Component("mq")
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		wait := time.Duration(1<<uint(i)) * time.Second
		logger.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("rabbitmq connection failed")
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("connect to rabbitmq after 5 attempts: %w", err)
}
