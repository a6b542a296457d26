// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort: callers log failures but never fail the originating request.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	OrderCreatedTopic       = "order.created"
	OrderStatusChangedTopic = "order.status_changed"
)

// OrderCreatedEvent is emitted once per order produced by a checkout.
type OrderCreatedEvent struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	PharmacyID string    `json:"pharmacy_id"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	EventTime  time.Time `json:"event_time"`
}

// OrderStatusChangedEvent is emitted on every successful status transition.
type OrderStatusChangedEvent struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	PharmacyID string    `json:"pharmacy_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	EventTime  time.Time `json:"event_time"`
}

// Producer publishes order events.
type Producer interface {
	PublishOrderCreated(event OrderCreatedEvent) error
	PublishOrderStatusChanged(event OrderStatusChangedEvent) error
	Close() error
}

// KafkaProducer publishes events through a synchronous Kafka producer.
type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   zerolog.Logger
}

// NewKafkaProducer connects to the given brokers with acks from all replicas
// and bounded retries.
func NewKafkaProducer(brokers []string, logger zerolog.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

// PublishOrderCreated publishes an order.created event keyed by order ID.
func (p *KafkaProducer) PublishOrderCreated(event OrderCreatedEvent) error {
	event.EventTime = time.Now().UTC()
	return p.publish(OrderCreatedTopic, event.OrderID, event)
}

// PublishOrderStatusChanged publishes an order.status_changed event keyed by
// order ID so transitions for one order stay in partition order.
func (p *KafkaProducer) PublishOrderStatusChanged(event OrderStatusChangedEvent) error {
	event.EventTime = time.Now().UTC()
	return p.publish(OrderStatusChangedTopic, event.OrderID, event)
}

func (p *KafkaProducer) publish(topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("failed to publish event")
		return err
	}

	p.logger.Info().
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("key", key).
		Msg("event published")

	return nil
}

// Close shuts down the underlying producer.
func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
