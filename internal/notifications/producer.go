package notifications

import (
	"context"
	"fmt"
	"time"

	"aerolink/internal/shared/config"
	"aerolink/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes notifications for the mailer workers
type Producer interface {
	Publish(ctx context.Context, notification *EmailNotification) error
	Close() error
}

type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaProducerConfig(cfg config.KafkaConfig) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          cfg.Brokers,
		Topic:            cfg.NotificationTopic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

func (c *KafkaProducerConfig) saramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = c.RequiredAcks
	sc.Producer.Compression = c.CompressionType
	sc.Producer.Retry.Max = c.RetryMax
	sc.Producer.Timeout = c.Timeout
	sc.Producer.Idempotent = c.IdempotentWrites
	sc.Producer.MaxMessageBytes = c.MaxMessageBytes
	if c.IdempotentWrites {
		sc.Net.MaxOpenRequests = 1
	}
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	return sc
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaProducer(cfg *KafkaProducerConfig, log *logger.Logger) (*KafkaProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	log.Info("kafka notification producer created", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return newKafkaProducer(producer, cfg.Topic, log), nil
}

func newKafkaProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaProducer {
	return &KafkaProducer{producer: producer, topic: topic, log: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, notification *EmailNotification) error {
	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	p.log.DebugWithContext(ctx, "notification published", map[string]interface{}{
		"topic":     p.topic,
		"partition": partition,
		"offset":    offset,
		"type":      notification.Type,
	})
	return nil
}

func createHeaders(n *EmailNotification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(n.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(n.Type)},
		{Key: []byte("priority"), Value: []byte(n.Priority)},
		{Key: []byte("recipient_id"), Value: []byte(n.RecipientID.String())},
		{Key: []byte("producer"), Value: []byte("aerolink-notifications")},
		{Key: []byte("created_at"), Value: []byte(n.CreatedAt.Format(time.RFC3339))},
	}
	if n.BookingReference != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_reference"),
			Value: []byte(n.BookingReference),
		})
	}
	if n.ExpiresAt != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("expires_at"),
			Value: []byte(n.ExpiresAt.Format(time.RFC3339)),
		})
	}
	return headers
}

func (p *KafkaProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	p.log.Info("kafka notification producer closed")
	return nil
}
