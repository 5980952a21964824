package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"aerolink/internal/shared/config"
	"aerolink/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig(cfg config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              cfg.Brokers,
		GroupID:              cfg.ConsumerGroup,
		Topics:               []string{cfg.NotificationTopic},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// KafkaConsumer runs mailer workers in a consumer group
type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler *consumerGroupHandler
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewKafkaConsumer(cfg *ConsumerConfig, email EmailService, log *logger.Logger) (*KafkaConsumer, error) {
	sc := sarama.NewConfig()
	sc.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	sc.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	sc.Consumer.MaxProcessingTime = cfg.MaxProcessingTime
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = time.Second
	if cfg.OffsetOldest {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		group:   group,
		config:  cfg,
		handler: newConsumerGroupHandler(email, cfg.MaxRetries, cfg.RetryBackoffDuration, log),
		log:     log,
	}, nil
}

// Start launches the workers. They stop when ctx is cancelled.
func (c *KafkaConsumer) Start(ctx context.Context, workers int) {
	c.log.Info("starting notification consumers", "workers", workers, "topics", c.config.Topics)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.ErrorWithContext(ctx, "consumer group error", err, nil)
		}
	}()

	for i := 0; i < workers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *KafkaConsumer) runWorker(ctx context.Context, workerID int) {
	for {
		if err := c.group.Consume(ctx, c.config.Topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.ErrorWithContext(ctx, "consume failed", err, map[string]interface{}{"worker": workerID})
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *KafkaConsumer) Stop() error {
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("notification consumers stopped")
	return nil
}

type consumerGroupHandler struct {
	email      EmailService
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func newConsumerGroupHandler(email EmailService, maxRetries int, backoff time.Duration, log *logger.Logger) *consumerGroupHandler {
	return &consumerGroupHandler{email: email, maxRetries: maxRetries, backoff: backoff, log: log}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message.Value); err != nil {
				h.log.ErrorWithContext(session.Context(), "notification dropped", err, map[string]interface{}{
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			// Failed deliveries are marked too; retries already happened in processMessage.
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, payload []byte) error {
	var n EmailNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	if n.IsExpired() {
		h.log.DebugWithContext(ctx, "notification expired", map[string]interface{}{"id": n.ID.String()})
		return nil
	}

	n.Status = NotificationStatusSending
	if err := h.executeWithRetry(ctx, &n); err != nil {
		n.MarkFailed(err)
		return err
	}
	n.MarkSent()
	return nil
}

func (h *consumerGroupHandler) executeWithRetry(ctx context.Context, n *EmailNotification) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = h.email.Send(ctx, n); err == nil {
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		n.RetryCount++
		n.Status = NotificationStatusRetrying
		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
