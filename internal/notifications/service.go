package notifications

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"aerolink/internal/shared/config"
	"aerolink/pkg/logger"
)

// Service turns domain events into emails. With Kafka enabled they are
// queued for the consumer workers, otherwise they are delivered inline.
type Service struct {
	producer Producer
	consumer *KafkaConsumer
	email    EmailService
	baseURL  string
	workers  int
	log      *logger.Logger
	cancel   context.CancelFunc
}

// NewService wires delivery from configuration. SMTP falls back to a logging
// mailer when no host is configured.
func NewService(cfg *config.Config, log *logger.Logger) (*Service, error) {
	var email EmailService
	if cfg.Email.SMTPHost != "" {
		smtpSvc, err := NewSMTPEmailService(NewSMTPConfig(cfg.Email), log)
		if err != nil {
			return nil, err
		}
		email = smtpSvc
	} else {
		email = NewLogEmailService(log)
	}

	if !cfg.Kafka.Enabled {
		return newService(nil, nil, email, cfg.Email.AppBaseURL, 0, log), nil
	}

	producer, err := NewKafkaProducer(DefaultKafkaProducerConfig(cfg.Kafka), log)
	if err != nil {
		return nil, err
	}
	consumer, err := NewKafkaConsumer(DefaultConsumerConfig(cfg.Kafka), email, log)
	if err != nil {
		producer.Close()
		return nil, err
	}
	return newService(producer, consumer, email, cfg.Email.AppBaseURL, cfg.Kafka.Workers, log), nil
}

func newService(producer Producer, consumer *KafkaConsumer, email EmailService, baseURL string, workers int, log *logger.Logger) *Service {
	return &Service{
		producer: producer,
		consumer: consumer,
		email:    email,
		baseURL:  strings.TrimRight(baseURL, "/"),
		workers:  workers,
		log:      log,
	}
}

// Start runs the consumer workers, if any
func (s *Service) Start(ctx context.Context) {
	if s.consumer == nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.consumer.Start(ctx, s.workers)
}

func (s *Service) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	var firstErr error
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			firstErr = err
		}
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Service) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, url.QueryEscape(msg.Token))

	n := NewNotificationBuilder().
		WithType(NotificationTypeVerifyEmail).
		WithRecipient(msg.UserID, msg.Email, msg.Name).
		WithSubject("Confirm your Aerolink account").
		WithTemplateData(map[string]interface{}{
			"verify_url": verifyURL,
			"expires_at": msg.ExpiresAt.Format(time.RFC1123),
		}).
		WithExpiration(msg.ExpiresAt).
		Build()

	return s.dispatch(ctx, n)
}

func (s *Service) SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error {
	n := NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient(msg.UserID, msg.Email, msg.Name).
		WithSubject(fmt.Sprintf("Booking confirmed: %s", msg.Reference)).
		WithBookingReference(msg.Reference).
		WithTemplateData(map[string]interface{}{
			"reference":      msg.Reference,
			"flight_number":  msg.FlightNumber,
			"route":          msg.Route,
			"departure_time": msg.DepartureTime.Format(time.RFC1123),
			"seats":          strings.Join(msg.Seats, ", "),
			"total":          fmt.Sprintf("%.2f", msg.Total),
			"currency":       msg.Currency,
		}).
		Build()

	return s.dispatch(ctx, n)
}

func (s *Service) dispatch(ctx context.Context, n *EmailNotification) error {
	if s.producer != nil {
		return s.producer.Publish(ctx, n)
	}
	if err := s.email.Send(ctx, n); err != nil {
		n.MarkFailed(err)
		return err
	}
	n.MarkSent()
	return nil
}
