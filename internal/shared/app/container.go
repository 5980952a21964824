// Package app builds every long-lived dependency once at startup and hands
// them to the HTTP layer explicitly.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aerolink/internal/auth"
	"aerolink/internal/bookings"
	"aerolink/internal/flights"
	"aerolink/internal/handoff"
	"aerolink/internal/notifications"
	"aerolink/internal/seats"
	"aerolink/internal/shared/config"
	"aerolink/internal/shared/database"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"
	"aerolink/pkg/logger"
	"aerolink/pkg/ratelimit"
)

// Container owns the connections, background workers and module controllers
type Container struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *database.DB
	Cache  cache.Service

	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *ratelimit.RateLimiter
	// Notifier is nil when no delivery channel could be built
	Notifier *notifications.Service

	Auth     *auth.Controller
	Flights  *flights.Controller
	Seats    *seats.Controller
	Bookings *bookings.Controller
}

// New connects to the stores, migrates the schema and wires every module
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db.PostgreSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  cache.NewService(db.Redis, log),
	}

	if cfg.RateLimit.Enabled {
		c.RateLimiter = ratelimit.NewRateLimiter(db.Redis, cfg.RateLimit)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.RateLimiter.Preload(ctx); err != nil {
			// loaded on first use instead
			log.Warn("failed to preload rate limit script", "error", err)
		}
		cancel()
	}

	notifier, err := notifications.NewService(cfg, log)
	if err != nil {
		log.Error("notification service unavailable, emails will not be sent", "error", err)
	} else {
		c.Notifier = notifier
	}

	if err := c.wireModules(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wireModules() error {
	cfg := c.Config

	authRepo := auth.NewRepository(c.DB.PostgreSQL)
	authService := auth.NewService(authRepo, cfg.JWT, verificationSender(cfg, c.Notifier), c.Log)
	c.Auth = auth.NewController(authService, c.Log)

	flightRepo := flights.NewRepository(c.DB.PostgreSQL)
	flightService := flights.NewService(flightRepo, c.Cache, flights.NewSearchGuard(), c.Log)
	c.Flights = flights.NewController(flightService)

	seatRepo := seats.NewRepository(c.DB.PostgreSQL)
	seatService := seats.NewService(seatRepo, c.Cache, cfg.Booking, c.Log)
	c.Seats = seats.NewController(seatService)

	store, err := handoff.NewStore(c.Cache, cfg.Redis.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to build hand-off store: %w", err)
	}

	deps := bookings.Deps{
		Repo:       bookings.NewRepository(c.DB.PostgreSQL, seatRepo, flightRepo),
		Flights:    flightService,
		Seats:      seatService,
		Handoffs:   store,
		Gateway:    wizard.NewSimulatedGateway(cfg.Booking.PaymentSimulationDelay),
		Notifier:   confirmationSender(c.Notifier),
		Cache:      c.Cache,
		Config:     cfg.Booking,
		HandoffTTL: cfg.Redis.SessionTTL,
		Log:        c.Log,
	}
	c.Bookings = bookings.NewController(bookings.NewService(deps), c.Log)
	return nil
}

// Start launches the notification workers, if any
func (c *Container) Start(ctx context.Context) {
	if c.Notifier != nil {
		c.Notifier.Start(ctx)
	}
}

// Close stops the workers and closes the connections
func (c *Container) Close() error {
	var errs []error
	if c.Notifier != nil {
		if err := c.Notifier.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop notifications: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// verificationSender returns nil when mail would only reach the log, so
// signup verifies new accounts immediately.
func verificationSender(cfg *config.Config, notifier *notifications.Service) auth.VerificationSender {
	if notifier == nil || (cfg.Email.SMTPHost == "" && !cfg.Kafka.Enabled) {
		return nil
	}
	return notifier
}

// confirmationSender keeps a missing notifier a nil interface
func confirmationSender(notifier *notifications.Service) bookings.ConfirmationSender {
	if notifier == nil {
		return nil
	}
	return notifier
}
