package config

import (
	"CoachingAPI/database/postgres"
	"CoachingAPI/database/sqlite"
	callHandler "CoachingAPI/internal/api/call/handler"
	callRepository "CoachingAPI/internal/api/call/repository"
	callService "CoachingAPI/internal/api/call/service"
	webhookHandler "CoachingAPI/internal/api/webhook/handler"
	webhookService "CoachingAPI/internal/api/webhook/service"
	"CoachingAPI/internal/middleware"
	"CoachingAPI/pkg/memcache"
	"CoachingAPI/pkg/messaging"
	"CoachingAPI/pkg/metrics"
	"CoachingAPI/pkg/redis"
	"CoachingAPI/pkg/s3"
	"CoachingAPI/pkg/utils"
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine        *fiber.App
	cfg           *Config
	db            *sqlx.DB
	log           *logrus.Logger
	middleware    middleware.Middleware
	validator     *validator.Validate
	utils         utils.IUtils
	handlers      []handler
	redisServer   redis.IRedis
	deliveryStore webhookService.DeliveryStore
	publisher     messaging.Publisher
	s3Client      s3.ItfS3
	metrics       *metrics.Metrics
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if server.db == nil {
		return nil, fmt.Errorf("database is required")
	}

	return server, nil
}

func WithConfig(cfg Config) ServerOption {
	return func(s *Server) error {
		s.cfg = &cfg
		return nil
	}
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be set before database")
		}

		db, err := OpenDatabase(s.cfg.Database)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if s.cfg.Database.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := MigrateDatabase(ctx, s.cfg.Database.Driver, db); err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		s.db = db
		return nil
	}
}

// WithDeliveryStore uses Redis when REDIS_ADDRESS is set and an in-process
// cache otherwise.
func WithDeliveryStore() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.log == nil {
			return fmt.Errorf("config and logger must be set before delivery store")
		}

		if s.cfg.Redis.Address != "" {
			s.redisServer = redis.New(s.log, redis.Options{
				Address:  s.cfg.Redis.Address,
				Password: s.cfg.Redis.Password,
				DB:       s.cfg.Redis.DB,
			})
			s.deliveryStore = s.redisServer
			return nil
		}

		s.log.Info("REDIS_ADDRESS not set, webhook deliveries are deduplicated in memory")
		s.deliveryStore = memcache.New(s.cfg.Webhook.DedupTTL, 10*time.Minute)
		return nil
	}
}

func WithMessaging() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.log == nil {
			return fmt.Errorf("config and logger must be set before messaging")
		}

		if s.cfg.AMQP.URL == "" {
			s.publisher = messaging.NewNoopPublisher(s.log)
			return nil
		}

		publisher, err := messaging.NewAMQPPublisher(s.log, messaging.AMQPConfig{
			URL:      s.cfg.AMQP.URL,
			Exchange: s.cfg.AMQP.Exchange,
		})
		if err != nil {
			s.log.Errorf("Failed to initialize AMQP publisher: %v", err)
			return fmt.Errorf("failed to create AMQP publisher: %w", err)
		}
		s.publisher = publisher
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be set before S3 client")
		}
		if s.cfg.AWS.BucketName == "" {
			return nil
		}

		client, err := s3.New(s3.Options{
			Region:          s.cfg.AWS.Region,
			BucketName:      s.cfg.AWS.BucketName,
			AccessKeyID:     s.cfg.AWS.AccessKeyID,
			SecretAccessKey: s.cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithMetrics() ServerOption {
	return func(s *Server) error {
		s.metrics = metrics.New()
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil || s.cfg == nil {
			return fmt.Errorf("logger and config must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Options{
			RateLimitRPS:   s.cfg.RateLimit.RPS,
			RateLimitBurst: s.cfg.RateLimit.Burst,
			AuthEnabled:    s.cfg.Auth.Enabled,
			Secret:         s.cfg.Auth.SecretKey,
			Metrics:        s.metrics,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	if s.publisher == nil {
		s.publisher = messaging.NewNoopPublisher(s.log)
	}
	if s.deliveryStore == nil {
		s.deliveryStore = memcache.New(s.cfg.Webhook.DedupTTL, 10*time.Minute)
	}
	if s.utils == nil {
		s.utils = utils.New()
	}

	// Calls Domain
	callRepo := callRepository.New(s.db, s.log)
	callServices := callService.NewCallService(s.log, callRepo, s.s3Client, s.storeObserver())
	callHandlers := callHandler.New(s.log, s.validator, s.middleware, callServices)

	// Webhooks
	webhookServices := webhookService.NewWebhookService(
		s.log,
		callServices,
		s.deliveryStore,
		s.publisher,
		s.utils,
		s.cfg.Webhook.DedupTTL,
		s.deliveryObserver(),
	)
	webhookHandlers := webhookHandler.New(s.log, s.validator, s.middleware, webhookServices)

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	if s.metrics != nil {
		s.engine.Use(s.middleware.NewMetricsMiddleware())
	}

	s.setupHealthCheck()
	s.handlers = append(s.handlers, callHandlers, webhookHandlers)

	router := s.engine.Group("/api", s.middleware.NewRateLimiter)
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) storeObserver() callService.StoreObserver {
	if s.metrics == nil {
		return nil
	}
	return s.metrics
}

func (s *Server) deliveryObserver() webhookService.DeliveryObserver {
	if s.metrics == nil {
		return nil
	}
	return s.metrics
}

func (s *Server) Run() error {
	return s.engine.Listen(s.cfg.Addr())
}

// Shutdown stops accepting requests and then releases every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("fiber: %w", err))
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Mosquito Mike Coaching API",
		})
	})

	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(c); err != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Health check failed")
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
			})
		}

		return ctx.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	if s.metrics != nil {
		s.engine.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}),
		))
	}
}

// OpenDatabase connects with the configured driver.
func OpenDatabase(cfg DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case postgres.DriverName:
		return postgres.New(cfg.URL, cfg.MaxOpenConns)
	case sqlite.DriverName:
		return sqlite.New(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func MigrateDatabase(ctx context.Context, driver string, db *sqlx.DB) error {
	switch driver {
	case postgres.DriverName:
		return postgres.Migrate(ctx, db)
	case sqlite.DriverName:
		return sqlite.Migrate(ctx, db)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}
