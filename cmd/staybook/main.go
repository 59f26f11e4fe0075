package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staybook/internal/app/commands"
	accommodationapp "staybook/internal/app/handlers/accommodations"
	commentapp "staybook/internal/app/handlers/comments"
	reservationapp "staybook/internal/app/handlers/reservations"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domaincomments "staybook/internal/domain/comments"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	redisclient "staybook/internal/infra/cache/redis"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	producer     *kafka.Producer
	mongo        *mongodb.Client
	ready        func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func() error { return nil }}

	var (
		uowFactory        uow.UoWFactory
		accommodationRepo domainaccommodations.Repository
		reservationRepo   domainreservations.Repository
		commentRepo       domaincomments.Repository
		userRepo          domainuser.Repository
		idempotencyStore  middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		app.mongo = client
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		accommodationRepo = mongodb.NewAccommodationRepository(client.DB)
		reservationRepo = mongodb.NewReservationRepository(client.DB)
		commentRepo = mongodb.NewCommentRepository(client.DB)
		userRepo = mongodb.NewUserRepository(client.DB)
		idempotencyStore = mongodb.NewIdempotencyStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:                 client.DB,
			AccommodationsRepo: accommodationRepo,
			ReservationsRepo:   reservationRepo,
			CommentsRepo:       commentRepo,
			UsersRepo:          userRepo,
		}
	default:
		accommodationRepo = memory.NewAccommodationRepository()
		reservationRepo = memory.NewReservationRepository()
		commentRepo = memory.NewCommentRepository()
		userRepo = memory.NewUserRepository()
		idempotencyStore = memory.NewIdempotencyStore()
		uowFactory = memory.Factory{
			AccommodationsRepo: accommodationRepo,
			ReservationsRepo:   reservationRepo,
			CommentsRepo:       commentRepo,
			UsersRepo:          userRepo,
		}
	}

	outboxStore := memory.NewOutbox()

	var ratingCache policies.RatingCache = policies.NoopRatingCache{}
	if cfg.RedisAddr != "" {
		ratingCache = redisclient.NewRatingCache(
			redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
			cfg.RatingCacheTTL,
		)
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	createHandler := &reservationapp.CreateReservationHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
	}
	createHandler.Register(commandBus)
	transitionHandler := &reservationapp.TransitionHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
	}
	transitionHandler.Register(commandBus)
	(&reservationapp.ListHandler{UoWFactory: uowFactory}).Register(queryBus)

	submitHandler := &commentapp.SubmitCommentHandler{
		UoWFactory: uowFactory,
		Ratings:    ratingCache,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
	}
	submitHandler.Register(commandBus)
	respondHandler := &commentapp.RespondCommentHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
	}
	respondHandler.Register(commandBus)
	(&commentapp.AverageRatingHandler{UoWFactory: uowFactory, Ratings: ratingCache, Logger: logger}).Register(queryBus)
	(&commentapp.ListHandler{UoWFactory: uowFactory}).Register(queryBus)

	hostHandler := &accommodationapp.HostHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
	}
	hostHandler.Register(commandBus)
	(&accommodationapp.SearchHandler{UoWFactory: uowFactory, Logger: logger}).Register(queryBus)
	(&accommodationapp.GetHandler{UoWFactory: uowFactory}).Register(queryBus)

	// OutboxFlush wraps Transaction so events are released only after the
	// unit of work committed; a failed commit must not feed the publisher.
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idempotencyStore, nil, replayableErrors()...),
		middleware.OutboxFlush(outboxStore),
		middleware.Transaction(uowFactory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Users:      userRepo,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		app.producer = producer
		app.outboxWorker = &infraoutbox.Worker{
			Source:      outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Logger:      logger,
		}
	} else {
		logger.Warn("kafka brokers not configured, domain events stay in the outbox")
	}

	accommodationHandler := ginserver.AccommodationHandler{
		Commands: commandBusWithMiddleware,
		Queries:  queryBusWithMiddleware,
		Logger:   logger,
	}
	app.handlers = ginserver.Handlers{
		Auth:          ginserver.AuthHandler{Service: authService, Logger: logger},
		Accommodation: accommodationHandler,
		Host:          accommodationHandler,
		Reservation: ginserver.ReservationHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Comment: ginserver.CommentHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	return app, nil
}

// replayableErrors lists the sentinels a recorded command failure may carry,
// so an idempotent retry maps to the same HTTP status as the first attempt.
func replayableErrors() []error {
	return []error{
		daterange.ErrInvalidRange,
		domainreservations.ErrNotFound,
		domainreservations.ErrInvalidGuests,
		domainreservations.ErrCapacityExceeded,
		domainreservations.ErrDateRangeConflict,
		domainreservations.ErrInvalidTransition,
		domainreservations.ErrCheckInPast,
		domainaccommodations.ErrNotFound,
		domainuser.ErrNotFound,
	}
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.mongo != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.mongo.DB.Client().Disconnect(disconnectCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
}
