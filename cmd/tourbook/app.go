package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/app/commands"
	assignmentsapp "tourbook/internal/app/handlers/assignments"
	bookingapp "tourbook/internal/app/handlers/booking"
	"tourbook/internal/app/middleware"
	appoutbox "tourbook/internal/app/outbox"
	"tourbook/internal/app/policies"
	"tourbook/internal/app/queries"
	"tourbook/internal/infra/broadcast"
	"tourbook/internal/infra/broker/kafka"
	catalogclient "tourbook/internal/infra/catalog"
	"tourbook/internal/infra/config"
	mongostore "tourbook/internal/infra/db/mongo"
	ginserver "tourbook/internal/infra/http/gin"
	"tourbook/internal/infra/inbox"
	infraoutbox "tourbook/internal/infra/outbox"
	"tourbook/internal/infra/storage/memory"
)

type application struct {
	handlers   ginserver.Handlers
	ready      func(ctx context.Context) error
	background []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

// outboxQueue is an outbox the command side writes to and the worker drains.
type outboxQueue interface {
	appoutbox.Outbox
	infraoutbox.Queue
}

type stores struct {
	bookings    policies.Bookings
	assignments memory.GuideEdges
	current     policies.Assignments
	idempotency middleware.IdempotencyStore
	outbox      outboxQueue
	inbox       inbox.Deduper
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{ready: func(context.Context) error { return nil }}

	st, err := app.buildStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	cat, err := buildCatalog(ctx, cfg, st.assignments, logger)
	if err != nil {
		return nil, err
	}

	bus := broadcast.New(logger)
	app.closers = append(app.closers, func(context.Context) error { return bus.Close() })

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.SubmitBookingCommand{}.Key(), &bookingapp.SubmitBookingHandler{
		Catalog:     cat,
		Bookings:    st.bookings,
		Invalidator: bus,
		Outbox:      st.outbox,
		Encoder:     encoder,
		Logger:      logger,
	})
	commands.RegisterHandler(commandBus, assignmentsapp.SaveAssignmentsCommand{}.Key(), &assignmentsapp.SaveAssignmentsHandler{
		Assignments: st.current,
		Invalidator: bus,
		Outbox:      st.outbox,
		Encoder:     encoder,
		Logger:      logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetPackageContextQuery{}.Key(), &bookingapp.GetPackageContextHandler{Catalog: cat})
	queries.RegisterHandler(queryBus, bookingapp.GetHotelRoomsQuery{}.Key(), &bookingapp.GetHotelRoomsHandler{Catalog: cat})
	queries.RegisterHandler(queryBus, bookingapp.QuotePriceQuery{}.Key(), &bookingapp.QuotePriceHandler{Catalog: cat})

	logger.Debug("buses wired", "commands", commandBus.Keys(), "queries", queryBus.Keys())

	commandsWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(st.idempotency, nil),
		middleware.OutboxFlush(st.outbox),
	)
	queriesWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
	)

	app.handlers = ginserver.Handlers{
		Booking:     ginserver.BookingHandler{Commands: commandsWithMiddleware, Queries: queriesWithMiddleware},
		Assignments: ginserver.AssignmentsHandler{Commands: commandsWithMiddleware},
		Events:      ginserver.EventsHandler{Subscriber: bus},
	}

	if err := app.wireEvents(cfg, st, bus, logger); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *application) buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.StoreMode != config.ModeMongo {
		assignments := memory.NewAssignmentStore()
		return stores{
			bookings:    memory.NewBookingStore(),
			assignments: assignments,
			current:     assignments,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			outbox:      memory.NewOutbox(),
			inbox:       inbox.NewMemory(4096),
		}, nil
	}

	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, fmt.Errorf("connect mongo: %w", err)
	}
	a.ready = client.Ping
	a.closers = append(a.closers, client.Close)
	logger.Info("mongo stores enabled", "database", cfg.MongoDB)

	bookings := mongostore.NewBookingStore(client.DB)
	assignments := mongostore.NewAssignmentStore(client.DB)
	idempotency := mongostore.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
	box := infraoutbox.NewStore(client.DB)
	seen := inbox.NewStore(client.DB, instanceID(cfg), 7*24*time.Hour)

	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mongostore.EnsureIndexes(idxCtx, bookings, assignments, idempotency, box, seen); err != nil {
		_ = client.Close(context.Background())
		return stores{}, err
	}

	return stores{
		bookings:    bookings,
		assignments: assignments,
		current:     assignments,
		idempotency: idempotency,
		outbox:      box,
		inbox:       seen,
	}, nil
}

func buildCatalog(ctx context.Context, cfg config.Config, edges memory.GuideEdges, logger *slog.Logger) (policies.Catalog, error) {
	if cfg.CatalogMode == config.ModeHTTP {
		logger.Info("remote catalog enabled", "url", cfg.CatalogURL)
		return &catalogclient.HTTPClient{
			BaseURL: cfg.CatalogURL,
			Client:  &http.Client{Timeout: cfg.CatalogTimeout},
			Logger:  logger,
		}, nil
	}
	cat := memory.NewCatalog(edges)
	path := cfg.CatalogFixtures
	if path == "" {
		path = defaultCatalogFixturesPath()
	}
	if err := cat.LoadFile(ctx, path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("catalog fixtures file not found, starting empty", "path", path)
			return cat, nil
		}
		return nil, fmt.Errorf("load catalog fixtures: %w", err)
	}
	logger.Info("catalog fixtures loaded", "path", path)
	return cat, nil
}

// wireEvents starts the outbox worker and, with Kafka configured, the
// consumer that turns events from every instance into local signals.
func (a *application) wireEvents(cfg config.Config, st stores, bus *broadcast.Broadcaster, logger *slog.Logger) error {
	worker := &infraoutbox.Worker{
		Store:       st.outbox,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	if !cfg.KafkaEnabled() {
		worker.Producer = infraoutbox.LogProducer{Logger: logger}
		a.background = append(a.background, worker.Run)
		return nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, "tourbook", nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
	worker.Producer = producer
	a.background = append(a.background, worker.Run)

	// every instance needs every event, so each one gets its own group
	groupID := instanceID(cfg)
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, groupID, nil, kafka.InvalidationHandler{
		Inbox:       st.inbox,
		Invalidator: bus,
		Logger:      logger,
	}, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
	topics := kafka.Topics(cfg.KafkaTopicPrefix)
	a.background = append(a.background, func(ctx context.Context) error {
		return consumer.Run(ctx, topics)
	})
	logger.Info("kafka enabled", "brokers", cfg.KafkaBrokers, "group", groupID, "topics", topics)
	return nil
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

var processID = uuid.NewString()[:8]

func instanceID(cfg config.Config) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = processID
	}
	return cfg.KafkaGroupID + "-" + host
}

func defaultCatalogFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "catalog.json"),
		filepath.Join("..", "..", "data", "catalog.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
