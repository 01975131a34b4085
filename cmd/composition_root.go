package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "patternfactory/internal/adapters/in/http"
	kafkaout "patternfactory/internal/adapters/out/kafka"
	"patternfactory/internal/adapters/out/memory"
	"patternfactory/internal/adapters/out/postgres"
	"patternfactory/internal/adapters/out/postgres/orderrepo"
	"patternfactory/internal/core/application/usecases/commands"
	"patternfactory/internal/core/application/usecases/queries"
	"patternfactory/internal/core/domain/model/kernel"
	"patternfactory/internal/core/domain/services"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/jobs"
	"patternfactory/internal/pkg/metrics"
	"patternfactory/internal/pkg/tracing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CompositionRoot struct {
	config  Config
	logger  *slog.Logger
	clock   kernel.Clock
	metrics *metrics.Metrics

	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	reader     ports.OrderReader
	publisher  *kafkaout.Publisher
	tracer     *tracing.Provider

	executor    *commands.Executor
	transitions *services.TransitionService
	claims      *services.ClaimCoordinator
	disputes    *services.DisputeFlow
}

// NewCompositionRoot opens the configured store and builds the shared
// services. Close releases what it opened.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		config:  cfg,
		logger:  logger,
		clock:   kernel.SystemClock{},
		metrics: metrics.New(),
	}

	tracer, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.TracingEnabled(),
	})
	if err != nil {
		return nil, err
	}
	c.tracer = tracer

	if err = c.openStore(); err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	var publisher ports.TransitionPublisher
	if len(cfg.KafkaBrokers) > 0 {
		c.publisher = kafkaout.NewPublisher(kafkaout.NewWriter(kafkaout.Config{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			BatchTimeout: cfg.KafkaBatchTimeout,
		}), c.metrics, logger)
		publisher = c.publisher
	} else {
		logger.Info("no Kafka brokers configured, transition events are not published")
	}

	c.executor = commands.NewExecutor(c.uowFactory, publisher, c.metrics, logger)
	c.transitions = services.NewTransitionService(c.clock)
	c.claims = services.NewClaimCoordinator(c.clock)
	c.disputes = services.NewDisputeFlow(c.clock, c.transitions)
	return c, nil
}

func (c *CompositionRoot) openStore() error {
	switch c.config.Store {
	case StoreMemory:
		store := memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(store)
		c.reader = store.Repository()
		return nil
	case StorePostgres:
		db, err := OpenDatabase(c.config)
		if err != nil {
			return err
		}
		c.gormDB = db
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
		c.reader = orderrepo.NewGormOrderRepository(db, nil)
		return nil
	default:
		return fmt.Errorf("unknown store %q", c.config.Store)
	}
}

// OpenDatabase connects GORM to PostgreSQL with driver errors translated
// into gorm sentinels.
func OpenDatabase(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// GormDB is nil for the memory store.
func (c *CompositionRoot) GormDB() *gorm.DB {
	return c.gormDB
}

func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.executor, c.clock)
}

func (c *CompositionRoot) CreateApplyTriggerCommandHandler() commands.ApplyTriggerCommandHandler {
	return commands.NewApplyTriggerCommandHandler(c.executor, c.transitions, c.claims)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.executor, c.claims)
}

func (c *CompositionRoot) CreateFileDisputeCommandHandler() commands.FileDisputeCommandHandler {
	return commands.NewFileDisputeCommandHandler(c.executor, c.disputes)
}

func (c *CompositionRoot) CreateReinspectOrderCommandHandler() commands.ReinspectOrderCommandHandler {
	return commands.NewReinspectOrderCommandHandler(c.executor, c.disputes)
}

func (c *CompositionRoot) CreateSweepDisputeWindowsCommandHandler() commands.SweepDisputeWindowsCommandHandler {
	return commands.NewSweepDisputeWindowsCommandHandler(c.executor, c.disputes)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetJobBoardQueryHandler() queries.GetJobBoardQueryHandler {
	return queries.NewGetJobBoardQueryHandler(c.reader, services.NewJobBoard(), c.clock)
}

func (c *CompositionRoot) CreateGetOverdueOrdersQueryHandler() queries.GetOverdueOrdersQueryHandler {
	return queries.NewGetOverdueOrdersQueryHandler(c.reader, c.clock)
}

func (c *CompositionRoot) CreateGetSLATableQueryHandler() queries.GetSLATableQueryHandler {
	return queries.NewGetSLATableQueryHandler()
}

// CreateEcho builds the HTTP server with the API, health and metrics routes.
func (c *CompositionRoot) CreateEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(httpin.MetricsMiddleware(c.metrics))

	httpin.RegisterOperational(e, c.metrics)
	httpin.NewServer(httpin.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		ApplyTrigger:     c.CreateApplyTriggerCommandHandler(),
		ClaimOrder:       c.CreateClaimOrderCommandHandler(),
		FileDispute:      c.CreateFileDisputeCommandHandler(),
		Reinspect:        c.CreateReinspectOrderCommandHandler(),
		GetOrder:         c.CreateGetOrderQueryHandler(),
		GetOrderHistory:  c.CreateGetOrderHistoryQueryHandler(),
		GetJobBoard:      c.CreateGetJobBoardQueryHandler(),
		GetOverdueOrders: c.CreateGetOverdueOrdersQueryHandler(),
		GetSLATable:      c.CreateGetSLATableQueryHandler(),
	}).RegisterHandlers(e)
	return e
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewDisputeSweepJob(c.CreateSweepDisputeWindowsCommandHandler(), c.config.DisputeSweepSpec, c.logger),
		jobs.NewSLAMonitorJob(c.CreateGetOverdueOrdersQueryHandler(), c.metrics, c.config.SLAMonitorSpec, c.logger),
	)
}

// Close flushes the publisher and tracer and closes the database pool.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var errList []error
	if c.publisher != nil {
		errList = append(errList, c.publisher.Close())
	}
	errList = append(errList, c.tracer.Shutdown(ctx))
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			errList = append(errList, sqlDB.Close())
		}
	}
	return errors.Join(errList...)
}
