package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	dataagg "github.com/vetdesk/frontdesk-backend/internal/data/aggregates"
	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	schedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/scheduling"
	syncedrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/synced"
	"github.com/vetdesk/frontdesk-backend/internal/db"
	"github.com/vetdesk/frontdesk-backend/internal/handlers"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
	"github.com/vetdesk/frontdesk-backend/internal/server"
	schedsvc "github.com/vetdesk/frontdesk-backend/internal/services/scheduling"
	syncsvc "github.com/vetdesk/frontdesk-backend/internal/services/sync"
)

// FrontDesk is the scheduling context's composed application: HTTP API,
// outbox dispatcher, and the sync consumer that follows clinic management.
type FrontDesk struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Router     *gin.Engine
	Cfg        Config
	Metrics    *observability.Metrics
	Bus        messaging.Bus
	Dispatcher *messaging.Dispatcher
	Consumer   *syncsvc.Consumer

	otelShutdown func(context.Context) error
}

func NewFrontDesk(log *logger.Logger, cfg Config) (*FrontDesk, error) {
	pg, err := db.New("FRONTDESK_", log)
	if err != nil {
		return nil, fmt.Errorf("init front desk db: %w", err)
	}
	if err := pg.MigrateFrontDesk(); err != nil {
		return nil, fmt.Errorf("front desk migrate: %w", err)
	}
	theDB := pg.DB()

	metrics := observability.NewMetrics()
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "frontdesk",
		Environment: cfg.Environment,
	})

	bus, err := messaging.NewRedisBus(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}

	outbox := outboxrepo.NewRepo(theDB, log)
	schedules := schedrepo.NewScheduleRepo(theDB, log)
	synced := syncedrepo.NewRepo(theDB, log)

	commands := dataagg.NewScheduleAggregate(dataagg.ScheduleAggregateDeps{
		Base: dataagg.BaseDeps{
			DB:    theDB,
			Log:   log,
			Hooks: dataagg.NewMetricsHooks(metrics),
		},
		Schedules: schedules,
		Types:     synced,
		Outbox:    outbox,
	})

	scheduling := schedsvc.New(theDB, log, commands, schedules, synced)
	consumer := syncsvc.NewConsumer(bus, synced, log, metrics)
	dispatcher := messaging.NewDispatcher(bus, outbox, metrics, cfg.OutboxInterval, log)

	scheduleHandler := handlers.NewScheduleHandler(scheduling)
	referenceHandler := handlers.NewReferenceHandler(scheduling)
	metricsHandler := handlers.NewMetricsHandler(metrics)

	router := server.NewFrontDeskRouter(server.FrontDeskRouterConfig{
		ServiceName:      "frontdesk",
		AllowOrigins:     cfg.AllowOrigins,
		Metrics:          metrics,
		ScheduleHandler:  scheduleHandler,
		ReferenceHandler: referenceHandler,
		MetricsHandler:   metricsHandler,
	})

	return &FrontDesk{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Metrics:      metrics,
		Bus:          bus,
		Dispatcher:   dispatcher,
		Consumer:     consumer,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the background loops until ctx is canceled.
func (a *FrontDesk) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Dispatcher.Run(ctx)
	})
	g.Go(func() error {
		return a.Consumer.Run(ctx)
	})
	g.Go(func() error {
		return serveHTTP(ctx, a.Router, a.Cfg.FrontDeskAddr, a.Cfg.ShutdownTimeout, a.Log)
	})
	return g.Wait()
}

func (a *FrontDesk) Close() {
	if a == nil {
		return
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("closing bus", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("shutting down tracing", "error", err)
		}
	}
	a.Log.Sync()
}
