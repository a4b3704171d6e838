package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	cmrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/clinicmgmt"
	outboxrepo "github.com/vetdesk/frontdesk-backend/internal/data/repos/outbox"
	"github.com/vetdesk/frontdesk-backend/internal/db"
	"github.com/vetdesk/frontdesk-backend/internal/handlers"
	"github.com/vetdesk/frontdesk-backend/internal/messaging"
	"github.com/vetdesk/frontdesk-backend/internal/observability"
	"github.com/vetdesk/frontdesk-backend/internal/platform/logger"
	"github.com/vetdesk/frontdesk-backend/internal/server"
	cmsvc "github.com/vetdesk/frontdesk-backend/internal/services/clinicmgmt"
)

// ClinicMgmt is the management context's composed application: master-data
// HTTP API, its own outbox dispatcher, and the listener following front-desk
// schedule events.
type ClinicMgmt struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Router     *gin.Engine
	Cfg        Config
	Metrics    *observability.Metrics
	Bus        messaging.Bus
	Dispatcher *messaging.Dispatcher
	Listener   *cmsvc.Listener

	otelShutdown func(context.Context) error
}

func NewClinicMgmt(log *logger.Logger, cfg Config) (*ClinicMgmt, error) {
	pg, err := db.New("CLINICMGMT_", log)
	if err != nil {
		return nil, fmt.Errorf("init clinic management db: %w", err)
	}
	if err := pg.MigrateClinicManagement(); err != nil {
		return nil, fmt.Errorf("clinic management migrate: %w", err)
	}
	theDB := pg.DB()

	metrics := observability.NewMetrics()
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "clinicmgmt",
		Environment: cfg.Environment,
	})

	bus, err := messaging.NewRedisBus(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}

	outbox := outboxrepo.NewRepo(theDB, log)
	repo := cmrepo.NewRepo(theDB, log)
	service := cmsvc.New(theDB, log, repo, outbox)
	listener := cmsvc.NewListener(bus, log)
	dispatcher := messaging.NewDispatcher(bus, outbox, metrics, cfg.OutboxInterval, log)

	router := server.NewClinicMgmtRouter(server.ClinicMgmtRouterConfig{
		ServiceName:       "clinicmgmt",
		AllowOrigins:      cfg.AllowOrigins,
		Metrics:           metrics,
		ClinicMgmtHandler: handlers.NewClinicMgmtHandler(service),
		MetricsHandler:    handlers.NewMetricsHandler(metrics),
	})

	return &ClinicMgmt{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Metrics:      metrics,
		Bus:          bus,
		Dispatcher:   dispatcher,
		Listener:     listener,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *ClinicMgmt) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Dispatcher.Run(ctx)
	})
	g.Go(func() error {
		return a.Listener.Run(ctx)
	})
	g.Go(func() error {
		return serveHTTP(ctx, a.Router, a.Cfg.ClinicMgmtAddr, a.Cfg.ShutdownTimeout, a.Log)
	})
	return g.Wait()
}

func (a *ClinicMgmt) Close() {
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
