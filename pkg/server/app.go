package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, optional Kafka
// ingest consumer and optional daily scheduler, with graceful shutdown.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	handler     xhttp.Handler
	store       domrepo.BarStore
	publisher   domrepo.AlertPublisher
	consumer    *pkgkafka.Consumer
	barsHandler *usecase.BarsIngestHandler
	sched       *scheduler.Scheduler

	httpServer *xhttp.Server
}

// New creates a new App instance. consumer and sched may be nil when the
// corresponding feature is disabled in config.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store domrepo.BarStore,
	publisher domrepo.AlertPublisher,
	consumer *pkgkafka.Consumer,
	barsHandler *usecase.BarsIngestHandler,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		handler:     handler,
		store:       store,
		publisher:   publisher,
		consumer:    consumer,
		barsHandler: barsHandler,
		sched:       sched,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.consumer != nil && a.barsHandler != nil {
		a.consumer.RegisterHandler(a.barsHandler)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.String("topic", a.barsHandler.Topic()))
	}

	if a.sched != nil {
		a.sched.Start(ctx)
		a.l.Info("scheduler started",
			applogger.String("run_at", a.cfg.Scheduler.RunAt),
			applogger.String("timezone", a.cfg.Scheduler.Timezone),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops all services in reverse start order.
func (a *App) shutdown(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// closes the Kafka producer and disconnects WebSocket subscribers
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if err := a.store.Close(); err != nil {
		a.l.Warn("bar store close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
