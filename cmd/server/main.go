package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository/slotstore"
	"github.com/fastygo/taskboard/usecase"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	reportUC "github.com/fastygo/taskboard/usecase/report"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopSignals := manager.Listen(cancel)
	defer stopSignals()

	backend, err := storage.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	manager.RegisterCloser("storage", backend)

	store := slotstore.New(backend, cfg.Storage.Prefix, zapLogger)
	if err := store.Initialize(appCtx); err != nil {
		zapLogger.Fatal("failed to initialize store", zap.Error(err))
	}

	mon := monitor.New(backend, cfg.Storage.Driver, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	audit := logger.NewAuditSink(zapLogger)
	bus := usecase.NewEventBus(zapLogger)
	activity := services.NewActivity(100, zapLogger)
	bus.SubscribeAll(activity.Handle)

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		zapLogger.Warn("unknown locale, falling back to Spanish", zap.String("locale", cfg.Locale))
		locale = language.Spanish
	}

	authUseCase := authUC.New(store.Users(), store.Sessions(), audit, zapLogger)
	taskUseCase := taskUC.New(store.Tasks(), authUseCase, bus, audit, zapLogger).WithLocale(locale)
	reportUseCase := reportUC.New(store.Reports(), authUseCase, audit, zapLogger)

	var reporter *services.OverdueReporter
	if cfg.Reporter.Enabled {
		reporter, err = services.NewOverdueReporter(store.Reports(), zapLogger, services.ReporterConfig{
			Interval: cfg.Reporter.Interval,
		})
		if err != nil {
			zapLogger.Fatal("failed to schedule reporter", zap.Error(err))
		}
		reporter.Start()
		manager.Register("overdue_reporter", func(ctx context.Context) error {
			reporter.Stop(ctx)
			return nil
		})
	}

	tokens := middleware.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	var summaries apiHandler.OverdueSummaries
	if reporter != nil {
		summaries = reporter
	}

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, tokens, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Report: apiHandler.NewReportHandler(reportUseCase, taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, activity, summaries, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(tokens, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
