package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xetasuite/console/internal/apiclient"
	"github.com/xetasuite/console/internal/app"
	"github.com/xetasuite/console/internal/auth"
	"github.com/xetasuite/console/internal/authz"
	"github.com/xetasuite/console/internal/calendar"
	"github.com/xetasuite/console/internal/observability"
	"github.com/xetasuite/console/internal/platform/cache"
	"github.com/xetasuite/console/internal/shared"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	sessionManager := shared.NewSessionManager(redisClient, "console_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	client, err := apiclient.New(cfg.APIBaseURL, cfg.APICookieName, cfg.APITimeout, logger)
	if err != nil {
		logger.Error("build api client", slog.Any("error", err))
		os.Exit(1)
	}
	authAPI := apiclient.NewAuthAPI(client)
	calendarAPI := apiclient.NewCalendarAPI(client)

	metrics := observability.NewMetrics()

	actorStore := authz.NewStore()
	guard := authz.Middleware{
		Guard:   authz.Guard{Oracle: authz.Oracle{HQSiteID: cfg.HQSiteID}},
		Store:   actorStore,
		Source:  authAPI,
		Logger:  logger,
		Metrics: metrics,
	}

	calendarService := calendar.NewService(calendarAPI, calendarAPI, calendarAPI, metrics, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		APIClient:       client,
		AuthHandler:     auth.NewHandler(logger, authAPI, actorStore, sessionManager),
		CalendarHandler: calendar.NewHandler(logger, calendarService),
		Guard:           guard,
		Routes:          authz.ConsoleRoutes(),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
