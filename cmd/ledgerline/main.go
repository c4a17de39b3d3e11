package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/ledgerline/internal/app"
	"github.com/ledgerline/ledgerline/internal/cashcount"
	"github.com/ledgerline/ledgerline/internal/ledgers"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/platform/cache"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/posting"
	"github.com/ledgerline/ledgerline/internal/reports"
	"github.com/ledgerline/ledgerline/internal/shares"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	ledgerRepo := ledgers.NewRepository(dbpool)
	ledgerService := ledgers.NewService(ledgerRepo)
	ledgerHandler := ledgers.NewHandler(logger, ledgerService)

	reportRepo := reports.NewRepository(dbpool)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reportRepo)
	reportService.SetCache(reportCache)
	reportHandler := reports.NewHandler(logger, reportService)

	postingRepo := posting.NewRepository(dbpool)
	postingService := posting.NewService(postingRepo, ledgerService)
	postingService.SetReportInvalidator(reportCache)
	postingService.SetMetrics(metrics)
	postingService.SetLogger(logger)
	postingHandler := posting.NewHandler(logger, postingService)

	shareRepo := shares.NewRepository(dbpool)
	shareService := shares.NewService(shareRepo)
	shareService.SetMetrics(metrics)
	shareHandler := shares.NewHandler(logger, shareService)

	cashCountRepo := cashcount.NewRepository(dbpool)
	cashCountService := cashcount.NewService(cashCountRepo)
	cashCountHandler := cashcount.NewHandler(logger, cashCountService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		LedgersHandler:   ledgerHandler,
		PostingHandler:   postingHandler,
		ReportsHandler:   reportHandler,
		SharesHandler:    shareHandler,
		CashCountHandler: cashCountHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
