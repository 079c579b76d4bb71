package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/milnali/shop-backend/internal/coupons"
	"github.com/milnali/shop-backend/internal/crm"
	"github.com/milnali/shop-backend/internal/health"
	"github.com/milnali/shop-backend/internal/orders"
	"github.com/milnali/shop-backend/internal/payments"
	"github.com/milnali/shop-backend/internal/payments/gateways"
	"github.com/milnali/shop-backend/internal/pricing"
	"github.com/milnali/shop-backend/internal/sweep"
	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/db"
	"github.com/milnali/shop-backend/pkg/enums"
	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/metrics"
	"github.com/milnali/shop-backend/pkg/migrate"
	"github.com/milnali/shop-backend/pkg/redis"
	"github.com/milnali/shop-backend/pkg/retailcrm"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sweep-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "sweep-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sweep-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	runner, err := buildRunner(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire sweep worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	healthServer := &http.Server{
		Addr:              ":" + cfg.App.HealthPort,
		Handler:           health.NewRouter(cfg, logg, dbClient, redisClient),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "health server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down health server", err)
		}
	}()

	logg.Info(ctx, "starting sweep worker")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sweep worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sweep worker shutting down gracefully")
}

// buildRunner wires the repositories, gateway adapters, CRM client and jobs
// into one sweep runner.
func buildRunner(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*sweep.Runner, error) {
	repo := orders.NewRepository(dbClient.DB())

	pricingEngine, err := pricing.NewEngine(&coupons.Calculator{})
	if err != nil {
		return nil, fmt.Errorf("pricing engine: %w", err)
	}
	orderService, err := orders.NewService(dbClient, repo, pricingEngine)
	if err != nil {
		return nil, fmt.Errorf("order service: %w", err)
	}

	registry, err := buildGatewayRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("gateway registry: %w", err)
	}
	reconciler, err := payments.NewReconciler(dbClient, repo, registry, logg)
	if err != nil {
		return nil, fmt.Errorf("payment reconciler: %w", err)
	}

	crmClient, err := retailcrm.NewClient(cfg.RetailCRM, cfg.Sweep.RequestTimeout, cfg.Sweep.MaxRetryAttempts, logg)
	if err != nil {
		return nil, fmt.Errorf("retailcrm client: %w", err)
	}
	crmEngine, err := crm.NewEngine(dbClient, repo, orderService, crmClient, logg)
	if err != nil {
		return nil, fmt.Errorf("crm engine: %w", err)
	}

	sweepMetrics := metrics.NewSweepMetrics(prometheus.DefaultRegisterer)

	paymentJob, err := sweep.NewPaymentStatusJob(sweep.PaymentStatusJobParams{
		Orders:         repo,
		Reconciler:     reconciler,
		Logger:         logg,
		Metrics:        sweepMetrics,
		Window:         cfg.Sweep.PaymentWindow,
		IterationDelay: cfg.Sweep.IterationDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("payment status job: %w", err)
	}
	uploadJob, err := sweep.NewCRMUploadJob(sweep.CRMUploadJobParams{
		Orders:         repo,
		Uploader:       crmEngine,
		Logger:         logg,
		Metrics:        sweepMetrics,
		IterationDelay: cfg.Sweep.IterationDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("crm upload job: %w", err)
	}
	statusJob, err := sweep.NewCRMStatusJob(crmEngine)
	if err != nil {
		return nil, fmt.Errorf("crm status job: %w", err)
	}

	lock, err := sweep.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), 0)
	if err != nil {
		return nil, fmt.Errorf("sweep lock: %w", err)
	}

	return sweep.NewRunner(sweep.RunnerParams{
		Logger:   logg,
		Registry: sweep.NewRegistry(paymentJob, uploadJob, statusJob),
		Lock:     lock,
		Metrics:  sweepMetrics,
		Interval: cfg.Sweep.Interval,
	})
}

func buildGatewayRegistry(cfg *config.Config) (*payments.Registry, error) {
	testMode := !cfg.App.IsProd()
	timeout := cfg.Sweep.RequestTimeout

	alfabank, err := gateways.NewAlfabank(cfg.Alfabank, timeout, testMode)
	if err != nil {
		return nil, err
	}
	registry, err := payments.NewRegistry(alfabank)
	if err != nil {
		return nil, err
	}

	yookassa, err := gateways.NewYookassa(cfg.Yookassa, timeout)
	if err != nil {
		return nil, err
	}
	podeli, err := gateways.NewPodeli(cfg.Podeli, timeout, testMode)
	if err != nil {
		return nil, err
	}
	payselection, err := gateways.NewPayselection(gateways.PayselectionParams{
		Kind:      enums.PaymentKindPayselection,
		BaseURL:   cfg.Payselection.BaseURL,
		SiteID:    cfg.Payselection.SiteID,
		SecretKey: cfg.Payselection.SecretKey,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, err
	}
	payselectionRus, err := gateways.NewPayselection(gateways.PayselectionParams{
		Kind:      enums.PaymentKindPayselectionRu,
		BaseURL:   cfg.PayselectionRus.BaseURL,
		SiteID:    cfg.PayselectionRus.SiteID,
		SecretKey: cfg.PayselectionRus.SecretKey,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, err
	}

	for _, adapter := range []payments.GatewayAdapter{yookassa, podeli, payselection, payselectionRus} {
		if err := registry.Register(adapter); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return "sweep-worker:" + env
}
