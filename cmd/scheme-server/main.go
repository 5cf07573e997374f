// cmd/scheme-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"scheme-advisor/internal/advisor"
	"scheme-advisor/internal/api"
	"scheme-advisor/internal/cache"
	"scheme-advisor/internal/common/camunda"
	"scheme-advisor/internal/common/config"
	"scheme-advisor/internal/common/database"
	"scheme-advisor/internal/common/logger"
	"scheme-advisor/internal/common/metrics"
	"scheme-advisor/internal/common/observability"
	"scheme-advisor/internal/engine/catalog"
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/engine/search"
	filterschemes "scheme-advisor/internal/workers/schemes/filter-schemes"
	interpretquery "scheme-advisor/internal/workers/schemes/interpret-query"
	rankcategory "scheme-advisor/internal/workers/schemes/rank-category"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.Warn(fmt.Sprintf("%s failed, retrying", operationName),
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("nextRetryIn", delay),
		)
		time.Sleep(delay)
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("failed to load config", zap.Error(err))
	}

	zapLog, err := logger.Build(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		zapLog.Warn("logging output unavailable, using stderr", zap.Error(err))
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("scheme-server")
	defer obs.Shutdown()

	ctx := context.Background()
	var readiness []func(context.Context) error

	// --- Catalog ---
	var loader catalog.Loader = catalog.FileLoader{
		SchemesPath:   cfg.Catalog.SchemesPath,
		ProvidersPath: cfg.Catalog.ProvidersPath,
	}
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("PostgreSQL unavailable", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("Connected to PostgreSQL")
		loader = catalog.PostgresLoader{DB: pg.DB}
		readiness = append(readiness, pg.Ping)
	}

	var cat *catalog.Catalog
	err = retryWithBackoff(func() error {
		var err error
		cat, err = catalog.Build(ctx, loader, log)
		return err
	}, 3, time.Second, zapLog, "catalog load")
	if err != nil {
		zapLog.Fatal("catalog unavailable", zap.Error(err))
	}
	metrics.CatalogSchemes.Set(float64(cat.Len()))
	zapLog.Info("Catalog loaded", zap.Int("schemes", cat.Len()), zap.String("source", loader.Name()))

	// --- Search backend ---
	opts := query.Options{
		QueryLimit:     cfg.Engine.QueryLimit,
		DataQueryLimit: cfg.Engine.DataQueryLimit,
		Observability:  obs,
	}
	if cfg.Engine.SearchBackend == config.SearchBackendElasticsearch {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("failed to create Elasticsearch client", zap.Error(err))
		}
		err = retryWithBackoff(func() error { return es.Ping(ctx) }, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("Elasticsearch unavailable", zap.Error(err))
		}

		idx := search.NewElasticIndex(es.Client, cfg.Engine.SearchIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("failed to create search index", zap.Error(err))
		}
		if err := idx.IndexCatalog(ctx, cat.All()); err != nil {
			zapLog.Fatal("failed to index catalog", zap.Error(err))
		}
		opts.Index = idx
		readiness = append(readiness, es.Ping)
		zapLog.Info("Catalog indexed", zap.String("index", cfg.Engine.SearchIndex))
	}

	engine := query.NewEngine(cat, opts, log)

	// --- Response cache ---
	var responses *cache.Cache
	if cfg.Cache.Enabled {
		rc := database.NewRedis(cfg.Database.Redis)
		err := retryWithBackoff(func() error { return rc.Ping(ctx) }, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			// the cache is optional; serve uncached rather than fail
			zapLog.Warn("Redis unavailable, response cache disabled", zap.Error(err))
			rc.Close()
		} else {
			defer rc.Close()
			responses = cache.New(rc.Client, config.GetDuration(cfg.Cache.TTL), cfg.Cache.KeyPrefix, log)
			zapLog.Info("Connected to Redis")
		}
	}

	deps := api.Dependencies{Engine: engine, Cache: responses}
	if cfg.APIs.GenAI.Configured() {
		deps.Advisor = advisor.New(cfg.APIs.GenAI, engine, log)
		zapLog.Info("Advisor enabled", zap.String("model", cfg.APIs.GenAI.Model))
	} else {
		zapLog.Warn("Advisor disabled: no language model configured")
	}
	deps.Ready = func(ctx context.Context) error {
		for _, check := range readiness {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	// --- Job workers ---
	var (
		zeebeClient zbc.Client
		jobWorkers  []worker.JobWorker
	)
	if cfg.Camunda.Enabled {
		zeebeClient, err = camunda.Connect(ctx, camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		}, log)
		if err != nil {
			zapLog.Fatal("Zeebe unavailable", zap.Error(err))
		}

		start := func(taskType string, handler camunda.HandlerFunc) {
			if jw := camunda.StartWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler, log); jw != nil {
				jobWorkers = append(jobWorkers, jw)
			}
		}

		fsCfg := filterschemes.LoadConfig()
		if t := config.GetWorkerConfig(cfg, filterschemes.TaskType).Timeout; t > 0 {
			fsCfg.Timeout = config.GetDuration(t)
		}
		start(filterschemes.TaskType, filterschemes.NewHandler(fsCfg, engine, log).Handle)

		rcCfg := rankcategory.LoadConfig()
		if t := config.GetWorkerConfig(cfg, rankcategory.TaskType).Timeout; t > 0 {
			rcCfg.Timeout = config.GetDuration(t)
		}
		start(rankcategory.TaskType, rankcategory.NewHandler(rcCfg, engine, log).Handle)

		iqCfg := interpretquery.LoadConfig()
		if t := config.GetWorkerConfig(cfg, interpretquery.TaskType).Timeout; t > 0 {
			iqCfg.Timeout = config.GetDuration(t)
		}
		start(interpretquery.TaskType, interpretquery.NewHandler(iqCfg, engine, log).Handle)

		zapLog.Info("Job workers registered", zap.Int("count", len(jobWorkers)))
	}

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(deps, cfg.Server, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Scheme server stopped gracefully")
}
