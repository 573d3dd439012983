// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awsclients "reviewgate/internal/common/aws"
	"reviewgate/internal/common/camunda"
	"reviewgate/internal/common/config"
	"reviewgate/internal/common/database"
	"reviewgate/internal/common/logger"
	"reviewgate/internal/common/observability"
	"reviewgate/internal/common/ops"
	"reviewgate/internal/directory"
	"reviewgate/internal/events"
	"reviewgate/internal/feedback"
	"reviewgate/internal/funnel"
	"reviewgate/internal/links"
	"reviewgate/internal/mail"
	"reviewgate/internal/models"
	"reviewgate/internal/seed"
	"reviewgate/internal/storage"

	// Public review flow
	sfb "reviewgate/internal/workers/public/submit-feedback"
	srt "reviewgate/internal/workers/public/submit-rating"

	// Operator inbox
	srp "reviewgate/internal/workers/inbox/send-reply"
	tri "reviewgate/internal/workers/inbox/triage-feedback"

	// Notifications and analytics
	sev "reviewgate/internal/workers/analytics/summarize-events"
	fal "reviewgate/internal/workers/notification/feedback-alert"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backend is the opened storage medium plus what ops and shutdown need.
type backend struct {
	store storage.Store
	ping  ops.Check
	close func() error
}

func openStorage(ctx context.Context, cfg config.StorageConfig, zapLog *zap.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb := database.NewRedis(cfg.Redis)
		err := retryWithBackoff(func() error { return rdb.Ping(ctx) }, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return &backend{store: storage.NewRedisStore(rdb.Client), ping: rdb.Ping, close: rdb.Close}, nil

	case config.BackendPostgres:
		pg, err := database.NewPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		err = retryWithBackoff(func() error { return pg.Ping(ctx) }, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		store, err := storage.NewPostgresStore(pg.DB, cfg.Postgres.Table)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return &backend{store: store, ping: pg.Ping, close: pg.Close}, nil

	default:
		return &backend{
			store: storage.NewMemoryStore(),
			ping:  func(context.Context) error { return nil },
			close: func() error { return nil },
		}, nil
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("storage", cfg.Storage.Backend),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	be, err := openStorage(ctx, cfg.Storage, zapLog)
	if err != nil {
		zapLog.Fatal("storage failed after retries", zap.Error(err))
	}
	defer be.close()
	zapLog.Info("Storage ready", zap.String("backend", be.store.Backend()))

	parts := storage.NewPartitions(be.store, cfg.Storage.KeyPrefix, log)

	seeds, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		zapLog.Fatal("seed load failed", zap.Error(err))
	}

	checks := map[string]ops.Check{"storage": be.ping}

	// --- Optional Elasticsearch event index ---
	var sink events.Sink
	if cfg.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sink = events.NewElasticSink(es, cfg.Elasticsearch.Index)
		checks["elasticsearch"] = es.Ping
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- AWS delivery channels ---
	awsCfg := cfg.Integrations.AWS
	var (
		sesClient awsclients.SESAPI
		snsClient awsclients.SNSAPI
	)
	if awsCfg.SES.Enabled {
		c, err := awsclients.NewSESClient(ctx, awsCfg.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sesClient = c
	}
	if awsCfg.SNS.Enabled {
		c, err := awsclients.NewSNSClient(ctx, awsCfg.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		snsClient = c
	}

	// --- Engine ---
	dir := directory.New(parts, seeds.BusinessList(time.Now().UTC()), log)
	registry := links.New(parts, func() []models.LinkEntry { return seeds.LinkList(time.Now().UTC()) }, log)
	recorder := events.NewRecorder(parts, sink, log)

	engineOpts := []feedback.Option{feedback.WithTracer(obs.Tracer())}
	if sesClient != nil {
		engineOpts = append(engineOpts, feedback.WithMailer(mail.NewSESMailer(sesClient, awsCfg.SES.FromEmail, log)))
	}
	engine := feedback.NewEngine(parts, recorder, cfg.Feedback, log, engineOpts...)
	deletes := feedback.NewDeleteScheduler(engine, cfg.Feedback.UndoWindowDuration(), log)
	flow := funnel.New(dir, recorder, engine, log)
	alerter := mail.NewAlerter(sesClient, snsClient, mail.AlertConfig{
		FromEmail:     awsCfg.SES.FromEmail,
		SMSSenderID:   awsCfg.SNS.DefaultSMSSenderID,
		AlertTopicARN: awsCfg.SNS.AlertTopicARN,
	}, log)

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda), log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")
		checks["zeebe"] = zeebe.HealthCheck

		timeout := func(taskType string) time.Duration {
			return config.GetDuration(cfg.Workers[taskType].Timeout)
		}
		handlers := map[string]camunda.JobHandler{
			srt.TaskType: srt.NewHandler(&srt.Config{Timeout: timeout(srt.TaskType)}, flow, log),
			sfb.TaskType: sfb.NewHandler(&sfb.Config{Timeout: timeout(sfb.TaskType)}, flow, log),
			tri.TaskType: tri.NewHandler(&tri.Config{Timeout: timeout(tri.TaskType)}, engine, deletes, log),
			srp.TaskType: srp.NewHandler(&srp.Config{
				Timeout:        timeout(srp.TaskType),
				ResolveOnReply: cfg.Feedback.ResolveOnReply,
			}, engine, log),
			fal.TaskType: fal.NewHandler(&fal.Config{Timeout: timeout(fal.TaskType)}, engine, dir, alerter, log),
			sev.TaskType: sev.NewHandler(&sev.Config{
				Timeout: timeout(sev.TaskType),
				Window:  time.Duration(cfg.Feedback.SummaryWindow) * 24 * time.Hour,
			}, recorder, registry, log),
		}
		for taskType, handler := range handlers {
			if w := camunda.NewWorker(zeebe.Zeebe(), taskType, cfg.Workers[taskType], handler, obs, log); w != nil {
				workers = append(workers, w)
			}
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("Camunda disabled, running without job workers")
	}

	// --- Health & Metrics Server ---
	if err := ops.Serve(ctx, cfg.Server.Address, ops.NewRouter(cfg.App.Version, checks), log); err != nil {
		zapLog.Error("Health/Metrics server failed", zap.Error(err))
	}

	// --- Graceful Shutdown ---
	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := deletes.Flush(shutdownCtx); err != nil {
		zapLog.Error("Pending deletes not flushed", zap.Error(err))
	}

	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}
