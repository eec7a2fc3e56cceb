package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/field-service/internal/audit"
	"github.com/BruksfildServices01/field-service/internal/config"
	dbpkg "github.com/BruksfildServices01/field-service/internal/db"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/handlers"
	infraRepo "github.com/BruksfildServices01/field-service/internal/infra/repository"
	"github.com/BruksfildServices01/field-service/internal/infra/staging"
	"github.com/BruksfildServices01/field-service/internal/infra/storage"
	"github.com/BruksfildServices01/field-service/internal/jobs"
	"github.com/BruksfildServices01/field-service/internal/logger"
	"github.com/BruksfildServices01/field-service/internal/realtime"
	"github.com/BruksfildServices01/field-service/internal/routes"
	"github.com/BruksfildServices01/field-service/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/field-service/internal/usecase/appointment"
)

func main() {

	cfg := config.Load()
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// 🗄️ DATABASE
	// ======================================================
	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database")
	}

	health := map[string]handlers.Pinger{}

	// ======================================================
	// 🔌 REDIS (only when a backend needs it)
	// ======================================================
	var rdb *redis.Client
	if cfg.RealtimeBackend == config.BackendRedis || cfg.StagingBackend == config.BackendRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()

		health["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// ======================================================
	// 📡 REALTIME
	// ======================================================
	var broker realtime.Broker
	switch cfg.RealtimeBackend {
	case config.BackendRedis:
		broker = realtime.NewRedisBroker(rdb, log)
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DBUrl)
		if err != nil {
			log.WithError(err).Fatal("realtime pool")
		}
		defer pool.Close()
		broker = realtime.NewPostgresBroker(pool, log)
	default:
		log.Warn("realtime backend is in-process; changes stay on this instance")
		broker = realtime.NewLocalBroker()
	}

	channel := realtime.NewChannel(broker, log)
	if err := channel.Start(ctx); err != nil {
		log.WithError(err).Fatal("realtime")
	}

	// ======================================================
	// 📸 EVIDENCE
	// ======================================================
	var buffer domain.StagingBuffer
	if cfg.StagingBackend == config.BackendRedis {
		buffer = staging.NewRedisBuffer(rdb, cfg.StagingTTL)
	} else {
		buffer = staging.NewMemoryBuffer()
	}

	uploader := storage.NewS3Uploader(
		storage.NewS3Client(cfg),
		storage.NewTranscoder(cfg.EvidenceMaxDimension),
		cfg,
	)

	// ======================================================
	// 🧾 AUDIT + DERIVATION
	// ======================================================
	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	reconciler := ucAppointment.NewReconciler(
		appointmentRepo,
		infraRepo.NewAssignmentGormRepository(db),
		channel,
		dispatcher,
		log,
	)

	healer := jobs.NewHealer(channel, appointmentRepo, reconciler, log)
	healer.Start(ctx)
	defer healer.Stop()

	scheduler := jobs.NewScheduler(
		appointmentRepo,
		reconciler,
		log,
		cfg.ReconcileCron,
		timezone.Location(cfg.Timezone),
	)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("invalid RECONCILE_CRON")
	}
	defer scheduler.Stop()

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		DB:         db,
		Config:     cfg,
		Log:        log,
		Channel:    channel,
		Audit:      dispatcher,
		Reconciler: reconciler,
		Staging:    buffer,
		Storage:    uploader,
		Clock:      timezone.ClockIn(cfg.Timezone),
		Health:     health,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	<-ctx.Done()
	shutdown(srv, log)
}

// shutdown drains HTTP first so no request publishes into stopped workers.
// Open websockets are hijacked and end with the process.
func shutdown(srv *http.Server, log logrus.FieldLogger) {
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("forced shutdown")
	}
}
