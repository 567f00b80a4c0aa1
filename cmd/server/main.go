package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"cfq/wod-board/internal/api"
	"cfq/wod-board/internal/cache"
	"cfq/wod-board/internal/config"
	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/logging"
	"cfq/wod-board/internal/metrics"
	"cfq/wod-board/internal/ranking"
	"cfq/wod-board/internal/ratelimit"
	"cfq/wod-board/internal/repository/driver"
	"cfq/wod-board/internal/service"
	"cfq/wod-board/internal/session"
	"cfq/wod-board/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// @title WOD Board API
// @version 1.0
// @description Daily workouts, scores and leaderboards of a CrossFit box.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infof("starting wod board, driver %s, address %s", cfg.Database.Driver, cfg.Server.Address)

	loc, err := cfg.Gym.Location()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// --- Store ---
	store, closeStore, err := driver.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("could not open store: %s", err)
	}

	// --- Sessions ---
	var (
		revocations session.RevocationStore
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("could not reach redis at %s: %s", cfg.Redis.Addr, err)
		}
		cancel()
		revocations = session.NewRedisStore(redisClient)
		log.Infof("token revocations stored in redis at %s", cfg.Redis.Addr)
	}

	metricsRegistry := metrics.NewRegistry()
	metricsManager := metrics.NewManager("wodboard", "server", metricsRegistry)

	sessions := session.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration, revocations)
	unsubscribe := sessions.Subscribe(func(e session.Event) {
		metricsManager.CounterSessions.WithLabelValues(string(e.Kind)).Inc()
		log.WithFields(log.Fields{
			"event":   e.Kind,
			"user_id": e.Identity.UserID,
			"role":    e.Identity.Role,
		}).Info("session event")
	})
	defer unsubscribe()

	// --- Exports ---
	var files storage.FileStorage
	if cfg.S3.BucketName != "" {
		if files, err = storage.NewS3Storage(ctx, cfg.S3); err != nil {
			log.Fatalf("could not initialize S3 storage: %s", err)
		}
	} else {
		log.Info("s3.bucket_name is empty, leaderboard exports disabled")
	}

	// --- Services ---
	boards := cache.NewLeaderboard(cfg.Cache.SizeMB, cfg.Cache.TTL)
	engine := ranking.NewEngine(levelPriority(cfg.Gym.LevelPriority))

	authService := service.NewAuthService(store.Users, sessions)
	wodService := service.NewWodService(store.Workouts, boards, metricsManager, loc)
	scoreService := service.NewScoreService(store.Scores, store.Workouts, boards, metricsManager, loc)
	leaderboardService := service.NewLeaderboardService(service.LeaderboardDeps{
		Scores:   store.Scores,
		Workouts: store.Workouts,
		Engine:   engine,
		Cache:    boards,
		Files:    files,
		Expiry:   cfg.S3.PresignExpiry,
		Metrics:  metricsManager,
		Location: loc,
	})
	recordService := service.NewPersonalRecordService(store.PersonalRecords)

	loginLimiter := ratelimit.New(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst)
	writeLimiter := ratelimit.New(cfg.RateLimit.WriteRPS, cfg.RateLimit.WriteBurst)

	// --- HTTP ---
	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.Deps{
		Sessions:           sessions,
		AuthService:        authService,
		WodService:         wodService,
		ScoreService:       scoreService,
		LeaderboardService: leaderboardService,
		RecordService:      recordService,
		Metrics:            metricsManager,
		Gatherer:           metricsRegistry,
		LoginLimiter:       loginLimiter,
		WriteLimiter:       writeLimiter,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	shutdownErr := server.Shutdown(ctxShutdown)
	loginLimiter.Stop()
	writeLimiter.Stop()
	shutdownErr = multierr.Append(shutdownErr, closeStore())
	if redisClient != nil {
		shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	}
	if shutdownErr != nil {
		log.Errorf("unclean shutdown: %s", shutdownErr)
	}

	log.Info("server exiting")
}

func levelPriority(names []string) []domain.Level {
	if len(names) == 0 {
		return domain.LevelPriority
	}
	levels := make([]domain.Level, len(names))
	for i, n := range names {
		levels[i] = domain.Level(n)
	}
	return levels
}
