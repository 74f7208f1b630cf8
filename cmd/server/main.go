package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"secureview/internal/cache"
	"secureview/internal/clock"
	"secureview/internal/config"
	"secureview/internal/draft"
	"secureview/internal/logger"
	"secureview/internal/repository"
	"secureview/internal/service"
	"secureview/internal/session"
	"secureview/internal/transport/rest"
	"secureview/internal/transport/ws"
)

const (
	loginAttemptWindow = 15 * time.Minute
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server exited with error", "error", err)
	}
	log.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn("mongo disconnect failed", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("connected to mongo", "db", cfg.MongoDB)

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Warn("ensure indexes failed", "error", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	log.Info("connected to redis", "addr", cfg.RedisAddr)

	drafts, draftCloser, err := draft.Open(cfg, rdb)
	if err != nil {
		return fmt.Errorf("open draft store: %w", err)
	}
	defer func() {
		if err := draftCloser.Close(); err != nil {
			log.Warn("draft store close failed", "error", err)
		}
	}()
	log.Info("draft store ready", "backend", cfg.DraftBackend)

	// Repositories
	userRepo := repository.NewUserRepo(db)
	taskRepo := repository.NewTaskRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)
	insightRepo := repository.NewInsightRepo(db)

	// Caches
	insightCache := cache.NewInsightCache(rdb, cfg.InsightCacheTTL)
	denylist := cache.NewTokenDenylist(rdb)
	attempts := cache.NewLoginAttempts(rdb, loginAttemptWindow)

	// Services
	authSvc := service.NewAuthService(userRepo, denylist, attempts, cfg.JWTSecret, cfg.TokenTTL, log)
	taskSvc := service.NewTaskService(taskRepo, submissionRepo)
	submissionSvc := service.NewSubmissionService(submissionRepo, log)
	insightSvc := service.NewInsightService(insightRepo, insightCache, log)

	manager := session.NewManager(drafts, submissionSvc.SubmitterFor, clock.Real{}, cfg.AutosaveDelay, log)
	sessionSvc := service.NewSessionService(taskSvc, submissionRepo, manager, log)

	hub := ws.NewHub(log)
	sessionSvc.SetBroadcaster(hub)

	router := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		TaskService:    taskSvc,
		SessionService: sessionSvc,
		InsightService: insightSvc,
		WSHub:          hub,
		Log:            log,
		CORSOrigins:    splitOrigins(cfg.CORSOrigins),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// pending edits are flushed to the draft store before the stores close
		if serr := sessionSvc.Shutdown(shutdownCtx); serr != nil {
			log.Warn("session flush on shutdown failed", "error", serr)
		}
		return err
	})

	return g.Wait()
}

// splitOrigins turns CORS_ALLOWED_ORIGINS into a list. "*" or empty allows any origin.
func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		out = append(out, o)
	}
	return out
}
