package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bktutor/session-portal/internal/api"
	"github.com/bktutor/session-portal/internal/auth"
	"github.com/bktutor/session-portal/internal/config"
	"github.com/bktutor/session-portal/internal/db"
	redisclient "github.com/bktutor/session-portal/internal/redis"
	"github.com/bktutor/session-portal/internal/scheduling"
)

const version = "1.2.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routerCfg := api.RouterConfig{
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, 0),
		Env:          cfg.Env,
		Version:      version,
		RateLimitRPS: cfg.RateLimitRPS,
	}

	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		log.Println("connected to Postgres")

		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")

		routerCfg.PgPool = pgPool
		routerCfg.Redis = rdb
		routerCfg.Service = scheduling.NewService(
			scheduling.NewPgRepository(pgPool),
			redisclient.NewBookingLocker(rdb, cfg.BookingLockTTL),
		)
	} else {
		if cfg.Env != "dev" {
			log.Fatal("POSTGRES_DSN is required outside dev")
		}
		log.Println("POSTGRES_DSN not set, using in-memory store")
		routerCfg.Service = scheduling.NewService(
			scheduling.NewMemoryRepository(),
			redisclient.NopLocker{},
		)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-rootCtx.Done():
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
