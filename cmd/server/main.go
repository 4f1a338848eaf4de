package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receiptgen/backend/internal/config"
	"receiptgen/backend/internal/httpapi"
	"receiptgen/backend/internal/service"
	"receiptgen/backend/internal/store"
	"receiptgen/backend/internal/store/memory"
	pgstore "receiptgen/backend/internal/store/postgres"
	redisstore "receiptgen/backend/internal/store/redis"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var gateway store.Gateway
	closers := make([]func() error, 0, 1)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		gateway = pg
		closers = append(closers, pg.Close)
		log.Println("gateway: postgres")
	case cfg.RedisAddr != "":
		rd := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rd.Ping(ctx); err != nil {
			log.Fatalf("redis unavailable (%v) and REDIS_ADDR is set; refusing to start with in-memory fallback", err)
		}
		gateway = rd
		closers = append(closers, rd.Close)
		log.Println("gateway: redis")
	default:
		gateway = memory.New()
		log.Println("gateway: in-memory (drafts are lost on restart)")
	}

	svc := service.New(gateway)
	auth, err := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, cfg.OperatorUsername, cfg.OperatorPassword)
	if err != nil {
		log.Fatalf("auth setup: %v", err)
	}
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("invoice backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if len(cfg.OperatorPassword) < 8 {
		return fmt.Errorf("OPERATOR_PASSWORD must be set and at least 8 characters")
	}
	return nil
}
