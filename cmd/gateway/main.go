package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admission-gateway/internal/config"
	"admission-gateway/internal/repository"
	"admission-gateway/internal/server"
	"admission-gateway/internal/service"
	"admission-gateway/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer store.Close()

	var postgres *storage.Postgres
	if cfg.Postgres.Enabled {
		postgres, err = storage.NewPostgres(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("Connected to Postgres successfully")

		seedAdminUser(cfg, postgres)
	}

	srv, err := server.New(cfg, store, postgres)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Type == "memory" {
		log.Println("Using in-memory request log store; limits are not shared across processes")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewRedis(
		cfg.Redis.GetRedisAddr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to redis successfully")
	return store, nil
}

// seedAdminUser registers the bootstrap operator account when auth is on.
// Registration refuses duplicates, so a restart is a no-op.
func seedAdminUser(cfg *config.Config, postgres *storage.Postgres) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if cfg.Admin.JWTSecret == "" || email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := service.NewAuthService(
		repository.NewUserRepository(postgres),
		cfg.Admin.JWTSecret,
		cfg.Admin.TokenExpiryHours,
	)
	if err := svc.Register(ctx, email, password); err != nil {
		log.Printf("Admin user %s not seeded: %v", email, err)
	}
}
