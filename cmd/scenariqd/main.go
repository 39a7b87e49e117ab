// Command scenariqd is the hosted scenariq service.
// It serves the case and run REST API backed by Postgres and blob storage.
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/scenariq/scenariq/internal/api"
	"github.com/scenariq/scenariq/internal/runs"
	"github.com/scenariq/scenariq/internal/store"
)

type config struct {
	Port        string
	DatabaseURL string
	APIKey      string
	Parallelism int

	StorageBackend string // local, s3, gcs
	LocalPath      string
	Bucket         string
	S3Region       string
	S3Endpoint     string
}

func loadConfig() config {
	parallelism, err := strconv.Atoi(envOrDefault("EVAL_PARALLELISM", "4"))
	if err != nil || parallelism < 1 {
		parallelism = 4
	}
	return config{
		Port:           envOrDefault("PORT", "8080"),
		DatabaseURL:    envOrDefault("DATABASE_URL", "postgres://localhost:5432/scenariq?sslmode=disable"),
		APIKey:         os.Getenv("API_KEY"),
		Parallelism:    parallelism,
		StorageBackend: envOrDefault("STORAGE_BACKEND", "local"),
		LocalPath:      envOrDefault("LOCAL_STORAGE_PATH", "/tmp/scenariq-data"),
		Bucket:         os.Getenv("STORAGE_BUCKET"),
		S3Region:       os.Getenv("AWS_REGION"),
		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
	}
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("configure storage: %v", err)
	}

	storeSvc := store.NewService(db)
	runSvc := runs.NewService(storeSvc, storage, cfg.Parallelism)

	handler := api.NewHandler(db, storeSvc, runSvc)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.CORS(api.APIKeyAuth(cfg.APIKey)(mux)),
	}

	go func() {
		log.Printf("starting scenariqd on :%s (storage=%s)", cfg.Port, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func buildStorage(ctx context.Context, cfg config) (runs.StorageClient, error) {
	switch cfg.StorageBackend {
	case "s3":
		return runs.NewS3Storage(ctx, runs.S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	case "gcs":
		return runs.NewGCSStorage(ctx, cfg.Bucket)
	default:
		return runs.NewLocalStorage(cfg.LocalPath), nil
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
