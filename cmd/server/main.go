package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/usawrapco-spec/usawrapco-sub005/internal/catalog"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/config"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/db"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/migrations"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/seed"
	"github.com/usawrapco-spec/usawrapco-sub005/internal/store"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	store   store.JobStore
	catalog *catalog.Catalog
	writer  *store.SnapshotWriter
}

func main() {
	cfg := config.Load()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, closeStore, err := openStore(ctx, cfg, cat)
	if err != nil {
		log.Fatalf("failed to open job store: %v", err)
	}
	defer closeStore()

	srv := &server{
		store:   jobs,
		catalog: cat,
		writer:  store.NewSnapshotWriter(jobs, cfg.SnapshotDebounce),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Print("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown http server: %v", err)
	}
	if err := srv.writer.Flush(shutdownCtx); err != nil {
		log.Printf("flush pending snapshots: %v", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/catalog", s.handleCatalog)
	r.Post("/quote/calc", s.handleQuoteCalc)
	r.Get("/api/defaults", s.handleDefaultsGet)
	r.Put("/api/defaults", s.handleDefaultsUpdate)
	r.Get("/api/jobs", s.handleJobsList)
	r.Post("/api/jobs", s.handleJobCreate)
	r.Get("/api/jobs/{id}", s.handleJobDetail)
	r.Put("/api/jobs/{id}/inputs", s.handleJobInputsUpdate)
	r.Get("/api/jobs/{id}/quote.xlsx", s.handleJobExcel)
	r.Get("/api/jobs/{id}/quote.pdf", s.handleJobPDF)
	return r
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// openStore returns the configured job store with its schema migrated. Dev
// environments are also seeded.
func openStore(ctx context.Context, cfg config.Config, cat *catalog.Catalog) (store.JobStore, func(), error) {
	if cfg.UsePostgres() {
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB := stdlib.OpenDBFromPool(pool)
		closeAll := func() {
			_ = sqlDB.Close()
			pool.Close()
		}

		if err := prepareDatabase(sqlDB, migrations.PostgresDialect, cfg, cat); err != nil {
			closeAll()
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), closeAll, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = database.Close() }

	if err := prepareDatabase(database, migrations.SQLiteDialect, cfg, cat); err != nil {
		closeDB()
		return nil, nil, err
	}
	return store.NewSQLiteStore(database), closeDB, nil
}

func prepareDatabase(database *sql.DB, dialect string, cfg config.Config, cat *catalog.Catalog) error {
	if err := migrations.Up(database, dialect); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	if !cfg.IsDev() {
		return nil
	}

	stats, err := seed.Run(database, seed.Config{Dialect: dialect, Presets: cat})
	if err != nil {
		return fmt.Errorf("run startup seed: %w", err)
	}
	log.Printf("seed complete: inserts=%d updates=%d", stats.Inserts, stats.Updates)
	return nil
}
