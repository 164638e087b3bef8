// Command server runs the prism metric query API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"prism/internal/api"
	"prism/internal/catalog"
	"prism/internal/config"
	"prism/internal/engine"
	"prism/internal/history"
	"prism/internal/service/compile"
	"prism/internal/service/query"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	registry, err := catalog.LoadDirectory(cfg.ExploresDir)
	if err != nil {
		return fmt.Errorf("load explores: %w", err)
	}
	logger.Info("explores loaded", "dir", cfg.ExploresDir, "count", len(registry.Names()))

	duck, err := sql.Open("duckdb", cfg.DuckDBPath)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer duck.Close()

	if !cfg.IsProduction() {
		if err := seedDemoData(duck); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	histDB, err := history.OpenSQLite(cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer histDB.Close()

	queries := query.NewService(
		registry,
		engine.NewDuckDBRunner(duck, logger),
		history.NewStore(histDB),
		compile.Options{DefaultLimit: cfg.DefaultRowLimit, MaxLimit: cfg.MaxRowLimit},
		logger,
	)

	handler := api.NewHandler(queries, logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// seedDemoData populates the warehouse with a small orders table matching
// the sample explore. Skips when the table already exists.
func seedDemoData(db *sql.DB) error {
	var exists bool
	err := db.QueryRow(`SELECT COUNT(*) > 0 FROM information_schema.tables WHERE table_name = 'orders'`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check orders table: %w", err)
	}
	if exists {
		return nil
	}

	statements := []string{
		`CREATE TABLE orders (
			order_id INTEGER,
			status VARCHAR,
			customer_name VARCHAR,
			amount DOUBLE,
			created_at TIMESTAMP
		)`,
		`INSERT INTO orders VALUES
			(1, 'complete', 'Ada',    1250.50, '2026-08-01 10:00:00'),
			(2, 'complete', 'Grace',  980.00,  '2026-08-03 12:30:00'),
			(3, 'pending',  'Ada',    430.25,  '2026-08-10 09:15:00'),
			(4, 'shipped',  'Linus',  2100.75, '2026-08-15 16:45:00'),
			(5, 'complete', 'Grace',  310.00,  '2026-08-20 11:05:00'),
			(6, 'cancelled','Linus',  75.99,   '2026-08-25 14:20:00')`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
	}
	return nil
}
