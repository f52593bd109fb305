// Package main implements the boardlint API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/circuitsmith/boardlint/engine/boardgraph"
	"github.com/circuitsmith/boardlint/engine/pipeline"
	"github.com/circuitsmith/boardlint/engine/schema"
	"github.com/circuitsmith/boardlint/engine/store"
	"github.com/circuitsmith/boardlint/pkg/auth"
	"github.com/circuitsmith/boardlint/pkg/config"
	"github.com/circuitsmith/boardlint/pkg/jsonc"
	"github.com/circuitsmith/boardlint/pkg/metrics"
	"github.com/circuitsmith/boardlint/pkg/mid"
	"github.com/circuitsmith/boardlint/pkg/resilience"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfgPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Compile the structural contract ---
	schemaDoc, err := jsonc.LoadFile(cfg.Schema.Path)
	if err != nil {
		return fmt.Errorf("load schema %s: %w", cfg.Schema.Path, err)
	}
	validator, err := schema.Compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	// --- Open submission store ---
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	reg := metrics.New()

	pipe := pipeline.New(pipeline.Deps{
		Schema:  validator,
		Workers: cfg.Rules.Workers,
		Metrics: reg,
		Logger:  logger,
	})

	srvDeps := &server{
		pipeline: pipe,
		store:    st,
		verifier: auth.NewVerifier(cfg.Auth.Secret),
		logger:   logger,
	}

	// --- Optional NATS publisher ---
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
		srvDeps.events = nc
		srvDeps.subject = cfg.NATS.Subject
		logger.Info("event publisher enabled", "subject", cfg.NATS.Subject)
	}

	// --- Optional Neo4j board-graph projection ---
	if cfg.Neo4j.URL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Pass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		srvDeps.exporter = boardgraph.New(driver)
		srvDeps.breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
		logger.Info("board-graph projection enabled", "url", cfg.Neo4j.URL)
	}

	// --- Build HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/netlists", srvDeps.handleValidate)
	mux.HandleFunc("GET /api/netlists", srvDeps.handleList)
	mux.HandleFunc("GET /api/netlists/{id}", srvDeps.handleGet)
	mux.HandleFunc("GET /api/stats", srvDeps.handleStats)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.Server.Origin),
		mid.OTel("boardlint-api"),
		mid.Throttle(cfg.Server.RPS, cfg.Server.Burst),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
