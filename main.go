package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/vote-ledger/cliparse"
	"github.com/danielhkuo/vote-ledger/db"
	"github.com/danielhkuo/vote-ledger/ledger"
	"github.com/danielhkuo/vote-ledger/middleware"
	"github.com/danielhkuo/vote-ledger/router"
)

func main() {
	var err error

	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Build the ledger
	minStake, err := ledger.ParseStake(cfg.MinVoteStake)
	if err != nil {
		slog.Error("invalid minimum stake", "error", err)
		os.Exit(1)
	}
	store := db.NewStore(dbConn, cfg.DatabaseType)
	l := ledger.New(store, ledger.Config{
		MinVoteStake: minStake,
		Draft:        cfg.Draft,
	})

	// Block indexes continue from the last stamped one
	height, err := l.Height(context.Background())
	if err != nil {
		slog.Error("failed to read ledger height", "error", err)
		os.Exit(1)
	}
	clock := ledger.NewSystemClock(height)

	// Create router
	mux := router.NewRouter(store, l, clock, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "height", height, "draft", cfg.Draft)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
