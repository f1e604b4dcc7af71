// Package main is the entry point for the Masterblog API server.
//
// Usage:
//
//	masterblog start           serve the HTTP API
//	masterblog status          check server health
//	masterblog version         print version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/masterblog/masterblog/internal/api"
	"github.com/masterblog/masterblog/internal/blog"
	"github.com/masterblog/masterblog/internal/observability"
	"github.com/masterblog/masterblog/internal/storage"
)

const (
	version = "2.0.0"
	appName = "masterblog"
)

// Config holds the server configuration.
type Config struct {
	DataDir   string
	APIAddr   string
	StoreFile string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "start":
		runStart()
	case "status":
		runStatus()
	case "version":
		fmt.Printf("%s v%s\n", appName, version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s v%s - blog post store with a JSON-file backend

Usage:
  %s <command>

Commands:
  start      Serve the HTTP API
  status     Check server health (requires a running server)
  version    Print version

Environment variables:
  MASTERBLOG_DATA      Data directory (default: ~/.masterblog)
  MASTERBLOG_API_ADDR  API listen address (default: 127.0.0.1:5002)

`, appName, version, appName)
}

func loadConfig() Config {
	dataDir := os.Getenv("MASTERBLOG_DATA")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("cannot determine home directory: %v", err)
		}
		dataDir = filepath.Join(home, ".masterblog")
	}

	cfg := Config{
		DataDir:   dataDir,
		APIAddr:   "127.0.0.1:5002",
		StoreFile: "blog_posts.json",
	}

	// config.json in the data directory, if present, overrides defaults;
	// environment variables win over both.
	if persisted, err := loadPersistedConfig(dataDir); err != nil {
		log.Printf("[config] ignoring unreadable config.json: %v", err)
	} else if persisted != nil {
		if persisted.APIAddr != "" {
			cfg.APIAddr = persisted.APIAddr
		}
		if persisted.StoreFile != "" {
			cfg.StoreFile = persisted.StoreFile
		}
	}

	if addr := os.Getenv("MASTERBLOG_API_ADDR"); addr != "" {
		cfg.APIAddr = addr
	}

	return cfg
}

func runStart() {
	cfg := loadConfig()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	storePath := filepath.Join(cfg.DataDir, cfg.StoreFile)
	fs := storage.NewFileStore(storePath)

	engine, err := blog.NewEngine(fs, observability.NewLogger("blog", nil))
	if err != nil {
		var corrupt *storage.CorruptStoreError
		if errors.As(err, &corrupt) {
			// Serving an empty collection over a corrupt-but-present file
			// would silently lose data; refuse to start instead.
			log.Fatalf("store file %s is corrupt (%v); refusing to serve traffic", corrupt.Path, corrupt.Err)
		}
		log.Fatalf("open store: %v", err)
	}
	log.Printf("[start] store: %s (%d posts)", storePath, engine.Count())

	srv := api.NewServer(engine, observability.NewLogger("api", nil), observability.NewMetricsCollector(0))

	httpSrv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Printf("[start] shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Printf("[start] listening on http://%s", cfg.APIAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
	log.Printf("[start] shutdown complete")
}

func runStatus() {
	cfg := loadConfig()

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://" + cfg.APIAddr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "server not reachable at %s: %v\n", cfg.APIAddr, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var health struct {
		Status     string `json:"status"`
		Uptime     string `json:"uptime"`
		TotalPosts int    `json:"totalPosts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Fprintf(os.Stderr, "bad health response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("status:     %s\n", health.Status)
	fmt.Printf("uptime:     %s\n", health.Uptime)
	fmt.Printf("totalPosts: %d\n", health.TotalPosts)
}
