// Package main is the Kaiwa CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/config"
	"github.com/hyperjump/kaiwa/internal/discussion"
	"github.com/hyperjump/kaiwa/internal/embedding"
	"github.com/hyperjump/kaiwa/internal/extract"
	"github.com/hyperjump/kaiwa/internal/ingest"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/retrieval"
	"github.com/hyperjump/kaiwa/internal/router"
	"github.com/hyperjump/kaiwa/internal/server"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/internal/vector"
	"github.com/hyperjump/kaiwa/internal/watcher"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kaiwa/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "index":
		runIndex()
	case "ask":
		runAsk()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kaiwa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Vector indices are in-memory; rebuild them from stored documents.
	if err := components.Ingestor.RebuildIndices(context.Background()); err != nil {
		logger.Warn("index rebuild failed", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		ing := components.Ingestor
		watchSvc = watcher.NewWatcher(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Ingestor,
		components.Storage,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa index [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	doc, err := components.Ingestor.IngestFile(context.Background(), path)
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document indexed successfully: %s\n", doc.ID)
}

// askResponse is the subset of the process-message response the CLI prints.
type askResponse struct {
	Response       string  `json:"response"`
	Confidence     float64 `json:"confidence"`
	IsFinalSummary bool    `json:"is_final_summary"`
	DocumentError  bool    `json:"document_error"`
	RouterFallback bool    `json:"router_fallback"`
	Error          string  `json:"error"`
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	docID := fs.String("doc", "", "document id (required)")
	agentID := fs.Int("agent", 1, "agent id")
	style := fs.String("style", "analytical", "thinking style: critical, analytical, creative, practical")
	single := fs.Bool("single", false, "force single-agent mode (skip routing)")
	podcast := fs.Bool("podcast", false, "generate a podcast script instead of an answer")
	_ = fs.Parse(os.Args[2:])

	if *docID == "" || fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa ask --doc <document-id> [flags] <message>")
		os.Exit(1)
	}
	message := strings.TrimSpace(strings.Join(fs.Args(), " "))

	body, _ := json.Marshal(map[string]interface{}{
		"document_id":      *docID,
		"message":          message,
		"agent_id":         *agentID,
		"agent_model_type": *style,
		"is_single_agent":  *single,
		"is_podcast_mode":  *podcast,
	})
	resp, err := http.Post(*serverURL+"/api/process-message", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Decode response: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Turn failed (%d): %s\n", resp.StatusCode, out.Error)
		os.Exit(1)
	}
	fmt.Println(out.Response)
	if out.RouterFallback {
		fmt.Fprintln(os.Stderr, "(router fallback: answered by agent 1)")
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/documents/"+docID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Printf("Delete failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status struct {
		Documents int64 `json:"documents"`
		Chunks    int64 `json:"chunks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Decode response: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("documents: %d\n", status.Documents)
	fmt.Printf("chunks:    %d\n", status.Chunks)
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	Generator    llm.Generator
	Ingestor     *ingest.Ingestor
	Orchestrator *discussion.Orchestrator
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.NewOllamaEmbedder(embedding.OllamaConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		CacheSize:  cfg.Embedding.CacheSize,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	gen, err := llm.NewOllamaGenerator(
		cfg.LLM.BaseURL,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		llm.WithLogger(logger),
		llm.WithMaxRetries(cfg.LLM.MaxRetries),
	)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	ret := retrieval.NewService(store, embedder, vector.NewStore(), &cfg.Retrieval,
		retrieval.WithLogger(logger))
	ing := ingest.NewIngestor(store, ret, extract.NewExtractor(),
		ingest.WithLogger(logger))
	planner := router.NewRouter(gen, cfg.LLM.RouterModel,
		router.WithLogger(logger))
	orch := discussion.NewOrchestrator(store, ret, planner, gen,
		discussion.Config{
			Model:           cfg.LLM.Model,
			HistoryWindow:   cfg.Discussion.HistoryWindow,
			MaxContextChars: cfg.Retrieval.MaxContextChars,
		},
		discussion.WithLogger(logger))

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		Generator:    gen,
		Ingestor:     ing,
		Orchestrator: orch,
	}, nil
}

func printUsage() {
	fmt.Println(`kaiwa - document-grounded multi-agent discussion engine

Usage:
  kaiwa server [flags]            Start the HTTP server
  kaiwa index [flags] <file>      Ingest and index a document
  kaiwa ask [flags] <message>     Ask the agents about a document
  kaiwa delete [flags] <id>       Delete a document
  kaiwa status [flags]            Show document/chunk counts
  kaiwa version                   Show version
  kaiwa help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kaiwa/config.yaml)
  --debug            Enable debug logging

Index Flags:
  --config string    Config file path

Ask Flags:
  --server string    Server URL (default: http://localhost:8080)
  --doc string       Document id (required)
  --agent int        Agent id (default: 1)
  --style string     Thinking style: critical, analytical, creative, practical
  --single           Force single-agent mode (skip routing)
  --podcast          Generate a podcast script instead of an answer

Examples:
  kaiwa server
  kaiwa index report.pdf
  kaiwa ask --doc 4f2c... "Summarize the document."
  kaiwa ask --doc 4f2c... "Agent 1 and Agent 2 discuss the findings."
  kaiwa ask --doc 4f2c... --podcast "The report's key themes"
  kaiwa status`)
}
