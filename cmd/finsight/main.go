// Package main is the Finsight CLI entry point.
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

	"github.com/finsight/finsight/internal/chunker"
	"github.com/finsight/finsight/internal/cli"
	"github.com/finsight/finsight/internal/cohere"
	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/embedding"
	"github.com/finsight/finsight/internal/extract"
	"github.com/finsight/finsight/internal/ingest"
	"github.com/finsight/finsight/internal/models"
	"github.com/finsight/finsight/internal/server"
	"github.com/finsight/finsight/internal/vector"
	"github.com/finsight/finsight/internal/vectorstore"
	"github.com/finsight/finsight/internal/watcher"
	"github.com/finsight/finsight/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/finsight/config.yaml"

// loadConfig loads config from path. When path is the default, a
// config.yaml in the current directory takes precedence, so running
// "finsight server" from the project dir picks up the project config.
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
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("finsight version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	// .env carries the provider key in development; absence is fine.
	_ = godotenv.Load()

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
		zap.Bool("debug", debugMode),
	)

	store, gate, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedStartupDocuments(ctx, cfg, store, logger)
	preloadTickers(ctx, cfg, gate, logger)

	var watchSvc *watcher.Watcher
	if cfg.Watch.Directory != "" {
		watchSvc = watcher.New(
			cfg.Watch.Directory,
			cfg.Watch.Extensions,
			func(path string) {
				text, err := extract.Text(path)
				if err != nil {
					logger.Warn("watched file extraction failed", zap.String("path", path), zap.Error(err))
					return
				}
				input := models.TextInput(text)
				input.Title = filepath.Base(path)
				if _, err := store.AddDocuments(context.Background(), []models.DocumentInput{input}); err != nil {
					logger.Warn("watched file indexing failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(store, gate, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = srv.Stop(stopCtx)
}

// initializeComponents wires the provider client, vectorstore, and
// ingestion gate from config.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*vectorstore.Vectorstore, *ingest.Gate, error) {
	apiKey := os.Getenv(cfg.Cohere.APIKeyEnv)
	if apiKey == "" {
		return nil, nil, fmt.Errorf("environment variable %s is not set", cfg.Cohere.APIKeyEnv)
	}
	client, err := cohere.NewClient(cohere.Config{
		APIKey:      apiKey,
		BaseURL:     cfg.Cohere.BaseURL,
		EmbedModel:  cfg.Cohere.EmbedModel,
		RerankModel: cfg.Cohere.RerankModel,
		Dimensions:  cfg.Cohere.Dimensions,
		Timeout:     time.Duration(cfg.Cohere.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	embedder := embedding.NewCachingEmbedder(client, 0)

	store := vectorstore.New(
		chunker.New(chunker.WithLogger(logger)),
		embedder,
		client,
		vectorstore.WithLogger(logger),
		vectorstore.WithRetrieveTopK(cfg.Retrieval.RetrieveTopK),
		vectorstore.WithRerankTopK(cfg.Retrieval.RerankTopK),
		vectorstore.WithBatchSize(cfg.Retrieval.BatchSize),
		vectorstore.WithChunkWorkers(cfg.Retrieval.ChunkWorkers),
		vectorstore.WithIndexOptions(func(o *vector.Options) {
			o.M = cfg.Index.M
			o.EFConstruction = cfg.Index.EFConstruction
			o.EFSearch = cfg.Index.EFSearch
		}),
	)

	var sources []ingest.Source
	for _, src := range cfg.Ingest.Sources {
		sources = append(sources, ingest.NewFeedSource(src.Name, src.URL))
	}
	gate := ingest.NewGate(store, sources, ingest.WithLogger(logger))
	return store, gate, nil
}

// seedStartupDocuments indexes the configured seed documents. Seed
// failures are logged and skipped; the server still starts.
func seedStartupDocuments(ctx context.Context, cfg *config.Config, store *vectorstore.Vectorstore, logger *zap.Logger) {
	if len(cfg.Ingest.Seeds) == 0 {
		return
	}
	inputs := make([]models.DocumentInput, 0, len(cfg.Ingest.Seeds))
	for _, seed := range cfg.Ingest.Seeds {
		if seed.URL != "" {
			inputs = append(inputs, models.URLInput(seed.URL, seed.Title))
		} else if seed.Text != "" {
			input := models.TextInput(seed.Text)
			input.Title = seed.Title
			inputs = append(inputs, input)
		}
	}
	if n, err := store.AddDocuments(ctx, inputs); err != nil {
		logger.Warn("seed indexing failed", zap.Error(err))
	} else {
		logger.Info("seed documents indexed", zap.Int("chunks", n))
	}
}

// preloadTickers ingests the configured tickers so first queries for
// them do not pay the ingestion latency.
func preloadTickers(ctx context.Context, cfg *config.Config, gate *ingest.Gate, logger *zap.Logger) {
	for _, ticker := range cfg.Ingest.Preload {
		if err := gate.EnsureIngested(ctx, ticker); err != nil {
			logger.Warn("ticker preload failed", zap.String("ticker", ticker), zap.Error(err))
		}
	}
}

// buildQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryArgsReorder moves flags that appear after the query text to the
// front so flag.Parse sees them. The flag package stops at the first
// non-flag argument.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	ticker := fs.String("ticker", "", "ingest this ticker's sources before retrieving")
	retrieveTopK := fs.Int("retrieve-top-k", 0, "first-stage candidate count (0 = server default)")
	rerankTopK := fs.Int("rerank-top-k", 0, "final result count (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(queryArgsReorder(os.Args[2:]))

	queryStr := buildQuery(fs.Args())
	if queryStr == "" {
		fmt.Println("Usage: finsight query [flags] <query>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	response, err := queryViaHTTP(*serverURL, &models.QueryRequest{
		Query:        queryStr,
		Ticker:       *ticker,
		RetrieveTopK: *retrieveTopK,
		RerankTopK:   *rerankTopK,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQueryResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL string, req *models.QueryRequest) (*models.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: finsight ingest [flags] <ticker>")
		os.Exit(1)
	}
	ticker := fs.Arg(0)

	body, _ := json.Marshal(models.IngestRequest{Ticker: ticker})
	resp, err := http.Post(*serverURL+"/api/v1/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Ingest failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Printf("Ingested: %s\n", strings.ToUpper(strings.TrimSpace(ticker)))
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Chunks        int      `json:"chunks"`
	IndexSize     int      `json:"index_size"`
	IndexCapacity int      `json:"index_capacity"`
	Dimensions    int      `json:"dimensions"`
	Tickers       []string `json:"tickers"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("chunks:          %d   # indexed text chunks\n", status.Chunks)
		fmt.Printf("index_size:      %d   # vectors in the index\n", status.IndexSize)
		fmt.Printf("index_capacity:  %d\n", status.IndexCapacity)
		fmt.Printf("dimensions:      %d\n", status.Dimensions)
		fmt.Printf("tickers:         %s\n", strings.Join(status.Tickers, ", "))
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`finsight - Retrieval engine for financial documents

Usage:
  finsight server [flags]           Start the HTTP server
  finsight query [flags] <query>    Retrieve passages for a query
  finsight ingest [flags] <ticker>  Ingest a ticker's sources
  finsight status [flags]           Show index status
  finsight version                  Show version
  finsight help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/finsight/config.yaml)
  --debug            Enable debug logging

Query Flags:
  --server string          Server URL (default: http://localhost:8080)
  --ticker string          Ingest this ticker's sources before retrieving
  --retrieve-top-k int     First-stage candidate count (0 = server default)
  --rerank-top-k int       Final result count (0 = server default)
  --output string          Output format: text, compact, or json (default: text)

Examples:
  finsight server
  finsight query "how did services revenue trend"
  finsight query --ticker AAPL "latest guidance"
  finsight ingest MSFT
  finsight status --output json`)
}
