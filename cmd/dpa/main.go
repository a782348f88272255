// DPA orchestrator server - provides the HTTP/WebSocket API over the
// Document Processing Pipeline, Hybrid Retriever, and QA Orchestrator.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/dpa/pkg/api"
	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/config"
	"github.com/codeready-toolchain/dpa/pkg/database"
	"github.com/codeready-toolchain/dpa/pkg/gateway"
	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/pipeline"
	"github.com/codeready-toolchain/dpa/pkg/progress"
	"github.com/codeready-toolchain/dpa/pkg/qa"
	"github.com/codeready-toolchain/dpa/pkg/retriever"
	"github.com/codeready-toolchain/dpa/pkg/services"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
	"github.com/codeready-toolchain/dpa/pkg/store/graph"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
	"github.com/codeready-toolchain/dpa/pkg/textutil"

	"github.com/gin-gonic/gin"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	configFile := flag.String("config-file",
		getEnv("CONFIG_FILE", ""),
		"Path to a YAML configuration file (optional; built-in defaults otherwise)")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	log.Printf("Starting DPA")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("Connected to PostgreSQL database")

	vectorStore, err := vector.NewQdrantStore(cfg.Vector)
	if err != nil {
		log.Fatalf("Failed to connect to Qdrant: %v", err)
	}
	defer vectorStore.Close()

	blobStore, err := blob.NewMinioStore(ctx, cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	graphStore, err := graph.NewNeo4jStore(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}

	gatewayClient, err := gateway.NewClient(cfg.Gateway.Addr, gateway.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to dial gateway: %v", err)
	}
	defer gatewayClient.Close()

	log.Println("Connected to vector, blob, graph stores and gateway")

	gatewayAdapter := services.NewGatewayAdapter(gatewayClient)
	hybridChunker := chunker.New(gatewayAdapter, textutil.ModelFamilyGeneric)

	documents := services.NewDocumentService(dbClient.Client)
	chunks := services.NewChunkService(dbClient.Client, blobStore, hybridChunker)
	artifacts := services.NewArtifactWriterService(dbClient.Client)
	checkpointer := services.NewBlobCheckpointer(blobStore)
	analyzers := services.NewAnalyzerFactory(hybridChunker, gatewayAdapter, graphStore, checkpointer, artifacts)

	stageExecutor := services.NewStageExecutor(documents, chunks, artifacts, analyzers, vectorStore, gatewayAdapter, cfg.Gateway.EmbeddingModel)

	pipelineStore := services.NewPipelineStore(dbClient.Client)
	progressPersister := services.NewProgressPersister(dbClient.DB(), dbClient.Client)
	progressBus := progress.NewBus(progressPersister)

	notifyListener := progress.NewNotifyListener(database.DSN(cfg.Database), progressBus)
	if err := notifyListener.Start(ctx); err != nil {
		log.Fatalf("Failed to start progress listener: %v", err)
	}
	defer notifyListener.Stop(context.Background())

	runner := pipeline.New(pipelineStore, stageExecutor, progressBus)
	runner.Logger = logger
	runner.StageTimeout = cfg.Queue.StageTimeout

	keywordSearcher := services.NewKeywordSearcherService(dbClient.Client)
	graphSearcher := services.NewGraphSearcherService(dbClient.Client, graphStore, keywordSearcher)
	reranker := services.NewGatewayReranker(gatewayClient)
	hybridRetriever := retriever.New(vectorStore, gatewayAdapter, keywordSearcher, graphSearcher, reranker)

	conversations := services.NewConversationStore(dbClient.Client)
	qaCompleter := services.NewQACompleter(gatewayAdapter)
	orchestrator := qa.New(hybridRetriever, qaCompleter, conversations)
	orchestrator.RetrieveOptions = models.RetrieveOptions{
		TopKFinal:        cfg.Retriever.TopKFinal,
		TopKIntermediate: cfg.Retriever.TopKIntermediate,
		WeightVector:     cfg.Retriever.WeightVector,
		WeightKeyword:    cfg.Retriever.WeightKeyword,
		WeightGraph:      cfg.Retriever.WeightGraph,
		Rerank:           cfg.Retriever.Rerank,
	}

	log.Println("Services initialized")

	server := api.NewServer(logger)
	server.Documents = documents
	server.Blob = blobStore
	server.Pipelines = runner
	server.ProgressBus = progressBus
	server.Artifacts = artifacts
	server.Retriever = hybridRetriever
	server.QA = orchestrator
	server.DB = dbClient.DB()
	server.RegisterRoutes()

	log.Printf("HTTP server listening on :%s", cfg.Server.Port)
	if err := server.Start(ctx, ":"+cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
