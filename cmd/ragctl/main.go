package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio-rag/internal/chunker"
	"portfolio-rag/internal/config"
	"portfolio-rag/internal/embedding"
	"portfolio-rag/internal/helper"
	"portfolio-rag/internal/ingest"
	"portfolio-rag/internal/llmservice"
	"portfolio-rag/internal/rag"
	"portfolio-rag/internal/store"
	"portfolio-rag/internal/store/chromemdb"
	"portfolio-rag/internal/store/pgstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Overload()

	filePath := flag.String("file", "", "Path to a document file to ingest")
	dirPath := flag.String("dir", "", "Path to a directory of PDFs to ingest")
	query := flag.String("query", "", "Query to be answered")
	flag.Parse()

	if *filePath == "" && *dirPath == "" && *query == "" {
		log.Fatal().Msg("Please provide a document with -file, a directory with -dir, or a query with -query")
	}

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	ctx := context.Background()

	provider, err := embedding.NewProvider(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	vectorStore, err := openStore(ctx, cfg, provider)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}
	defer vectorStore.Close()

	splitter := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	pipeline := ingest.NewPipeline(vectorStore, provider, splitter)

	switch {
	case *filePath != "":
		result := pipeline.IngestFile(ctx, *filePath, nil)
		helper.PrettyPrint(result)
	case *dirPath != "":
		result := pipeline.IngestDirectory(ctx, *dirPath)
		helper.PrettyPrint(result)
	case *query != "":
		llm, err := llmservice.NewClient(&cfg.LLM)
		if err != nil {
			log.Fatal().Err(err).Msg("Error initializing llm client")
		}
		chatService := rag.NewService(vectorStore, llm, cfg)
		result := chatService.Chat(ctx, *query, "ragctl")

		log.Info().Str("mode", result.Mode).Int("documents", result.DocumentCount).Msg("chat result")
		fmt.Printf("%s\n\n", result.Answer)
		if len(result.Sources) > 0 {
			log.Info().Msg("Sources:")
			helper.PrettyPrint(result.Sources)
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config, provider embedding.Provider) (store.VectorStore, error) {
	switch cfg.Store.Type {
	case "postgres":
		db, err := pgstore.Connect(&cfg.Store)
		if err != nil {
			return nil, err
		}
		pg := pgstore.NewStore(db, provider)
		if err := pg.Init(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return chromemdb.NewStore(cfg.Store.Path, cfg.Store.Collection, false, provider)
	}
}
