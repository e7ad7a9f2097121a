package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio-rag/internal/chunker"
	"portfolio-rag/internal/config"
	"portfolio-rag/internal/embedding"
	"portfolio-rag/internal/ingest"
	"portfolio-rag/internal/llmservice"
	"portfolio-rag/internal/rag"
	"portfolio-rag/internal/server"
	"portfolio-rag/internal/store"
	"portfolio-rag/internal/store/chromemdb"
	"portfolio-rag/internal/store/pgstore"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// .env overrides the process environment, matching local dev expectations
	_ = godotenv.Overload()

	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	// init order: embedding provider, vector store, llm client
	provider, err := embedding.NewProvider(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	vectorStore, err := openStore(cfg, provider)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening vector store")
	}
	defer vectorStore.Close()

	llm, err := llmservice.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing llm client")
	}

	splitter := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	chatService := rag.NewService(vectorStore, llm, cfg)
	pipeline := ingest.NewPipeline(vectorStore, provider, splitter)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(cfg, chatService, pipeline).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store.Type).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func openStore(cfg *config.Config, provider embedding.Provider) (store.VectorStore, error) {
	switch cfg.Store.Type {
	case "postgres":
		db, err := pgstore.Connect(&cfg.Store)
		if err != nil {
			return nil, err
		}
		pg := pgstore.NewStore(db, provider)
		if err := pg.Init(context.Background()); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return chromemdb.NewStore(cfg.Store.Path, cfg.Store.Collection, false, provider)
	}
}
