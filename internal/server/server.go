package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"portfolio-rag/internal/config"
	"portfolio-rag/internal/models"
)

// ChatService is the read path: query answering plus store stats for health.
type ChatService interface {
	Chat(ctx context.Context, query, sessionID string) models.ChatResult
	Stats(ctx context.Context) models.StoreStats
}

// Ingestor is the write path.
type Ingestor interface {
	IngestFile(ctx context.Context, filePath string, metadata map[string]string) models.IngestResult
	IngestDirectory(ctx context.Context, dir string) models.DirectoryResult
}

const apiVersion = "1.0.0"

// Server is the thin HTTP adapter over the pipelines. It owns request
// validation and CORS; everything else is delegated.
type Server struct {
	cfg      *config.Config
	chat     ChatService
	ingestor Ingestor
}

func New(cfg *config.Config, chat ChatService, ingestor Ingestor) *Server {
	return &Server{cfg: cfg, chat: chat, ingestor: ingestor}
}

// Handler builds the route table wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/ingest-directory", s.handleIngestDirectory)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return s.cors(mux)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Portfolio RAG API",
		"version": apiVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"chat":             "/api/chat",
			"ingest":           "/api/ingest",
			"ingest_directory": "/api/ingest-directory",
			"health":           "/api/health",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// one JSON value per request
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
