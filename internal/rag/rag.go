package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"portfolio-rag/internal/config"
	"portfolio-rag/internal/models"
	"portfolio-rag/internal/store"

	"github.com/rs/zerolog/log"
)

// Completer is the outbound chat-completion dependency.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var thinkingRe = regexp.MustCompile(models.ThinkingTag)

// Service answers queries against the document corpus. With an empty corpus
// it falls back to the bare model; otherwise it grounds the prompt in
// retrieved chunks. Chat never returns an error: every failure becomes a
// result with mode "error".
type Service struct {
	store          store.VectorStore
	llm            Completer
	topK           int
	sourceLimit    int
	sourceExcerpt  int
	storePath      string
	embeddingModel string
}

func NewService(vectorStore store.VectorStore, llm Completer, cfg *config.Config) *Service {
	return &Service{
		store:          vectorStore,
		llm:            llm,
		topK:           cfg.RAG.TopK,
		sourceLimit:    cfg.RAG.SourceLimit,
		sourceExcerpt:  cfg.RAG.SourceExcerpt,
		storePath:      cfg.Store.Path,
		embeddingModel: cfg.EmbedLLM.Model,
	}
}

// Chat runs one query through the pipeline. The session id is accepted for
// API compatibility but conversation state is not kept.
func (s *Service) Chat(ctx context.Context, query, sessionID string) models.ChatResult {
	log.Debug().Str("session_id", sessionID).Msg("chat request")

	count, err := s.store.Count(ctx)
	if err != nil {
		return errorResult(fmt.Errorf("checking document count: %w", err), 0)
	}

	if count == 0 {
		return s.directChat(ctx, query)
	}

	results, err := s.store.Search(ctx, query, s.topK)
	if err != nil {
		return errorResult(fmt.Errorf("retrieving documents: %w", err), count)
	}

	contents := make([]string, 0, len(results))
	for _, res := range results {
		contents = append(contents, res.Chunk.Content)
	}
	contextBlock := strings.Join(contents, models.ContextSeparator)

	prompt := fmt.Sprintf(models.RAGPromptTemplate, contextBlock, query)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return errorResult(fmt.Errorf("generating answer: %w", err), count)
	}

	return models.ChatResult{
		Answer:        StripThinking(raw),
		Sources:       s.sourceRefs(results),
		DocumentCount: count,
		Mode:          models.ModeRAG,
	}
}

func (s *Service) directChat(ctx context.Context, query string) models.ChatResult {
	prompt := fmt.Sprintf(models.DirectPromptTemplate, query)
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return errorResult(fmt.Errorf("generating answer: %w", err), 0)
	}

	return models.ChatResult{
		Answer:        StripThinking(raw),
		Sources:       []models.SourceRef{},
		DocumentCount: 0,
		Mode:          models.ModeDirectLLM,
	}
}

// sourceRefs turns the nearest retrieved chunks into display excerpts.
func (s *Service) sourceRefs(results []models.ScoredChunk) []models.SourceRef {
	limit := s.sourceLimit
	if limit > len(results) {
		limit = len(results)
	}

	refs := make([]models.SourceRef, 0, limit)
	for _, res := range results[:limit] {
		refs = append(refs, models.SourceRef{
			Content:  truncate(res.Chunk.Content, s.sourceExcerpt),
			Metadata: res.Chunk.Metadata,
		})
	}
	return refs
}

// Stats reports corpus size and store reachability for the health endpoint.
func (s *Service) Stats(ctx context.Context) models.StoreStats {
	count, err := s.store.Count(ctx)
	if err != nil {
		return models.StoreStats{Status: "error", Err: err.Error()}
	}
	return models.StoreStats{
		Status:         "healthy",
		DocumentCount:  count,
		PersistPath:    s.storePath,
		EmbeddingModel: s.embeddingModel,
	}
}

// StripThinking removes delimited internal-reasoning spans from a model
// response. Some models emit <thinking>...</thinking> blocks that must never
// reach the end user.
func StripThinking(text string) string {
	return strings.TrimSpace(thinkingRe.ReplaceAllString(text, ""))
}

func errorResult(err error, count int) models.ChatResult {
	log.Error().Err(err).Msg("chat pipeline failure")
	return models.ChatResult{
		Answer:        fmt.Sprintf("I encountered an error: %s", err),
		Sources:       []models.SourceRef{},
		DocumentCount: count,
		Mode:          models.ModeError,
		Err:           err.Error(),
	}
}

func truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
