package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"portfolio-rag/internal/config"
	"portfolio-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	count        int
	countErr     error
	results      []models.ScoredChunk
	searchErr    error
	searchCalled bool
	searchedK    int
}

func (f *fakeStore) Add(ctx context.Context, chunks []models.Chunk) error { return nil }

func (f *fakeStore) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	f.searchCalled = true
	f.searchedK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if k > len(f.results) {
		k = len(f.results)
	}
	return f.results[:k], nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) { return f.count, f.countErr }

func (f *fakeStore) Close() error { return nil }

type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		RAG: config.RAGConfig{
			TopK:          4,
			SourceLimit:   3,
			SourceExcerpt: 200,
		},
		EmbedLLM: config.LLMConfig{Model: "nomic-embed-text"},
		Store:    config.StoreConfig{Path: "./testdb"},
	}
}

func scoredChunks(n int) []models.ScoredChunk {
	chunks := make([]models.ScoredChunk, n)
	for i := range chunks {
		chunks[i] = models.ScoredChunk{
			Chunk: models.Chunk{
				Content:  fmt.Sprintf("chunk %d content", i+1),
				Metadata: map[string]string{"source": "resume.pdf"},
			},
			Similarity: 1 - float32(i)*0.1,
		}
	}
	return chunks
}

func TestChat_EmptyCorpusUsesDirectMode(t *testing.T) {
	store := &fakeStore{count: 0}
	llm := &fakeLLM{response: "I am a portfolio assistant."}
	svc := NewService(store, llm, testConfig())

	result := svc.Chat(context.Background(), "What is your name?", "default")

	assert.Equal(t, models.ModeDirectLLM, result.Mode)
	assert.Equal(t, "I am a portfolio assistant.", result.Answer)
	assert.Empty(t, result.Sources)
	assert.Equal(t, 0, result.DocumentCount)
	assert.False(t, store.searchCalled, "direct mode must not hit the vector store")
	assert.Contains(t, llm.prompt, "What is your name?")
}

func TestChat_PopulatedCorpusUsesRAGMode(t *testing.T) {
	store := &fakeStore{count: 5, results: scoredChunks(5)}
	llm := &fakeLLM{response: "Grounded answer."}
	svc := NewService(store, llm, testConfig())

	result := svc.Chat(context.Background(), "What projects exist?", "default")

	assert.Equal(t, models.ModeRAG, result.Mode)
	assert.Equal(t, 5, result.DocumentCount)
	assert.Equal(t, 4, store.searchedK)
	require.Len(t, result.Sources, 3)

	// context block carries the retrieved chunks, nearest first
	assert.Contains(t, llm.prompt, "chunk 1 content")
	assert.Contains(t, llm.prompt, "chunk 4 content")
	assert.Contains(t, llm.prompt, "What projects exist?")
	idx1 := strings.Index(llm.prompt, "chunk 1 content")
	idx2 := strings.Index(llm.prompt, "chunk 2 content")
	assert.Less(t, idx1, idx2)
}

func TestChat_SourceExcerptsAreTruncated(t *testing.T) {
	long := strings.Repeat("a", 500)
	store := &fakeStore{
		count: 1,
		results: []models.ScoredChunk{{
			Chunk: models.Chunk{Content: long, Metadata: map[string]string{"source": "big.pdf"}},
		}},
	}
	llm := &fakeLLM{response: "ok"}
	svc := NewService(store, llm, testConfig())

	result := svc.Chat(context.Background(), "q", "default")

	require.Len(t, result.Sources, 1)
	assert.LessOrEqual(t, len(result.Sources[0].Content), 203)
	assert.True(t, strings.HasSuffix(result.Sources[0].Content, "..."))
	assert.Equal(t, "big.pdf", result.Sources[0].Metadata["source"])
}

func TestChat_LLMFailureBecomesErrorResult(t *testing.T) {
	store := &fakeStore{count: 2, results: scoredChunks(2)}
	llm := &fakeLLM{err: errors.New("upstream timeout")}
	svc := NewService(store, llm, testConfig())

	result := svc.Chat(context.Background(), "q", "default")

	assert.Equal(t, models.ModeError, result.Mode)
	assert.Contains(t, result.Answer, "I encountered an error")
	assert.Contains(t, result.Err, "upstream timeout")
	assert.Empty(t, result.Sources)
}

func TestChat_SearchFailureBecomesErrorResult(t *testing.T) {
	store := &fakeStore{count: 2, searchErr: errors.New("store offline")}
	svc := NewService(store, &fakeLLM{}, testConfig())

	result := svc.Chat(context.Background(), "q", "default")

	assert.Equal(t, models.ModeError, result.Mode)
	assert.Contains(t, result.Err, "store offline")
}

func TestChat_CountFailureBecomesErrorResult(t *testing.T) {
	store := &fakeStore{countErr: errors.New("db unreachable")}
	svc := NewService(store, &fakeLLM{}, testConfig())

	result := svc.Chat(context.Background(), "q", "default")

	assert.Equal(t, models.ModeError, result.Mode)
	assert.False(t, store.searchCalled)
}

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no block", "plain answer", "plain answer"},
		{"single block", "<thinking>internal</thinking>visible", "visible"},
		{"multiline block", "<thinking>line one\nline two</thinking>\nanswer", "answer"},
		{"mixed case", "<THINKING>secret</Thinking> answer", "answer"},
		{"multiple blocks", "<thinking>a</thinking>one <thinking>b</thinking>two", "one two"},
		{"only block", "<thinking>everything</thinking>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripThinking(tt.in))
		})
	}
}

func TestChat_StripsThinkingFromAnswer(t *testing.T) {
	store := &fakeStore{count: 0}
	llm := &fakeLLM{response: "<thinking>let me reason\nabout this</thinking>The answer."}
	svc := NewService(store, llm, testConfig())

	result := svc.Chat(context.Background(), "q", "default")

	assert.Equal(t, "The answer.", result.Answer)
}

func TestStats(t *testing.T) {
	svc := NewService(&fakeStore{count: 7}, &fakeLLM{}, testConfig())

	stats := svc.Stats(context.Background())
	assert.Equal(t, "healthy", stats.Status)
	assert.Equal(t, 7, stats.DocumentCount)
	assert.Equal(t, "nomic-embed-text", stats.EmbeddingModel)

	broken := NewService(&fakeStore{countErr: errors.New("gone")}, &fakeLLM{}, testConfig())
	stats = broken.Stats(context.Background())
	assert.Equal(t, "error", stats.Status)
	assert.Contains(t, stats.Err, "gone")
}
