package chromemdb

import (
	"context"
	"math"
	"testing"

	"portfolio-rag/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// angleProvider maps known texts onto fixed points of the unit circle so
// similarity ordering is fully deterministic.
type angleProvider struct{}

var angles = map[string]float64{
	"cats enjoy sleeping":   0.0,
	"dogs enjoy walking":    0.5,
	"the weather is rainy":  1.5,
	"feline sleeping habit": 0.1,
}

func unitVec(theta float64) []float32 {
	return []float32{float32(math.Cos(theta)), float32(math.Sin(theta))}
}

func (angleProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = unitVec(angles[text])
	}
	return vectors, nil
}

func (angleProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return unitVec(angles[text]), nil
}

func (angleProvider) ModelName() string { return "angle" }

func testChunks(t *testing.T) []models.Chunk {
	t.Helper()
	texts := []string{"cats enjoy sleeping", "dogs enjoy walking", "the weather is rainy"}
	vectors, err := angleProvider{}.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)

	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			Content:   text,
			Embedding: vectors[i],
			Metadata:  map[string]string{"source": "pets.pdf"},
		}
	}
	return chunks
}

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "test_collection", true, angleProvider{})
	require.NoError(t, err)
	return s
}

func TestAddAndCount(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, s.Add(ctx, testChunks(t)))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// count is stable without intervening writes
	again, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, again)
}

func TestAdd_NoDedup(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, testChunks(t)))
	require.NoError(t, s.Add(ctx, testChunks(t)))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "repeated ingestion stores duplicates")
}

func TestSearch_OrdersByDescendingSimilarity(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, testChunks(t)))

	results, err := s.Search(ctx, "feline sleeping habit", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cats enjoy sleeping", results[0].Chunk.Content)
	assert.Equal(t, "dogs enjoy walking", results[1].Chunk.Content)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
	assert.Equal(t, "pets.pdf", results[0].Chunk.Metadata["source"])
}

func TestSearch_ClampsKToCollectionSize(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, testChunks(t)))

	results, err := s.Search(ctx, "feline sleeping habit", 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_EmptyCollectionReturnsNothing(t *testing.T) {
	s := newMemoryStore(t)

	results, err := s.Search(context.Background(), "feline sleeping habit", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyQueryIsError(t *testing.T) {
	s := newMemoryStore(t)

	_, err := s.Search(context.Background(), "", 4)
	assert.Error(t, err)
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir, "persist_collection", false, angleProvider{})
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, testChunks(t)))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir, "persist_collection", false, angleProvider{})
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
