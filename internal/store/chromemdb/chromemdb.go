package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"portfolio-rag/internal/embedding"
	"portfolio-rag/internal/helper"
	"portfolio-rag/internal/models"
	"portfolio-rag/internal/store"

	"github.com/philippgille/chromem-go"
)

// Store encapsulates the chromem-go database operations. The database lives
// at dbPath and survives process restarts; every write is persisted by
// chromem itself.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	provider   embedding.Provider
	dbPath     string
}

const compress = false

// NewStore opens (or creates) the persistent database and collection. With
// inMemory set the store is volatile, which the tests use.
func NewStore(dbPath, collectionName string, inMemory bool, provider embedding.Provider) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return provider.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		provider:   provider,
		dbPath:     dbPath,
	}, nil
}

func (s *Store) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		id := chunk.ID
		if id == "" {
			generated, err := helper.GenerateUUID()
			if err != nil {
				return err
			}
			id = generated
		}
		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: chunk.Embedding,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem rejects nResults larger than the collection
	if k > count {
		k = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: query,
		NResults:  k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{
				ID:        res.ID,
				Content:   res.Content,
				Metadata:  res.Metadata,
				Embedding: res.Embedding,
			},
			Similarity: res.Similarity,
		})
	}
	return scored, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close is a no-op: chromem persists on every write.
func (s *Store) Close() error {
	return nil
}

func (s *Store) Path() string {
	return s.dbPath
}

var _ store.VectorStore = (*Store)(nil)
