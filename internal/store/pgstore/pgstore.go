package pgstore

import (
	"context"
	"database/sql"
	"strconv"

	"portfolio-rag/internal/config"
	"portfolio-rag/internal/embedding"
	"portfolio-rag/internal/models"
	"portfolio-rag/internal/store"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// vectorDim must match the embedding model's output size.
const vectorDim = 768

// Document is one stored chunk row.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Content   string          `bun:"content,notnull"`
	Embedding pgvector.Vector `bun:"embedding,notnull,type:vector(768)"`
	Source    string          `bun:"source_filename"`
	Page      int             `bun:"page_number"`
	ChunkNum  int             `bun:"chunk_id"`

	Distance float64 `bun:"distance,scanonly"`
}

// Store keeps chunks in Postgres with pgvector similarity search. It is the
// alternative to the embedded chromem store for deployments that already run
// Postgres.
type Store struct {
	db       *bun.DB
	provider embedding.Provider
}

func Connect(cfg *config.StoreConfig) (*bun.DB, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

func NewStore(db *bun.DB, provider embedding.Provider) *Store {
	return &Store{db: db, provider: provider}
}

// Init creates the documents table if it is missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Store) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = Document{
			Content:   chunk.Content,
			Embedding: pgvector.NewVector(chunk.Embedding),
			Source:    chunk.Metadata["source"],
			Page:      atoiOrZero(chunk.Metadata["page"]),
			ChunkNum:  atoiOrZero(chunk.Metadata["chunk"]),
		}
	}

	_, err := s.db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	queryEmbedding, err := s.provider.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	vec := pgvector.NewVector(queryEmbedding)

	var docs []Document
	err = s.db.NewSelect().
		Model(&docs).
		ColumnExpr("d.*").
		ColumnExpr("d.embedding <=> ? AS distance", vec).
		OrderExpr("d.embedding <=> ?", vec).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]models.ScoredChunk, 0, len(docs))
	for _, doc := range docs {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{
				ID:      strconv.FormatInt(doc.ID, 10),
				Content: doc.Content,
				Metadata: map[string]string{
					"source": doc.Source,
					"page":   strconv.Itoa(doc.Page),
					"chunk":  strconv.Itoa(doc.ChunkNum),
				},
			},
			// cosine distance, so similarity is its complement
			Similarity: float32(1 - doc.Distance),
		})
	}
	return scored, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func atoiOrZero(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

var _ store.VectorStore = (*Store)(nil)
