package ingest

import (
	"context"
	"fmt"
	"path/filepath"

	"portfolio-rag/internal/chunker"
	"portfolio-rag/internal/embedding"
	"portfolio-rag/internal/models"
	"portfolio-rag/internal/parser"
	"portfolio-rag/internal/store"

	"github.com/rs/zerolog/log"
)

// Pipeline loads documents, chunks them, embeds the chunks and inserts them
// into the vector store. Failures never abort a batch: each document gets its
// own tagged result.
type Pipeline struct {
	store    store.VectorStore
	provider embedding.Provider
	splitter *chunker.Splitter

	// Extract is swappable so tests can feed text without real files.
	Extract func(filePath string) ([]parser.Page, error)
}

func NewPipeline(vectorStore store.VectorStore, provider embedding.Provider, splitter *chunker.Splitter) *Pipeline {
	return &Pipeline{
		store:    vectorStore,
		provider: provider,
		splitter: splitter,
		Extract:  parser.Extract,
	}
}

// IngestFile processes one document end to end. Any failure is reported as an
// error-status result, not returned as an error.
func (p *Pipeline) IngestFile(ctx context.Context, filePath string, metadata map[string]string) models.IngestResult {
	source := filepath.Base(filePath)

	pages, err := p.Extract(filePath)
	if err != nil {
		return errorIngestResult(source, fmt.Errorf("loading document: %w", err))
	}

	meta := map[string]string{"source": source}
	for k, v := range metadata {
		meta[k] = v
	}

	var chunks []models.Chunk
	for _, page := range pages {
		pageChunks, err := p.splitter.SplitPage(page.Text, page.Number, meta)
		if err != nil {
			return errorIngestResult(source, fmt.Errorf("chunking page %d: %w", page.Number, err))
		}
		chunks = append(chunks, pageChunks...)
	}

	if len(chunks) == 0 {
		return errorIngestResult(source, fmt.Errorf("no text extracted from document"))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.provider.EmbedDocuments(ctx, texts)
	if err != nil {
		return errorIngestResult(source, fmt.Errorf("embedding chunks: %w", err))
	}
	if len(embeddings) != len(chunks) {
		return errorIngestResult(source, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings)))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := p.store.Add(ctx, chunks); err != nil {
		return errorIngestResult(source, fmt.Errorf("storing chunks: %w", err))
	}

	log.Info().Str("source", source).Int("chunks", len(chunks)).Msg("ingested document")
	return models.IngestResult{
		Status:  models.StatusSuccess,
		Message: fmt.Sprintf("Successfully ingested %d chunks from %s", len(chunks), source),
		Chunks:  len(chunks),
		Source:  source,
	}
}

// IngestDirectory processes every PDF directly inside dir, non-recursively.
// A directory with no PDFs (or no directory at all) is a warning, not an
// error.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) models.DirectoryResult {
	pdfFiles, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		pdfFiles = nil
	}

	if len(pdfFiles) == 0 {
		return models.DirectoryResult{
			Status:   models.StatusWarning,
			Message:  fmt.Sprintf("No PDF files found in %s", dir),
			Ingested: 0,
		}
	}

	var details []models.IngestResult
	successful := 0
	totalChunks := 0
	for _, pdfPath := range pdfFiles {
		result := p.IngestFile(ctx, pdfPath, nil)
		details = append(details, result)
		if result.Status == models.StatusSuccess {
			successful++
			totalChunks += result.Chunks
		}
	}

	status := models.StatusSuccess
	if successful == 0 {
		status = models.StatusError
	}

	return models.DirectoryResult{
		Status:      status,
		Message:     fmt.Sprintf("Ingested %d/%d documents with %d total chunks", successful, len(pdfFiles), totalChunks),
		Ingested:    successful,
		Total:       len(pdfFiles),
		TotalChunks: totalChunks,
		Details:     details,
	}
}

func errorIngestResult(source string, err error) models.IngestResult {
	log.Error().Err(err).Str("source", source).Msg("ingestion failure")
	return models.IngestResult{
		Status:  models.StatusError,
		Message: fmt.Sprintf("Failed to ingest document: %s", err),
		Source:  source,
		Err:     err.Error(),
	}
}
