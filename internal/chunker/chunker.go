package chunker

import (
	"strconv"
	"strings"

	"portfolio-rag/internal/models"

	"github.com/tmc/langchaingo/textsplitter"
)

// Splitter cuts document text into overlapping chunks, preferring paragraph
// boundaries, then line breaks, then spaces, then raw characters.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}
}

// Split returns the chunk strings for one text. Text shorter than the chunk
// size comes back as a single chunk; blank text produces no chunks.
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := s.inner.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, p)
	}
	return chunks, nil
}

// SplitPage chunks one extracted page and attaches retrieval metadata.
func (s *Splitter) SplitPage(text string, pageNumber int, metadata map[string]string) ([]models.Chunk, error) {
	parts, err := s.Split(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(parts))
	for i, p := range parts {
		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta["page"] = strconv.Itoa(pageNumber)
		meta["chunk"] = strconv.Itoa(i + 1)
		chunks = append(chunks, models.Chunk{Content: p, Metadata: meta})
	}
	return chunks, nil
}
