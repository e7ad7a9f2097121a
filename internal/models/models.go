package models

// Chunk is the unit of embedding and retrieval: a bounded substring of a
// source document plus its vector and metadata.
type Chunk struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// ScoredChunk is a chunk returned from a similarity search, nearest first.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}

// Chat modes.
const (
	ModeRAG       = "rag"
	ModeDirectLLM = "direct_llm"
	ModeError     = "error"
)

// Ingestion statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusWarning = "warning"
)

// SourceRef is a display excerpt of a retrieved chunk.
type SourceRef struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// ChatResult is what the chat pipeline always returns, including on failure.
type ChatResult struct {
	Answer        string      `json:"answer"`
	Sources       []SourceRef `json:"sources"`
	DocumentCount int         `json:"document_count"`
	Mode          string      `json:"mode"`
	Err           string      `json:"error,omitempty"`
}

// IngestResult summarizes one ingestion attempt for one document.
type IngestResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
	Source  string `json:"source"`
	Err     string `json:"error,omitempty"`
}

// DirectoryResult aggregates per-file ingestion results for one directory.
type DirectoryResult struct {
	Status      string         `json:"status"`
	Message     string         `json:"message"`
	Ingested    int            `json:"ingested"`
	Total       int            `json:"total"`
	TotalChunks int            `json:"total_chunks"`
	Details     []IngestResult `json:"details,omitempty"`
}

// StoreStats is reported by the health endpoint.
type StoreStats struct {
	Status         string `json:"status"`
	DocumentCount  int    `json:"document_count"`
	PersistPath    string `json:"persist_directory,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	Err            string `json:"error,omitempty"`
}
