package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLMConfig describes one model endpoint (chat completion or embedding).
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type       string `yaml:"type"` // "chromem" or "postgres"
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	DSN        string `yaml:"dsn"`
	Password   string `yaml:"password"`
	Debug      bool   `yaml:"debug"`
}

// RAGConfig tunes chunking and retrieval.
type RAGConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	TopK          int `yaml:"top_k"`
	SourceLimit   int `yaml:"source_limit"`
	SourceExcerpt int `yaml:"source_excerpt"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr          string   `yaml:"addr"`
	CORSOrigins   []string `yaml:"cors_origins"`
	UploadDir     string   `yaml:"upload_dir"`
	MaxUploadSize int64    `yaml:"max_upload_size"`
	DocumentsDir  string   `yaml:"documents_dir"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	LLM      LLMConfig    `yaml:"llm"`
	EmbedLLM LLMConfig    `yaml:"embedding"`
	Store    StoreConfig  `yaml:"store"`
	RAG      RAGConfig    `yaml:"rag"`
}

const (
	defaultAddr          = ":8000"
	defaultUploadDir     = "./uploads"
	defaultDocumentsDir  = "./documents"
	defaultMaxUploadSize = 10 << 20 // 10MB
	defaultChunkSize     = 1000
	defaultChunkOverlap  = 200
	defaultTopK          = 4
	defaultSourceLimit   = 3
	defaultSourceExcerpt = 200
	defaultStorePath     = "./chromemdb"
	defaultCollection    = "portfolio_documents"
)

// LoadConfig reads an optional YAML file, applies defaults, then lets
// environment variables override. The file may be absent; the environment
// alone is enough to run.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = defaultUploadDir
	}
	if cfg.Server.DocumentsDir == "" {
		cfg.Server.DocumentsDir = defaultDocumentsDir
	}
	if cfg.Server.MaxUploadSize == 0 {
		cfg.Server.MaxUploadSize = defaultMaxUploadSize
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "chromem"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = defaultCollection
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.SourceLimit == 0 {
		cfg.RAG.SourceLimit = defaultSourceLimit
	}
	if cfg.RAG.SourceExcerpt == 0 {
		cfg.RAG.SourceExcerpt = defaultSourceExcerpt
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "HTTP_ADDR")
	setString(&cfg.Server.UploadDir, "UPLOAD_DIR")
	setString(&cfg.Server.DocumentsDir, "DOCUMENTS_DIR")
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxUploadSize = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.Server.CORSOrigins = origins
		}
	}

	setString(&cfg.LLM.Key, "LLM_API_KEY")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setString(&cfg.LLM.Model, "LLM_MODEL")

	setString(&cfg.EmbedLLM.Provider, "EMBEDDING_PROVIDER")
	setString(&cfg.EmbedLLM.BaseURL, "EMBEDDING_BASE_URL")
	setString(&cfg.EmbedLLM.Key, "EMBEDDING_API_KEY")
	setString(&cfg.EmbedLLM.Model, "EMBEDDING_MODEL")

	setString(&cfg.Store.Type, "VECTOR_STORE")
	setString(&cfg.Store.Path, "VECTOR_DB_PATH")
	setString(&cfg.Store.Collection, "VECTOR_DB_COLLECTION")
	setString(&cfg.Store.DSN, "POSTGRES_DSN")
	setString(&cfg.Store.Password, "POSTGRES_PASSWORD")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate fails fast on settings the process cannot run without.
func (cfg *Config) Validate() error {
	if cfg.LLM.Key == "" {
		return fmt.Errorf("llm api key is required (set LLM_API_KEY)")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm model is required (set LLM_MODEL)")
	}
	switch cfg.Store.Type {
	case "chromem":
		if cfg.Store.Path == "" {
			return fmt.Errorf("vector db path is required for the chromem store")
		}
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("postgres dsn is required for the postgres store (set POSTGRES_DSN)")
		}
	default:
		return fmt.Errorf("unknown vector store type: %q", cfg.Store.Type)
	}
	return nil
}
