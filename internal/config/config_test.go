package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadSize)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4, cfg.RAG.TopK)
	assert.Equal(t, 3, cfg.RAG.SourceLimit)
	assert.Equal(t, 200, cfg.RAG.SourceExcerpt)
	assert.Equal(t, "chromem", cfg.Store.Type)
}

func TestLoadConfig_YAMLValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  addr: ":9000"
  cors_origins:
    - https://example.com
llm:
  key: file-key
  model: some-model
store:
  type: chromem
  path: /var/lib/ragdb
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "file-key", cfg.LLM.Key)
	assert.Equal(t, "/var/lib/ragdb", cfg.Store.Path)
	// defaults still fill the gaps
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  key: file-key\n"), 0o644))

	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("VECTOR_DB_PATH", "/env/db")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.Key)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "/env/db", cfg.Store.Path)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidate_RequiresLLMKey(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	cfg.LLM.Model = "some-model"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
}

func TestValidate_RequiresModel(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	cfg.LLM.Key = "key"

	assert.Error(t, cfg.Validate())
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	cfg.LLM.Key = "key"
	cfg.LLM.Model = "m"
	cfg.Store.Type = "postgres"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")

	cfg.Store.DSN = "postgres://localhost:5432/rag"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownStoreType(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	cfg.LLM.Key = "key"
	cfg.LLM.Model = "m"
	cfg.Store.Type = "redis"

	assert.Error(t, cfg.Validate())
}
