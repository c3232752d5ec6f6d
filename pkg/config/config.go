package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        int
	DataDir     string
	CORSOrigins string

	// open ai
	OpenAIKey            string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	OpenAIChatModel      string

	// rag config
	ChunkSize    int
	ChunkOverlap int
	TopKResults  int

	// upload limits
	MaxUploadSize int64

	// background index builds
	IndexWorkers int
}

// Load reads configuration from the environment (and an optional .env file)
// and makes sure the on-disk data layout exists. It fails when the OpenAI
// credential is missing so the process dies at startup instead of at the
// first embedding call.
func Load() (*Config, error) {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		port = 8080
	}

	dataDir := getEnv("DATA_DIR", "data")

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", filepath.Join(dataDir, "pdfqa.db")),
		Port:        port,
		DataDir:     dataDir,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		// OpenAI
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_API_BASE", ""),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		// RAG Config
		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopKResults:  getEnvInt("TOP_K_RESULTS", 3),

		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE", 20*1024*1024)),

		IndexWorkers: getEnvInt("INDEX_WORKERS", 2),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("environment variable OPENAI_API_KEY is required but not set")
	}

	for _, dir := range []string{cfg.DocumentsDir(), cfg.IndicesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

// DocumentsDir is where uploaded PDF blobs live.
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.DataDir, "documents")
}

// IndicesDir is the root of the per-document vector index directories.
func (c *Config) IndicesDir() string {
	return filepath.Join(c.DataDir, "indices")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
