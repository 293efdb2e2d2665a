// Package config loads the YAML configuration file and fills defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Cohere    CohereConfig    `yaml:"cohere"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CohereConfig holds provider settings. The API key itself is never
// stored in the file; APIKeyEnv names the environment variable that
// carries it.
type CohereConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	EmbedModel     string `yaml:"embed_model"`
	RerankModel    string `yaml:"rerank_model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RetrievalConfig holds pipeline sizing knobs.
type RetrievalConfig struct {
	RetrieveTopK int `yaml:"retrieve_top_k"`
	RerankTopK   int `yaml:"rerank_top_k"`
	BatchSize    int `yaml:"batch_size"`
	ChunkWorkers int `yaml:"chunk_workers"`
}

// IndexConfig holds graph index parameters.
type IndexConfig struct {
	M              int `yaml:"m"`
	EFConstruction int `yaml:"ef_construction"`
	EFSearch       int `yaml:"ef_search"`
}

// SeedDocument is a document indexed at startup.
type SeedDocument struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Text  string `yaml:"text"`
}

// SourceConfig declares a per-ticker document source. URL templates may
// contain a "{ticker}" placeholder.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// IngestConfig holds startup seeds and ticker sources.
type IngestConfig struct {
	Seeds   []SeedDocument `yaml:"seeds"`
	Preload []string       `yaml:"preload"`
	Sources []SourceConfig `yaml:"sources"`
}

// WatchConfig holds notes-directory watching settings. An empty
// Directory disables watching.
type WatchConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
}

// Load reads a YAML config from path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
