package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
debug: true
server:
  port: 9090
cohere:
  dimensions: 256
retrieval:
  rerank_top_k: 5
ingest:
  preload: [AAPL]
  sources:
    - name: wiki
      url: https://example.com/{ticker}
watch:
  directory: ./notes
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if got := cfg.Server.Addr(); got != "localhost:9090" {
		t.Errorf("addr = %q", got)
	}
	if cfg.Cohere.Dimensions != 256 {
		t.Errorf("dimensions = %d", cfg.Cohere.Dimensions)
	}
	if cfg.Cohere.EmbedModel != "embed-english-v3.0" {
		t.Errorf("embed model default missing: %q", cfg.Cohere.EmbedModel)
	}
	if cfg.Retrieval.RerankTopK != 5 || cfg.Retrieval.RetrieveTopK != 10 {
		t.Errorf("retrieval = %+v", cfg.Retrieval)
	}
	if len(cfg.Ingest.Sources) != 1 || cfg.Ingest.Sources[0].Name != "wiki" {
		t.Errorf("sources = %+v", cfg.Ingest.Sources)
	}
	if cfg.Watch.Directory != "./notes" {
		t.Errorf("watch dir = %q", cfg.Watch.Directory)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr() != "localhost:8080" {
		t.Errorf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Index.M != 64 || cfg.Index.EFConstruction != 512 || cfg.Index.EFSearch != 128 {
		t.Errorf("index = %+v", cfg.Index)
	}
	if cfg.Retrieval.BatchSize != 90 {
		t.Errorf("batch size = %d", cfg.Retrieval.BatchSize)
	}
	if cfg.Cohere.APIKeyEnv != "COHERE_API_KEY" {
		t.Errorf("api key env = %q", cfg.Cohere.APIKeyEnv)
	}
}
