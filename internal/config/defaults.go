package config

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Cohere.APIKeyEnv == "" {
		c.Cohere.APIKeyEnv = "COHERE_API_KEY"
	}
	if c.Cohere.EmbedModel == "" {
		c.Cohere.EmbedModel = "embed-english-v3.0"
	}
	if c.Cohere.RerankModel == "" {
		c.Cohere.RerankModel = "rerank-english-v3.0"
	}
	if c.Cohere.Dimensions == 0 {
		c.Cohere.Dimensions = 1024
	}
	if c.Cohere.TimeoutSeconds == 0 {
		c.Cohere.TimeoutSeconds = 60
	}

	if c.Retrieval.RetrieveTopK == 0 {
		c.Retrieval.RetrieveTopK = 10
	}
	if c.Retrieval.RerankTopK == 0 {
		c.Retrieval.RerankTopK = 3
	}
	if c.Retrieval.BatchSize == 0 {
		c.Retrieval.BatchSize = 90
	}
	if c.Retrieval.ChunkWorkers == 0 {
		c.Retrieval.ChunkWorkers = 8
	}

	if c.Index.M == 0 {
		c.Index.M = 64
	}
	if c.Index.EFConstruction == 0 {
		c.Index.EFConstruction = 512
	}
	if c.Index.EFSearch == 0 {
		c.Index.EFSearch = 128
	}

	if len(c.Watch.Extensions) == 0 {
		c.Watch.Extensions = []string{".txt", ".md", ".pdf", ".xlsx"}
	}
}
