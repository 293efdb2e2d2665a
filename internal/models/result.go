package models

// RetrievedDocument is one passage returned by retrieval. Results are
// ordered by descending provider-assigned relevance; no numeric score
// is exposed because only the ordering matters to callers.
type RetrievedDocument struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Origin string `json:"origin,omitempty"`
}

// QueryRequest is the input for a retrieval query. Ticker is optional;
// when set, the ticker's documents are ingested before retrieval.
// Zero values for the top-k fields mean the configured defaults.
type QueryRequest struct {
	Query        string `json:"query"`
	Ticker       string `json:"ticker,omitempty"`
	RetrieveTopK int    `json:"retrieve_top_k,omitempty"`
	RerankTopK   int    `json:"rerank_top_k,omitempty"`
}

// QueryResponse is the response for a retrieval query.
type QueryResponse struct {
	Query     string              `json:"query"`
	Documents []RetrievedDocument `json:"documents"`
	QueryTime int64               `json:"query_time_ms"`
}

// IngestRequest asks for all documents of one ticker to be ingested.
type IngestRequest struct {
	Ticker string `json:"ticker"`
}
