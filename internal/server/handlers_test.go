package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finsight/finsight/internal/chunker"
	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/embedding"
	"github.com/finsight/finsight/internal/ingest"
	"github.com/finsight/finsight/internal/models"
	"github.com/finsight/finsight/internal/rerank"
	"github.com/finsight/finsight/internal/vectorstore"
	"go.uber.org/zap"
)

func newTestServer(sources ...ingest.Source) *Server {
	store := vectorstore.New(chunker.New(), embedding.NewMockEmbedder(16), rerank.NewMockReranker())
	gate := ingest.NewGate(store, sources)
	cfg := &config.ServerConfig{Host: "localhost", Port: 0}
	return NewServer(store, gate, cfg, zap.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleQuery_EmptyQuery(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv.Router(), "/api/v1/query", models.QueryRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleQuery_EmptyIndex(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv.Router(), "/api/v1/query", models.QueryRequest{Query: "anything"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp models.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("got %d documents from empty index", len(resp.Documents))
	}
}

func TestHandleQuery_TickerTriggersIngestion(t *testing.T) {
	src := ingest.NewStaticSource("static", []models.DocumentInput{
		models.TextInput("apple designs consumer electronics and services"),
	})
	srv := newTestServer(src)

	rec := postJSON(t, srv.Router(), "/api/v1/query", models.QueryRequest{
		Query:  "consumer electronics",
		Ticker: "AAPL",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp models.QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Documents) == 0 {
		t.Fatal("expected results after ticker ingestion")
	}
	if resp.Query != "consumer electronics" {
		t.Errorf("query echoed as %q", resp.Query)
	}
}

func TestHandleIngest(t *testing.T) {
	src := ingest.NewStaticSource("static", []models.DocumentInput{
		models.TextInput("microsoft sells software and cloud services"),
	})
	srv := newTestServer(src)

	rec := postJSON(t, srv.Router(), "/api/v1/ingest", models.IngestRequest{Ticker: "msft"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	status := httptest.NewRecorder()
	srv.Router().ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	var got struct {
		Chunks  int      `json:"chunks"`
		Tickers []string `json:"tickers"`
	}
	if err := json.Unmarshal(status.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Chunks != 1 {
		t.Errorf("chunks = %d", got.Chunks)
	}
	if len(got.Tickers) != 1 || got.Tickers[0] != "MSFT" {
		t.Errorf("tickers = %v", got.Tickers)
	}
}

func TestHandleIngest_MissingTicker(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv.Router(), "/api/v1/ingest", models.IngestRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleAddDocuments(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv.Router(), "/api/v1/documents", []models.DocumentInput{
		models.TextInput("bond yields moved lower on soft inflation data"),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["chunks"] != 1 {
		t.Errorf("chunks = %d", got["chunks"])
	}
}

func TestHandleAddDocuments_Empty(t *testing.T) {
	srv := newTestServer()
	rec := postJSON(t, srv.Router(), "/api/v1/documents", []models.DocumentInput{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
