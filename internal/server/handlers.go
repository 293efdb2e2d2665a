package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finsight/finsight/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("query request",
		zap.String("query", req.Query),
		zap.String("ticker", req.Ticker))

	// A ticker on the query triggers first-use ingestion before retrieval.
	if req.Ticker != "" {
		if err := s.gate.EnsureIngested(r.Context(), req.Ticker); err != nil {
			s.logger.Error("ingestion failed", zap.String("ticker", req.Ticker), zap.Error(err))
			s.respondError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	start := time.Now()
	docs, err := s.store.Retrieve(r.Context(), req.Query, req.RetrieveTopK, req.RerankTopK)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.QueryResponse{
		Query:     req.Query,
		Documents: docs,
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		s.respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	s.logger.Debug("ingest request", zap.String("ticker", req.Ticker))
	if err := s.gate.EnsureIngested(r.Context(), req.Ticker); err != nil {
		s.logger.Error("ingestion failed", zap.String("ticker", req.Ticker), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"ticker": req.Ticker, "status": "ingested"})
}

func (s *Server) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	var inputs []models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(inputs) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one document is required")
		return
	}
	n, err := s.store.AddDocuments(r.Context(), inputs)
	if err != nil {
		s.logger.Error("indexing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]int{"chunks": n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stat()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"chunks":         stats.Chunks,
		"index_size":     stats.IndexSize,
		"index_capacity": stats.IndexCapacity,
		"dimensions":     stats.Dimensions,
		"tickers":        s.gate.Ingested(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
