package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/serving/collect"
	"github.com/vietddude/goodnews/internal/serving/resolve"
)

const (
	logWindow = 30 * 24 * time.Hour
	logLimit  = 100
)

type envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Provenance domain.Provenance `json:"provenance,omitempty"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Details    string            `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	q, err := resolve.ParseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
		return
	}

	res := s.deps.Resolver.Resolve(r.Context(), q)
	records := res.Records
	if records == nil {
		records = []domain.ClassifiedRecord{}
	}
	count := len(records)

	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       records,
		Count:      &count,
		Provenance: res.Provenance,
		Message:    res.Warning,
	})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Collector.Run(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data:    summary,
			Message: "뉴스 수집 및 저장이 완료되었습니다.",
		})
	case errors.Is(err, collect.ErrNothingCollected):
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Data:    summary,
			Error:   err.Error(),
		})
	default:
		s.log.Error("Collection failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{
			Success: false,
			Data:    summary,
			Error:   "뉴스 수집 중 오류가 발생했습니다.",
			Details: err.Error(),
		})
	}
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	body, ok := s.deps.Exporter.Render(r.Context())

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if ok {
		w.Header().Set("Cache-Control", "public, max-age=3600, stale-while-revalidate=1800")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.GetStats(r.Context())
	if err != nil {
		s.log.Error("Failed to get stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]any{
			"database": stats,
			"cache":    s.deps.Cache.Status(r.Context()),
		},
	})
}

// LogSummary aggregates collection log entries.
type LogSummary struct {
	Total          int        `json:"total"`
	Success        int        `json:"success"`
	Failed         int        `json:"failed"`
	Error          int        `json:"error"`
	TotalCollected int        `json:"total_collected"`
	LastCollection *time.Time `json:"last_collection"`
}

// SummarizeLogs counts entries by status. logs are newest first.
func SummarizeLogs(logs []domain.CollectionLogEntry) LogSummary {
	sum := LogSummary{Total: len(logs)}
	for _, l := range logs {
		switch l.Status {
		case domain.CollectionStatusSuccess:
			sum.Success++
		case domain.CollectionStatusFailed:
			sum.Failed++
		case domain.CollectionStatusError:
			sum.Error++
		}
		sum.TotalCollected += l.Count
	}
	if len(logs) > 0 {
		last := logs[0].CreatedAt
		sum.LastCollection = &last
	}
	return sum
}

func (s *Server) handleCollectionLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.deps.Store.ListCollectionLogs(r.Context(), time.Now().Add(-logWindow), logLimit)
	if err != nil {
		s.log.Error("Failed to list collection logs", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
		return
	}
	if logs == nil {
		logs = []domain.CollectionLogEntry{}
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]any{
			"logs":  logs,
			"stats": SummarizeLogs(logs),
		},
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.deps.Cache.Clear(r.Context())
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "cache cleared"})
}
