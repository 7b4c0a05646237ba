package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MegaGrindStone/asisten-kepsek/internal/metrics"
	"github.com/MegaGrindStone/asisten-kepsek/internal/models"
	"github.com/MegaGrindStone/asisten-kepsek/internal/session"
)

const defaultCallsLimit = 50

// HandleTranscript offers the caller's conversation as a plain-text download.
func (m Main) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := m.session(w, r)
	transcript := s.Transcript()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.TranscriptFileName))
	if _, err := io.WriteString(w, transcript); err != nil {
		m.logger.Error("Failed to write transcript",
			slog.String("sessionID", s.ID()),
			slog.String(errLoggerKey, err.Error()))
		return
	}
	metrics.TranscriptExportsTotal.Inc()
}

// HandleCalls lists the most recent model calls as JSON. The optional "limit" query parameter caps the
// number of records.
func (m Main) HandleCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if m.callLog == nil {
		http.Error(w, "Call log is not enabled", http.StatusNotFound)
		return
	}

	limit := defaultCallsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	calls, err := m.callLog.Calls(r.Context(), limit)
	if err != nil {
		m.logger.Error("Failed to list calls", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if calls == nil {
		calls = []models.CallRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(calls); err != nil {
		m.logger.Error("Failed to encode calls", slog.String(errLoggerKey, err.Error()))
	}
}
