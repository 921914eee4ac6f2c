// Package api exposes the inference engine and its history store over a
// small JSON HTTP API, in the same manually-routed net/http style the rest
// of this codebase's ambient stack follows.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	humanize "github.com/dustin/go-humanize"

	"turnipmarket/internal/config"
	"turnipmarket/internal/db"
	"turnipmarket/internal/engine"
	"turnipmarket/internal/logger"
	"turnipmarket/internal/predictcache"
)

// Server is the HTTP API server wiring together configuration, the
// inference engine's cache, and the history database.
type Server struct {
	cfg   *config.Config
	db    *db.DB
	cache *predictcache.Cache
}

// NewServer constructs a Server. db may be nil, in which case history
// endpoints report 503 instead of touching a database.
func NewServer(cfg *config.Config, database *db.DB) *Server {
	return &Server{
		cfg:   cfg,
		db:    database,
		cache: predictcache.New(30 * time.Second),
	}
}

// Handler builds the server's full request-routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":           "ok",
		"buy_price_min":    s.cfg.BuyPriceMin,
		"buy_price_max":    s.cfg.BuyPriceMax,
		"max_fudge_factor": s.cfg.MaxFudgeFactor,
		"history_enabled":  s.db != nil,
	})
}

// predictRequest is the wire shape of a POST /api/predict body. Observed
// slots are pointers so a caller can omit or null out unknown prices;
// nil becomes the engine's NaN "missing" sentinel.
type predictRequest struct {
	Prices          [engine.Slots]*float64 `json:"prices"`
	FirstBuy        bool                   `json:"first_buy"`
	PreviousPattern int                    `json:"previous_pattern"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	// previous_pattern omitted entirely decodes as the zero value, which
	// collides with Pattern(0) (FLUCTUATING); callers that don't know last
	// week's pattern must send UnknownPattern (-1) explicitly.
	var obs [engine.Slots]float64
	for i, p := range req.Prices {
		if p == nil {
			obs[i] = engine.Missing()
		} else {
			obs[i] = *p
		}
	}

	results := s.cache.GetOrCompute(obs, req.FirstBuy, req.PreviousPattern)

	if s.db != nil {
		if _, err := s.db.InsertRun(obs, req.FirstBuy, req.PreviousPattern, results); err != nil {
			logger.Warn("API", "failed to persist prediction run: "+err.Error())
		}
	}

	writeJSON(w, results)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "history store not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	records, err := s.db.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type historyEntry struct {
		db.HistoryRecord
		Age string `json:"age"`
	}
	var cutoff time.Time
	if s.cfg.HistoryRetentionDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -s.cfg.HistoryRetentionDays)
	}
	out := make([]historyEntry, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, historyEntry{HistoryRecord: r, Age: humanize.Time(r.CreatedAt)})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
