package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"turnipmarket/internal/engine"
)

// HistoryRecord is one persisted inference run: the inputs, and the
// resulting aggregate (ALL row) plus the top-ranked scenario's pattern.
type HistoryRecord struct {
	ID                    string    `json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	Observations          [engine.Slots]float64 `json:"observations"`
	FirstBuy              bool      `json:"first_buy"`
	PreviousPattern       int       `json:"previous_pattern"`
	TopPatternName        string    `json:"top_pattern_name"`
	TopPatternProbability float64   `json:"top_pattern_probability"`
	WeekGuaranteedMinimum int       `json:"week_guaranteed_minimum"`
	WeekMax               int       `json:"week_max"`
}

// InsertRun persists one AnalyzePossibilities call: its inputs plus the
// resulting ranked list's ALL row and top non-ALL scenario. Returns the
// new record's generated ID.
func (d *DB) InsertRun(obs [engine.Slots]float64, firstBuy bool, previousPattern int, results []engine.PredictionResult) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("insert run: empty results")
	}

	all := results[0]
	var top engine.PredictionResult
	if len(results) > 1 {
		top = results[1]
	}

	obsJSON, err := json.Marshal(obsToJSONSlice(obs))
	if err != nil {
		return "", fmt.Errorf("marshal observations: %w", err)
	}

	id := uuid.NewString()
	_, err = d.sql.Exec(`
		INSERT INTO prediction_history
			(id, created_at, observations_json, first_buy, previous_pattern,
			 top_pattern_name, top_pattern_probability,
			 week_guaranteed_minimum, week_max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), string(obsJSON),
		boolToInt(firstBuy), previousPattern,
		top.PatternName, top.Probability,
		all.WeekGuaranteedMinimum, all.WeekMax,
	)
	if err != nil {
		return "", fmt.Errorf("insert prediction_history: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent persisted runs, newest first, up to
// limit rows.
func (d *DB) ListRuns(limit int) ([]HistoryRecord, error) {
	rows, err := d.sql.Query(`
		SELECT id, created_at, observations_json, first_buy, previous_pattern,
		       top_pattern_name, top_pattern_probability,
		       week_guaranteed_minimum, week_max
		FROM prediction_history
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list prediction_history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var (
			r          HistoryRecord
			createdAt  string
			obsJSON    string
			firstBuyIn int
		)
		if err := rows.Scan(&r.ID, &createdAt, &obsJSON, &firstBuyIn, &r.PreviousPattern,
			&r.TopPatternName, &r.TopPatternProbability,
			&r.WeekGuaranteedMinimum, &r.WeekMax); err != nil {
			return nil, fmt.Errorf("scan prediction_history: %w", err)
		}
		r.FirstBuy = firstBuyIn != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		var raw [engine.Slots]*float64
		if err := json.Unmarshal([]byte(obsJSON), &raw); err != nil {
			return nil, fmt.Errorf("unmarshal observations: %w", err)
		}
		r.Observations = obsFromJSONSlice(raw)
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// obsToJSONSlice converts an observation vector to a JSON-safe slice:
// encoding/json cannot marshal NaN, so a missing slot becomes nil.
func obsToJSONSlice(obs [engine.Slots]float64) [engine.Slots]*float64 {
	var out [engine.Slots]*float64
	for i, v := range obs {
		if !engine.IsMissing(v) {
			v := v
			out[i] = &v
		}
	}
	return out
}

// obsFromJSONSlice is the inverse of obsToJSONSlice: a nil entry becomes
// the engine's missing-observation sentinel.
func obsFromJSONSlice(raw [engine.Slots]*float64) [engine.Slots]float64 {
	var out [engine.Slots]float64
	for i, v := range raw {
		if v == nil {
			out[i] = engine.Missing()
		} else {
			out[i] = *v
		}
	}
	return out
}
