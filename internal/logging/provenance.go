package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-event
// LogEvent writes a learning event to the learning_log table.
func LogEvent(db *sql.DB, entry LearningEvent) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var wordsJSON string
	if len(entry.Words) > 0 {
		b, err := json.Marshal(entry.Words)
		if err != nil {
			return fmt.Errorf("marshal words: %w", err)
		}
		wordsJSON = string(b)
	}

	_, err := db.Exec(
		`INSERT INTO learning_log (turn_id, kind, words_json, axis, confidence, signals_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TurnID,
		string(entry.Kind),
		nullIfEmpty(wordsJSON),
		nullIfEmpty(entry.Axis),
		entry.Confidence,
		nullIfEmpty(entry.SignalsJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region list-events
// ListEvents returns the most recent learning events, newest first.
func ListEvents(db *sql.DB, limit int) ([]LearningEvent, error) {
	rows, err := db.Query(
		`SELECT id, turn_id, kind, words_json, axis, confidence, signals_json, decision, reason, created_at
		 FROM learning_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []LearningEvent
	for rows.Next() {
		var ev LearningEvent
		var kind string
		var wordsJSON, axis, signals, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&ev.ID, &ev.TurnID, &kind, &wordsJSON, &axis, &ev.Confidence,
			&signals, &ev.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		ev.Kind = EventKind(kind)
		if wordsJSON.Valid {
			if err := json.Unmarshal([]byte(wordsJSON.String), &ev.Words); err != nil {
				return nil, fmt.Errorf("unmarshal words of event %d: %w", ev.ID, err)
			}
		}
		ev.Axis = axis.String
		ev.SignalsJSON = signals.String
		ev.Reason = reason.String
		ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// #endregion list-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
