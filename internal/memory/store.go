// Package memory stores companion responses in SQLite and retrieves the one
// whose emotion vector best resonates with a query.
package memory

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrEmptyText = errors.New("response text is empty")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS responses (
	id          TEXT PRIMARY KEY,
	text        TEXT NOT NULL,
	axis        TEXT,
	vector      BLOB NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_axis ON responses(axis);

CREATE TABLE IF NOT EXISTS learning_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id       TEXT NOT NULL,
	kind          TEXT NOT NULL,
	words_json    TEXT,
	axis          TEXT,
	confidence    REAL NOT NULL DEFAULT 0,
	signals_json  TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store manages stored responses in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases coherent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the learning log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region add
// Add stores a response and returns it with its generated ID.
func (s *Store) Add(text, axis string, vec []float64) (Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Response{}, ErrEmptyText
	}
	rec := Response{
		ID:        uuid.New().String(),
		Text:      text,
		Axis:      axis,
		Vector:    append([]float64(nil), vec...),
		CreatedAt: time.Now().UTC(),
	}

	var axisPtr interface{}
	if axis != "" {
		axisPtr = axis
	}
	_, err := s.db.Exec(
		`INSERT INTO responses (id, text, axis, vector, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Text, axisPtr, encodeVector(rec.Vector), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Response{}, fmt.Errorf("insert response: %w", err)
	}
	return rec, nil
}

// #endregion add

// #region get
// Get retrieves a response by ID.
func (s *Store) Get(id string) (Response, error) {
	row := s.db.QueryRow(
		`SELECT id, text, axis, vector, created_at FROM responses WHERE id = ?`, id,
	)
	rec, err := scanResponse(row)
	if err != nil {
		return Response{}, fmt.Errorf("get response %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get

// #region nearest
// Nearest returns up to k responses ranked by cosine similarity to vec, best
// first. Responses stored with a different dimensionality or a zero vector are
// skipped. Equal similarities keep insertion order.
func (s *Store) Nearest(vec []float64, k int) ([]Match, error) {
	if k <= 0 || norm(vec) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT id, text, axis, vector, created_at FROM responses ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		rec, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if len(rec.Vector) != len(vec) {
			continue
		}
		sim, ok := cosine(vec, rec.Vector)
		if !ok {
			continue
		}
		matches = append(matches, Match{Response: rec, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// #endregion nearest

// #region count
// Count returns the number of stored responses.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// CountByAxis returns the number of stored responses per dominant axis.
func (s *Store) CountByAxis() (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT axis, COUNT(*) FROM responses WHERE axis IS NOT NULL GROUP BY axis`,
	)
	if err != nil {
		return nil, fmt.Errorf("count by axis: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var axis string
		var n int
		if err := rows.Scan(&axis, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out[axis] = n
	}
	return out, rows.Err()
}

// #endregion count

// #region helpers
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResponse(r rowScanner) (Response, error) {
	var rec Response
	var axis sql.NullString
	var vecBlob []byte
	var createdStr string
	if err := r.Scan(&rec.ID, &rec.Text, &axis, &vecBlob, &createdStr); err != nil {
		return Response{}, err
	}
	if axis.Valid {
		rec.Axis = axis.String
	}
	rec.Vector = decodeVector(vecBlob)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// cosine reports false when either vector is zero.
func cosine(a, b []float64) (float64, bool) {
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0, false
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb), true
}

// #endregion helpers

// #region vector-encoding
func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion vector-encoding
