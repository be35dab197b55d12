package logging

import "time"

// #region event-kind
// EventKind names what touched the lexicon.
type EventKind string

const (
	KindContext    EventKind = "context"
	KindCorrection EventKind = "correction"
	KindDecay      EventKind = "decay"
	KindReinforce  EventKind = "reinforce"
)

// #endregion event-kind

// #region learning-event
// LearningEvent is a single row in the learning_log table.
type LearningEvent struct {
	ID          int64
	TurnID      string
	Kind        EventKind
	Words       []string
	Axis        string
	Confidence  float64
	SignalsJSON string
	Decision    string // "commit" | "reject" | "no_op"
	Reason      string
	CreatedAt   time.Time
}

// #endregion learning-event

// #region turn-record
// TurnRecord captures what the gate saw on one turn. Serialized as JSON into
// learning_log.signals_json so a decision can be explained afterwards.
type TurnRecord struct {
	Text     string    `json:"text"`
	Vector   []float64 `json:"vector"`
	Dominant string    `json:"dominant,omitempty"`

	ScanAxis      string  `json:"scan_axis,omitempty"`
	ScanIntensity float64 `json:"scan_intensity"`

	Candidates []string `json:"candidates,omitempty"`

	GateAction     string   `json:"gate_action"`
	GateSource     string   `json:"gate_source,omitempty"` // "lexicon" | "scanner"
	GateConfidence float64  `json:"gate_confidence"`
	GateVetoes     []string `json:"gate_vetoes,omitempty"`
	GateReason     string   `json:"gate_reason"`
}

// #endregion turn-record
