package memory

import "time"

// #region response
// Response is a stored reply together with the emotion vector it was analysed to.
type Response struct {
	ID        string
	Text      string
	Axis      string    // dominant axis at storage time, "" when none
	Vector    []float64 // one component per axis of the profile it was stored under
	CreatedAt time.Time
}

// #endregion response

// #region match
// Match is a response ranked by cosine similarity to a query vector.
type Match struct {
	Response
	Similarity float64
}

// #endregion match
