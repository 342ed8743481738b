package models

// HistoryEntry pairs a past assessment with the full input text that
// produced it, so the client can reload both later.
type HistoryEntry struct {
	Assessment MatchAssessment `json:"assessment"`
	Input      string          `json:"job_description"`
}
