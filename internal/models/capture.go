package models

import "time"

// CaptureResult is the opaque outcome of an external recognition pass.
// SubjectID references a Record.ID; Confidence is normalized to [0,1].
// Whether a result is good enough to act on is the caller's policy,
// not a property of the result itself.
type CaptureResult struct {
	SubjectID  string    `json:"subjectId"`
	Confidence float64   `json:"confidence"`
	CapturedAt time.Time `json:"capturedAt"`
}
