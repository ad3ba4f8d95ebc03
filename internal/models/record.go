// Package models defines the roster record types shared across the console.
package models

// Status is the attendance state of a roster record. The remote service
// contract allows the extended set; the console itself only ever writes
// Present and Absent.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Valid reports whether s is one of the known attendance states.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Record is one roster entry. ID is assigned once (by the remote service or
// synthesized locally) and never changes afterwards.
type Record struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Group       string `json:"group"`
	Status      Status `json:"status"`
}

// RecordPatch carries a partial update. Nil fields are left unchanged.
type RecordPatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	Group       *string `json:"group,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// ApplyTo merges the patch onto r in place. The record ID is never touched.
func (p RecordPatch) ApplyTo(r *Record) {
	if p.DisplayName != nil {
		r.DisplayName = *p.DisplayName
	}
	if p.Group != nil {
		r.Group = *p.Group
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}
