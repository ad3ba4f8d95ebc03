package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordPatch_ApplyTo(t *testing.T) {
	r := Record{ID: "1", DisplayName: "An", Group: "12A1", Status: StatusAbsent}

	status := StatusPresent
	name := "An Nguyen"
	RecordPatch{DisplayName: &name, Status: &status}.ApplyTo(&r)

	assert.Equal(t, "1", r.ID, "id is never patched")
	assert.Equal(t, "An Nguyen", r.DisplayName)
	assert.Equal(t, "12A1", r.Group, "nil fields stay untouched")
	assert.Equal(t, StatusPresent, r.Status)
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("gone").Valid())
	assert.False(t, Status("").Valid())
}
