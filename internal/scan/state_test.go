package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		event  eventKind
		want   State
		wantOK bool
	}{
		{"start from idle", StateIdle, evStart, StateAcquiring, true},
		{"start while scanning rejected", StateScanning, evStart, StateScanning, false},
		{"start while acquiring rejected", StateAcquiring, evStart, StateAcquiring, false},
		{"start while error rejected", StateError, evStart, StateError, false},
		{"acquired", StateAcquiring, evAcquired, StateScanning, true},
		{"acquire failed", StateAcquiring, evAcquireFailed, StateError, true},
		{"result while scanning", StateScanning, evResult, StateResolving, true},
		{"result while idle rejected", StateIdle, evResult, StateIdle, false},
		{"resolved", StateResolving, evResolved, StateIdle, true},
		{"resolve failed", StateResolving, evResolveFailed, StateError, true},
		{"stop from idle", StateIdle, evStop, StateIdle, true},
		{"stop from scanning", StateScanning, evStop, StateIdle, true},
		{"stop from resolving", StateResolving, evStop, StateIdle, true},
		{"stop from error", StateError, evStop, StateIdle, true},
		{"ack from error", StateError, evAck, StateIdle, true},
		{"ack from idle rejected", StateIdle, evAck, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := transition(tt.from, tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "acquiring", StateAcquiring.String())
	assert.Equal(t, "scanning", StateScanning.String())
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "error", StateError.String())
}
