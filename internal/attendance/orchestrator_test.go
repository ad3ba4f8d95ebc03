package attendance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
	"github.com/timberhoa/rollcall/internal/roster"
)

type nopAdapter struct{}

func (nopAdapter) List(ctx context.Context) ([]models.Record, error) { return nil, nil }

func (nopAdapter) Create(ctx context.Context, draft models.Record) (models.Record, error) {
	return draft, nil
}

func (nopAdapter) Update(ctx context.Context, current models.Record, patch models.RecordPatch) (models.Record, error) {
	patch.ApplyTo(&current)
	return current, nil
}

func (nopAdapter) Remove(ctx context.Context, id string) error { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newFixture(t *testing.T) (*Orchestrator, *roster.Store) {
	t.Helper()
	store := roster.NewStore(nopAdapter{}, testLogger(), roster.WithSeed([]models.Record{
		{ID: "1", DisplayName: "A", Group: "12A1", Status: models.StatusAbsent},
	}))
	return New(store, 0.8, testLogger()), store
}

func TestOnScanSucceeded_MarksPresent(t *testing.T) {
	o, store := newFixture(t)

	err := o.OnScanSucceeded(context.Background(), models.CaptureResult{
		SubjectID: "1", Confidence: 0.95, CapturedAt: time.Now(),
	})
	require.NoError(t, err)

	got, ok := store.Get("1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPresent, got.Status)
	assert.Equal(t, 1, store.PresentCount())
}

func TestOnScanSucceeded_UnknownSubjectMutatesNothing(t *testing.T) {
	o, store := newFixture(t)
	before := store.All()

	err := o.OnScanSucceeded(context.Background(), models.CaptureResult{
		SubjectID: "99", Confidence: 0.95,
	})
	require.ErrorIs(t, err, ErrUnknownSubject)
	assert.Equal(t, before, store.All())
}

func TestOnScanSucceeded_LowConfidenceIsAFailure(t *testing.T) {
	o, store := newFixture(t)

	err := o.OnScanSucceeded(context.Background(), models.CaptureResult{
		SubjectID: "1", Confidence: 0.5,
	})
	require.ErrorIs(t, err, ErrLowConfidence)

	got, _ := store.Get("1")
	assert.Equal(t, models.StatusAbsent, got.Status, "a sub-threshold result must not mark anyone present")
}

func TestManualOverride_BypassesScan(t *testing.T) {
	o, store := newFixture(t)

	require.NoError(t, o.ManualOverride(context.Background(), "1"))

	got, _ := store.Get("1")
	assert.Equal(t, models.StatusPresent, got.Status)

	require.ErrorIs(t, o.ManualOverride(context.Background(), "99"), ErrUnknownSubject)
}
