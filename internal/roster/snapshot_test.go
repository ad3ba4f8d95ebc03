package roster

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/timberhoa/rollcall/internal/models"
)

func setupSnapshot(t *testing.T) (*Snapshot, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	snap := NewSnapshot(db)
	require.NoError(t, snap.Init(context.Background()))
	return snap, path
}

func reopenSnapshot(t *testing.T, path string) *Snapshot {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshot(db)
}

func TestSnapshot_SaveAndLoadRoundTrip(t *testing.T) {
	snap, path := setupSnapshot(t)
	ctx := context.Background()

	want := seeded()
	require.NoError(t, snap.SaveRecords(ctx, want))
	require.NoError(t, snap.SaveFilter(ctx, "an", "12A1"))

	// a fresh handle sees the persisted state, like a console reload would
	reopened := reopenSnapshot(t, path)

	got, err := reopened.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got, "records come back in insertion order")

	q, g, err := reopened.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "an", q)
	assert.Equal(t, "12A1", g)
}

func TestSnapshot_SaveReplacesPreviousState(t *testing.T) {
	snap, _ := setupSnapshot(t)
	ctx := context.Background()

	require.NoError(t, snap.SaveRecords(ctx, seeded()))
	require.NoError(t, snap.SaveRecords(ctx, seeded()[:1]))

	got, err := snap.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSnapshot_LoadFilterWithoutSaveIsEmpty(t *testing.T) {
	snap, _ := setupSnapshot(t)

	q, g, err := snap.LoadFilter(context.Background())
	require.NoError(t, err)
	assert.Empty(t, q)
	assert.Empty(t, g)
}

func TestSnapshot_Reset(t *testing.T) {
	snap, _ := setupSnapshot(t)
	ctx := context.Background()

	require.NoError(t, snap.SaveRecords(ctx, seeded()))
	require.NoError(t, snap.SaveFilter(ctx, "q", "g"))
	require.NoError(t, snap.Reset(ctx))

	got, err := snap.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	q, g, err := snap.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Empty(t, q)
	assert.Empty(t, g)
}

func TestStore_PersistsAcrossReloads(t *testing.T) {
	snap, path := setupSnapshot(t)
	ctx := context.Background()

	s := NewStore(&fakeAdapter{}, testLogger(), WithSnapshot(snap))
	_, err := s.AddLocal(models.Record{ID: "1", DisplayName: "An", Group: "12A1", Status: models.StatusAbsent})
	require.NoError(t, err)
	s.SetFilter("an", "")

	// simulate a reload: new store over the same database file
	s2 := NewStore(&fakeAdapter{}, testLogger(), WithSnapshot(reopenSnapshot(t, path)))
	require.NoError(t, s2.Load(ctx))

	got, ok := s2.Get("1")
	require.True(t, ok)
	assert.Equal(t, "An", got.DisplayName)

	q, _ := s2.Filter()
	assert.Equal(t, "an", q)
}
