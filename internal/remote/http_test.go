package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestList_ReturnsServerRecords(t *testing.T) {
	want := []models.Record{
		{ID: "1", DisplayName: "An", Group: "12A1", Status: models.StatusAbsent},
		{ID: "2", DisplayName: "Binh", Group: "12A2", Status: models.StatusPresent},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/records", r.URL.Path)
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	got, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestList_TransportFailureIsReported(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	_, err := a.List(context.Background())
	require.Error(t, err)

	ts.Close()
	_, err = a.List(context.Background())
	require.Error(t, err, "connection refused must surface as an error")
}

func TestCreate_UsesServerRecordOnSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "X", payload["displayName"])

		_ = json.NewEncoder(w).Encode(models.Record{
			ID: "srv-7", DisplayName: "X", Group: "G", Status: models.StatusAbsent,
		})
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	created, err := a.Create(context.Background(), models.Record{DisplayName: "X", Group: "G", Status: models.StatusAbsent})
	require.NoError(t, err)
	assert.Equal(t, "srv-7", created.ID)
}

func TestCreate_SynthesizesOnFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	draft := models.Record{DisplayName: "X", Group: "G", Status: models.StatusAbsent}

	created, err := a.Create(context.Background(), draft)
	require.NoError(t, err, "transport failure must not escape Create")
	assert.NotEmpty(t, created.ID, "fallback record needs a synthesized id")
	assert.Equal(t, "X", created.DisplayName)
	assert.Equal(t, "G", created.Group)
	assert.Equal(t, models.StatusAbsent, created.Status)
}

func TestCreate_CancelledContextPropagates(t *testing.T) {
	a := NewHTTPAdapter("http://127.0.0.1:0", time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Create(ctx, models.Record{DisplayName: "X"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestUpdate_UsesServerRecordOnSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/records/1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.Record{
			ID: "1", DisplayName: "An", Group: "12A1", Status: models.StatusPresent,
		})
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	status := models.StatusPresent
	updated, err := a.Update(context.Background(),
		models.Record{ID: "1", DisplayName: "An", Group: "12A1", Status: models.StatusAbsent},
		models.RecordPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, updated.Status)
}

func TestUpdate_MergesPatchOnFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	status := models.StatusPresent
	current := models.Record{ID: "1", DisplayName: "An", Group: "12A1", Status: models.StatusAbsent}

	updated, err := a.Update(context.Background(), current, models.RecordPatch{Status: &status})
	require.NoError(t, err, "transport failure must not escape Update")
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "An", updated.DisplayName, "known fields survive the merge")
	assert.Equal(t, models.StatusPresent, updated.Status, "patch is applied locally")
}

func TestRemove_SwallowsFailures(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, time.Second, testLogger())
	require.NoError(t, a.Remove(context.Background(), "42"))
	assert.Equal(t, "/records/42", gotPath)

	ts.Close()
	require.NoError(t, a.Remove(context.Background(), "42"), "unreachable service is still not an error")
}

func TestAdapter_RespectsBoundedTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode([]models.Record{})
	}))
	defer ts.Close()

	a := NewHTTPAdapter(ts.URL, 20*time.Millisecond, testLogger())

	start := time.Now()
	_, err := a.List(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "the call must be cut off by the timeout")
}
