package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
)

// HTTPAdapter implements Adapter over the roster service REST contract:
//
//	GET    {base}/records
//	POST   {base}/records
//	PATCH  {base}/records/{id}
//	DELETE {base}/records/{id}
//
// Every call is bounded by the configured timeout.
type HTTPAdapter struct {
	base   string
	client *http.Client
	log    logging.Logger
}

// NewHTTPAdapter returns an adapter for the service at base. A non-positive
// timeout falls back to 5s.
func NewHTTPAdapter(base string, timeout time.Duration, log logging.Logger) *HTTPAdapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPAdapter{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log.With("component", "remote"),
	}
}

// List fetches the authoritative collection. Unlike the mutating operations
// it reports transport failures: the caller keeps its local state on error.
func (a *HTTPAdapter) List(ctx context.Context) ([]models.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/records", nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list records: unexpected status %s", resp.Status)
	}

	var records []models.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("list records: decode: %w", err)
	}
	return records, nil
}

// Create submits a new record. When the service cannot confirm the write, a
// record is synthesized from the draft with a locally generated id so the
// caller can proceed.
func (a *HTTPAdapter) Create(ctx context.Context, draft models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}

	payload := struct {
		DisplayName string        `json:"displayName"`
		Group       string        `json:"group"`
		Status      models.Status `json:"status"`
	}{draft.DisplayName, draft.Group, draft.Status}

	var created models.Record
	if err := a.do(ctx, http.MethodPost, a.base+"/records", payload, &created); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Record{}, ctxErr
		}
		a.log.Warn(ctx, "create not confirmed, synthesizing record", "err", err)
		created = draft
		created.ID = uuid.NewString()
	}
	return created, nil
}

// Update patches an existing record. When the service cannot confirm, the
// patch is merged onto the known fields and returned unconfirmed.
func (a *HTTPAdapter) Update(ctx context.Context, current models.Record, patch models.RecordPatch) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}

	var updated models.Record
	if err := a.do(ctx, http.MethodPatch, a.base+"/records/"+current.ID, patch, &updated); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Record{}, ctxErr
		}
		a.log.Warn(ctx, "update not confirmed, merging locally", "id", current.ID, "err", err)
		patch.ApplyTo(&current)
		return current, nil
	}
	return updated, nil
}

// Remove deletes a record, fire and forget. Failures are logged and swallowed.
func (a *HTTPAdapter) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.base+"/records/"+id, nil)
	if err != nil {
		return nil
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn(ctx, "remove not confirmed", "id", id, "err", err)
		return nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.Warn(ctx, "remove not confirmed", "id", id, "status", resp.Status)
	}
	return nil
}

// do issues one JSON request and decodes a JSON record response.
func (a *HTTPAdapter) do(ctx context.Context, method, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
