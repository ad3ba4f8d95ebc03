// Package roster holds the single source of truth for in-memory roster
// records. Local mutators are synchronous and immediately visible; the
// remote-backed mutators are optimistic, applying whatever the adapter
// returns (confirmed or synthesized) when it returns. The store never blocks
// a caller on network latency beyond the adapter's own bounded timeout.
package roster

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/timberhoa/rollcall/internal/common"
	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
	"github.com/timberhoa/rollcall/internal/remote"
)

// ErrDuplicateID is returned by AddLocal when the identifier is already
// taken. Record ids are immutable and unique for the life of the store.
var ErrDuplicateID = errors.New("record id already exists")

// Store is safe for concurrent use. All mutation happens under one lock, so
// concurrent adapter responses are merged atomically, never torn. For the
// same id the response applied last wins, which may not be the request
// issued last; there is no sequence-number fencing.
type Store struct {
	mu       sync.Mutex
	records  []models.Record
	query    string
	group    string
	inflight int
	err      error
	pending  map[string]models.Mutation

	adapter  remote.Adapter
	snap     *Snapshot
	log      logging.Logger
	onChange func()
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot attaches persistent state. The snapshot is rewritten after
// every mutation and hydrated by Load.
func WithSnapshot(snap *Snapshot) Option {
	return func(s *Store) { s.snap = snap }
}

// WithOnChange registers a callback fired after every visible mutation.
// It is called synchronously and must not call back into the Store.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// WithSeed initializes the collection. Load overwrites seeded data when a
// non-empty snapshot exists.
func WithSeed(records []models.Record) Option {
	return func(s *Store) { s.records = append(s.records, records...) }
}

// NewStore returns a store backed by the given adapter.
func NewStore(adapter remote.Adapter, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		pending: make(map[string]models.Mutation),
		log:     log.With("component", "roster"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the collection and filter state from the snapshot, if any.
func (s *Store) Load(ctx context.Context) error {
	if s.snap == nil {
		return nil
	}

	records, err := s.snap.LoadRecords(ctx)
	if err != nil {
		return err
	}
	query, group, err := s.snap.LoadFilter(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(records) > 0 {
		s.records = records
	}
	s.query, s.group = query, group
	return nil
}

// AddLocal inserts a record synchronously, with no network involved. An
// empty id gets a locally generated one. The inserted record is returned.
func (s *Store) AddLocal(record models.Record) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if s.indexLocked(record.ID) >= 0 {
		return models.Record{}, ErrDuplicateID
	}

	s.records = append(s.records, record)
	s.persistLocked()
	s.notifyLocked()
	return record, nil
}

// UpdateLocal patches a record synchronously. The change is visible to
// derived queries before UpdateLocal returns.
func (s *Store) UpdateLocal(id string, patch models.RecordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return common.ErrNotFound
	}

	patch.ApplyTo(&s.records[i])
	s.persistLocked()
	s.notifyLocked()
	return nil
}

// RemoveLocal deletes a record synchronously. Removing an absent id is a
// no-op, so the operation is idempotent.
func (s *Store) RemoveLocal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}

	s.records = append(s.records[:i], s.records[i+1:]...)
	s.persistLocked()
	s.notifyLocked()
}

// Get returns a record by id.
func (s *Store) Get(id string) (models.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Record{}, false
	}
	return s.records[i], true
}

// All returns a copy of the current collection.
func (s *Store) All() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Record(nil), s.records...)
}

// FetchAll replaces the whole collection with the service's authoritative
// list. On adapter failure the collection is left exactly as it was and the
// failure is observable only through Err.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	records, err := s.adapter.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		s.err = err
		s.log.Warn(ctx, "fetch failed, keeping local state", "err", err)
		s.notifyLocked()
		return err
	}

	s.err = nil
	s.records = records
	s.persistLocked()
	s.notifyLocked()
	return nil
}

// CreateRemote submits a new record through the adapter and applies whatever
// comes back: the server-assigned record, or a synthesized one when the
// service could not confirm. Only a caller-side error (cancelled context)
// leaves the collection untouched, recorded in Err.
func (s *Store) CreateRemote(ctx context.Context, payload models.Record) (models.Record, error) {
	// creates have no target id yet; track them under a one-off key
	key := "create/" + uuid.NewString()
	s.beginRemote(models.Mutation{
		Kind:    models.MutationCreate,
		Payload: patchFromRecord(payload),
		Origin:  models.OriginLocal,
	}, key)

	created, err := s.adapter.Create(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	delete(s.pending, key)

	if err != nil {
		s.err = err
		s.notifyLocked()
		return models.Record{}, err
	}

	s.err = nil
	s.upsertLocked(created)
	s.persistLocked()
	s.notifyLocked()
	return created, nil
}

// SaveRemote patches a record through the adapter and applies the response.
// Responses are merged last-writer-wins per id.
func (s *Store) SaveRemote(ctx context.Context, id string, patch models.RecordPatch) error {
	current, ok := s.Get(id)
	if !ok {
		return common.ErrNotFound
	}

	s.beginRemote(models.Mutation{
		Kind:     models.MutationUpdate,
		TargetID: id,
		Payload:  patch,
		Origin:   models.OriginLocal,
	}, id)

	updated, err := s.adapter.Update(ctx, current, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	delete(s.pending, id)

	if err != nil {
		s.err = err
		s.notifyLocked()
		return err
	}

	s.err = nil
	s.upsertLocked(updated)
	s.persistLocked()
	s.notifyLocked()
	return nil
}

// RemoveRemote deletes locally right away and tells the service best-effort.
// The local deletion is never rolled back, even when the service was
// unreachable.
func (s *Store) RemoveRemote(ctx context.Context, id string) error {
	s.beginRemote(models.Mutation{
		Kind:     models.MutationDelete,
		TargetID: id,
		Origin:   models.OriginLocal,
	}, id)

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.records = append(s.records[:i], s.records[i+1:]...)
		s.persistLocked()
	}
	s.mu.Unlock()

	err := s.adapter.Remove(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	delete(s.pending, id)
	if err != nil {
		// adapter contract says failures are swallowed; record it anyway
		s.err = err
	} else {
		s.err = nil
	}
	s.notifyLocked()
	return nil
}

// SetFilter stores the current query/group filter so it survives reloads.
func (s *Store) SetFilter(query, group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query, s.group = query, group
	if s.snap != nil {
		if err := s.snap.SaveFilter(context.Background(), query, group); err != nil {
			s.log.Warn(context.Background(), "failed to persist filter state", "err", err)
		}
	}
	s.notifyLocked()
}

// Filter returns the persisted filter state.
func (s *Store) Filter() (query, group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.group
}

// Filtered returns the records whose DisplayName contains query
// case-insensitively (when query is non-empty) and whose Group equals group
// (when group is non-empty). It is computed on demand from the live
// collection; there is no cache to go stale.
func (s *Store) Filtered(query, group string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	result := make([]models.Record, 0, len(s.records))
	for _, r := range s.records {
		if q != "" && !strings.Contains(strings.ToLower(r.DisplayName), q) {
			continue
		}
		if group != "" && r.Group != group {
			continue
		}
		result = append(result, r)
	}
	return result
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// GroupCount returns the number of distinct group tags.
func (s *Store) GroupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		groups[r.Group] = struct{}{}
	}
	return len(groups)
}

// PresentCount returns how many records are currently marked present.
func (s *Store) PresentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.records {
		if r.Status == models.StatusPresent {
			n++
		}
	}
	return n
}

// Loading reports whether any remote-backed operation is in flight. The flag
// clears only once every overlapping operation has finished.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the failure recorded by the most recent remote-backed
// operation, nil after a success.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pending returns the in-flight remote mutations, for diagnostics.
func (s *Store) Pending() []models.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Mutation, 0, len(s.pending))
	for _, m := range s.pending {
		result = append(result, m)
	}
	return result
}

// Reset clears the collection, the filter state, and the snapshot.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.query, s.group = "", ""
	s.err = nil
	s.pending = make(map[string]models.Mutation)

	if s.snap != nil {
		if err := s.snap.Reset(ctx); err != nil {
			return err
		}
	}
	s.notifyLocked()
	return nil
}

func (s *Store) beginRemote(m models.Mutation, key string) {
	s.mu.Lock()
	s.inflight++
	// a second mutation on the same id simply replaces the tracked entry;
	// the store applies whichever response lands last
	s.pending[key] = m
	s.mu.Unlock()
}

func (s *Store) indexLocked(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) upsertLocked(record models.Record) {
	if i := s.indexLocked(record.ID); i >= 0 {
		s.records[i] = record
		return
	}
	s.records = append(s.records, record)
}

func (s *Store) persistLocked() {
	if s.snap == nil {
		return
	}
	records := append([]models.Record(nil), s.records...)
	if err := s.snap.SaveRecords(context.Background(), records); err != nil {
		s.log.Warn(context.Background(), "failed to persist snapshot", "err", err)
	}
}

func (s *Store) notifyLocked() {
	if s.onChange != nil {
		s.onChange()
	}
}

func patchFromRecord(r models.Record) models.RecordPatch {
	return models.RecordPatch{
		DisplayName: &r.DisplayName,
		Group:       &r.Group,
		Status:      &r.Status,
	}
}
