// Package remote talks to the roster service and shields callers from its
// unreliability: every mutating operation produces a usable record even when
// the service is slow, unreachable, or answers with an error.
package remote

import (
	"context"

	"github.com/timberhoa/rollcall/internal/models"
)

// Adapter is the synchronization contract the roster store depends on.
//
// Failure policy, per operation:
//   - List: transport failures are reported as errors so the caller can keep
//     its current state.
//   - Create: on failure a record is synthesized from the submitted fields
//     with a locally generated identifier. The caller proceeds optimistically;
//     the write is unconfirmed.
//   - Update: on failure the patch is merged onto the known fields and
//     returned, with no confirmation that the service applied it.
//   - Remove: best effort. Failures are swallowed; the local deletion is
//     never rolled back.
//
// The only errors implementations may return from Create and Update are
// caller-side ones (cancelled context). Transport errors never propagate.
type Adapter interface {
	List(ctx context.Context) ([]models.Record, error)
	Create(ctx context.Context, draft models.Record) (models.Record, error)
	Update(ctx context.Context, current models.Record, patch models.RecordPatch) (models.Record, error)
	Remove(ctx context.Context, id string) error
}
