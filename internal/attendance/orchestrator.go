// Package attendance glues a terminal scan outcome to a roster mutation.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
	"github.com/timberhoa/rollcall/internal/roster"
)

var (
	// ErrUnknownSubject means the capture result references no roster record.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrLowConfidence means the recognition score fell below the configured
	// acceptance threshold.
	ErrLowConfidence = errors.New("confidence below threshold")
)

// Orchestrator turns recognition outcomes into attendance marks. The local
// mutation is applied instantly; persistence to the remote service is fire
// and forget.
type Orchestrator struct {
	store     *roster.Store
	threshold float64
	log       logging.Logger
}

// New returns an orchestrator over the given store. threshold is the minimum
// confidence a capture result needs to count as a match.
func New(store *roster.Store, threshold float64, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		threshold: threshold,
		log:       log.With("component", "attendance"),
	}
}

// OnScanSucceeded marks the matched record present. Sub-threshold results
// and unknown subjects are scan failures, not successes.
func (o *Orchestrator) OnScanSucceeded(ctx context.Context, res models.CaptureResult) error {
	if res.Confidence < o.threshold {
		return fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidence, res.Confidence, o.threshold)
	}

	if _, ok := o.store.Get(res.SubjectID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, res.SubjectID)
	}

	if err := o.markPresent(ctx, res.SubjectID); err != nil {
		return err
	}

	o.log.Info(ctx, "attendance recorded", "subject", res.SubjectID, "confidence", res.Confidence)
	return nil
}

// Resolve implements scan.Resolver so the orchestrator can be wired directly
// into the scanner.
func (o *Orchestrator) Resolve(ctx context.Context, res models.CaptureResult) error {
	return o.OnScanSucceeded(ctx, res)
}

// OnScanFailed surfaces a failed attempt. No store mutation happens here;
// the scanner already holds the diagnostic for the operator.
func (o *Orchestrator) OnScanFailed(ctx context.Context, reason error) {
	o.log.Warn(ctx, "scan failed", "reason", reason)
}

// ManualOverride marks a record present without a scan, the fallback path
// when capture is unavailable.
func (o *Orchestrator) ManualOverride(ctx context.Context, id string) error {
	if _, ok := o.store.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, id)
	}
	if err := o.markPresent(ctx, id); err != nil {
		return err
	}
	o.log.Info(ctx, "manual override", "subject", id)
	return nil
}

func (o *Orchestrator) markPresent(ctx context.Context, id string) error {
	status := models.StatusPresent
	patch := models.RecordPatch{Status: &status}

	// instant local mark; derived counts see it immediately
	if err := o.store.UpdateLocal(id, patch); err != nil {
		return err
	}

	// best-effort persistence; a late or lost response never blocks the scan
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := o.store.SaveRemote(ctx, id, patch); err != nil {
			o.log.Warn(ctx, "remote save not confirmed", "subject", id, "err", err)
		}
	}()

	return nil
}
