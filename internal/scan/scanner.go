package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/timberhoa/rollcall/internal/capture"
	"github.com/timberhoa/rollcall/internal/logging"
	"github.com/timberhoa/rollcall/internal/models"
)

var (
	// ErrScanInProgress is returned by StartScan outside Idle.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrNotScanning is returned by Resolve when no scan is awaiting a result.
	ErrNotScanning = errors.New("no scan awaiting a result")
)

// Resolver maps a capture result onto a roster record. A non-nil error marks
// the scan attempt as failed; the error text becomes the diagnostic reason.
type Resolver interface {
	Resolve(ctx context.Context, res models.CaptureResult) error
}

// EventKind classifies scanner notifications.
type EventKind string

const (
	EventStateChanged  EventKind = "state_changed"
	EventScanSucceeded EventKind = "scan_succeeded"
	EventScanFailed    EventKind = "scan_failed"
)

// Event is delivered to the observer on state changes and terminal outcomes.
// Every scan attempt that ends in success or error produces exactly one
// terminal event; a cancelled attempt produces none.
type Event struct {
	Kind   EventKind             `json:"kind"`
	State  State                 `json:"-"`
	Phase  string                `json:"state"`
	Reason string                `json:"reason,omitempty"`
	Result *models.CaptureResult `json:"result,omitempty"`
}

// Observer receives scanner events. It is called synchronously and must not
// call back into the Scanner.
type Observer func(Event)

// FrameSink consumes live frames while a scan session is active.
type FrameSink func(capture.Frame)

// Scanner drives one scan attempt at a time over an exclusively held capture
// device. Only one session ever exists at a time: StartScan refuses to run
// outside Idle.
type Scanner struct {
	mu          sync.Mutex
	state       State
	lastErr     string
	device      capture.Device
	constraints capture.Constraints
	session     capture.Session
	resolver    Resolver
	observer    Observer
	sink        FrameSink
	log         logging.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConstraints sets the device constraints requested on every StartScan.
func WithConstraints(c capture.Constraints) Option {
	return func(s *Scanner) { s.constraints = c }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithFrameSink registers a live frame consumer.
func WithFrameSink(f FrameSink) Option {
	return func(s *Scanner) { s.sink = f }
}

// New returns an Idle scanner over the given device.
func New(device capture.Device, resolver Resolver, log logging.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		state:    StateIdle,
		device:   device,
		resolver: resolver,
		log:      log.With("component", "scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the diagnostic from the most recent failure, if any.
func (s *Scanner) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// StartScan acquires the device and moves Idle -> Acquiring -> Scanning.
// Outside Idle it is rejected with ErrScanInProgress and nothing happens.
// Device errors move the scanner to Error and end the attempt.
func (s *Scanner) StartScan(ctx context.Context) error {
	s.mu.Lock()
	next, ok := transition(s.state, evStart)
	if !ok {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	s.setStateLocked(next)
	s.mu.Unlock()

	sess, err := s.device.Acquire(ctx, s.constraints)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAcquiring {
		// stopped while the acquire was in flight; the handle must not leak
		if sess != nil {
			sess.Release()
		}
		return nil
	}

	if err != nil {
		s.lastErr = err.Error()
		next, _ = transition(s.state, evAcquireFailed)
		s.setStateLocked(next)
		s.emitLocked(Event{Kind: EventScanFailed, Reason: s.lastErr})
		s.log.Warn(ctx, "device acquisition failed", "err", err)
		return err
	}

	s.session = sess
	next, _ = transition(s.state, evAcquired)
	s.setStateLocked(next)
	if s.sink != nil {
		go s.pump(sess)
	}
	s.log.Debug(ctx, "scan started")
	return nil
}

// Resolve feeds a capture result into a running scan. The device is released
// before the resolver runs; a resolver error ends the attempt in Error, a nil
// error returns the scanner to Idle. A StopScan racing with Resolve wins:
// the pending outcome is discarded.
func (s *Scanner) Resolve(ctx context.Context, res models.CaptureResult) error {
	s.mu.Lock()
	next, ok := transition(s.state, evResult)
	if !ok {
		s.mu.Unlock()
		return ErrNotScanning
	}
	s.releaseLocked()
	s.setStateLocked(next)
	s.mu.Unlock()

	err := s.resolver.Resolve(ctx, res)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResolving {
		// cancelled mid-resolve; the result is discarded
		return nil
	}

	if err != nil {
		s.lastErr = err.Error()
		next, _ = transition(s.state, evResolveFailed)
		s.setStateLocked(next)
		s.emitLocked(Event{Kind: EventScanFailed, Reason: err.Error(), Result: &res})
		return err
	}

	s.lastErr = ""
	next, _ = transition(s.state, evResolved)
	s.setStateLocked(next)
	s.emitLocked(Event{Kind: EventScanSucceeded, Result: &res})
	return nil
}

// StopScan cancels whatever is in progress and returns the scanner to Idle.
// The device is released before control returns. Safe to call in any state,
// any number of times.
func (s *Scanner) StopScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	if s.state != StateIdle {
		next, _ := transition(s.state, evStop)
		s.setStateLocked(next)
	}
	s.lastErr = ""
}

// Acknowledge clears the Error state after the failure has been surfaced.
// Outside Error it is a no-op.
func (s *Scanner) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := transition(s.state, evAck)
	if !ok {
		return
	}
	s.lastErr = ""
	s.setStateLocked(next)
}

func (s *Scanner) releaseLocked() {
	if s.session != nil {
		s.session.Release()
		s.session = nil
	}
}

func (s *Scanner) setStateLocked(next State) {
	if next == s.state {
		return
	}
	s.state = next
	s.emitLocked(Event{Kind: EventStateChanged})
}

func (s *Scanner) emitLocked(e Event) {
	if s.observer == nil {
		return
	}
	e.State = s.state
	e.Phase = s.state.String()
	s.observer(e)
}

func (s *Scanner) pump(sess capture.Session) {
	for f := range sess.Frames() {
		s.sink(f)
	}
}
