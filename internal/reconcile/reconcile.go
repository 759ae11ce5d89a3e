// Package reconcile orchestrates the "save everything that changed"
// operation across the settings domains.
//
// Saves are strictly sequential in the fixed priority order and
// fail-fast: the first failing domain stops the batch, already-saved
// domains keep their refreshed baselines, and nothing is rolled back.
// Best effort, stop on error; not transactional.
package reconcile

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/quill/internal/settings"
)

// SaveFunc persists one domain's buffer. On success it MUST replace
// that domain's baseline in st with the server's authoritative echo,
// which is what clears the dirty flag.
type SaveFunc func(ctx context.Context, st *settings.State) error

// AuditEntry records one domain save attempt for the local audit log.
type AuditEntry struct {
	Token    string
	Domain   settings.Domain
	Status   string // "ok" or "error"
	Error    string
	Started  time.Time
	Finished time.Time
}

// AuditSink receives save attempts. Sink failures are logged, never
// allowed to fail the batch.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Report describes a (possibly partial) batch save.
type Report struct {
	// Token correlates this batch across logs and the audit trail.
	Token string `json:"token"`

	// Attempted is the dirty subset in priority order at batch start.
	Attempted []settings.Domain `json:"attempted"`

	// Saved lists the domains whose baselines were refreshed.
	Saved []settings.Domain `json:"saved"`

	// Failed names the domain that stopped the batch, if any.
	Failed settings.Domain `json:"failed,omitempty"`
}

// Reconciler drives batch saves over a State.
//
// A single busy flag guards against interleaved batches: a second
// SaveAll while one is in flight is rejected with ErrSaveInFlight
// rather than queued. All other state lives in the single-threaded
// editing context, so no further locking is needed.
type Reconciler struct {
	state  *settings.State
	savers map[settings.Domain]SaveFunc
	audit  AuditSink
	busy   atomic.Bool
	now    func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithAuditSink attaches an audit trail for save attempts.
func WithAuditSink(sink AuditSink) Option {
	return func(r *Reconciler) {
		r.audit = sink
	}
}

// WithClock overrides the wall clock used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// New creates a Reconciler over st with one SaveFunc per domain the
// caller intends to save. Domains without a registered saver fail the
// batch if they ever come up dirty.
func New(st *settings.State, savers map[settings.Domain]SaveFunc, opts ...Option) *Reconciler {
	r := &Reconciler{
		state:  st,
		savers: savers,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the underlying settings state.
func (r *Reconciler) State() *settings.State {
	return r.state
}

// SaveAll saves exactly the dirty domains, sequentially, in priority
// order. An all-clean state is a successful no-op. On the first
// failure the batch stops and the error surfaces as a *SaveError;
// prior domains stay saved and the failing domain's buffer is left
// untouched so the user can retry without re-entering anything.
func (r *Reconciler) SaveAll(ctx context.Context) (Report, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return Report{}, ErrSaveInFlight
	}
	defer r.busy.Store(false)

	token := uuid.Must(uuid.NewV7()).String()
	dirty := r.state.DirtyDomains()
	report := Report{Token: token, Attempted: dirty}

	if len(dirty) == 0 {
		slog.Debug("batch save: nothing dirty", "token", token)
		return report, nil
	}

	slog.Info("batch save starting",
		"token", token,
		"dirty", len(dirty),
	)

	for _, d := range dirty {
		fn, ok := r.savers[d]
		if !ok {
			err := &SaveError{Domain: d, Err: ErrNoSaver}
			report.Failed = d
			return report, err
		}

		started := r.now()
		err := fn(ctx, r.state)
		finished := r.now()

		if err != nil {
			slog.Error("domain save failed",
				"token", token,
				"domain", d,
				"error", err,
			)
			r.recordAudit(ctx, AuditEntry{
				Token:    token,
				Domain:   d,
				Status:   "error",
				Error:    err.Error(),
				Started:  started,
				Finished: finished,
			})
			report.Failed = d
			return report, &SaveError{Domain: d, Err: err}
		}

		slog.Info("domain saved",
			"token", token,
			"domain", d,
		)
		r.recordAudit(ctx, AuditEntry{
			Token:    token,
			Domain:   d,
			Status:   "ok",
			Started:  started,
			Finished: finished,
		})
		report.Saved = append(report.Saved, d)
	}

	return report, nil
}

// Busy reports whether a batch save is currently in flight.
func (r *Reconciler) Busy() bool {
	return r.busy.Load()
}

func (r *Reconciler) recordAudit(ctx context.Context, entry AuditEntry) {
	if r.audit == nil {
		return
	}
	if err := r.audit.Record(ctx, entry); err != nil {
		// The audit trail is advisory; a sink failure must not fail
		// or mask the save result.
		slog.Warn("audit record failed",
			"token", entry.Token,
			"domain", entry.Domain,
			"error", err,
		)
	}
}
