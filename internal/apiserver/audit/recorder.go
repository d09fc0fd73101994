package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit/dedup"
	"github.com/dadosqualitativos/portal-api/internal/apiserver/database"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/pkg/metrics"
)

var (
	ErrInvalidAction = errors.New("invalid audit action")
	ErrInvalidModule = errors.New("invalid audit module")
)

// Actor identifies who performed an audited operation. ID is nil for
// anonymous actors, e.g. failed logins for unknown accounts.
type Actor struct {
	ID   *string
	Name string
}

// Filter narrows a Query. Zero values mean "no constraint".
type Filter struct {
	From      *time.Time
	To        *time.Time
	ActorName string
	Action    cnst.Action
	Module    cnst.Module
	Page      int
	PageSize  int
}

// Page is one page of audit entries plus pagination totals.
type Page struct {
	Entries  []*database.AuditEntry
	Total    int64
	Page     int
	PageSize int
	Pages    int
}

// Recorder persists audit entries. Recording is best effort: Record never
// returns an error, listing actions are skipped, and repeats of the same
// (actor, action, module) tuple inside the dedup window are suppressed.
type Recorder struct {
	db      database.Database
	store   dedup.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecorder creates a recorder. Metrics may be nil.
func NewRecorder(db database.Database, store dedup.Store, m *metrics.Metrics, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:      db,
		store:   store,
		metrics: m,
		logger:  logger.Named("audit"),
		now:     time.Now,
	}
}

// Record writes an audit entry. Failures are logged and counted, never
// propagated; an audit problem must not fail the operation being audited.
func (r *Recorder) Record(ctx context.Context, actor Actor, action cnst.Action, module cnst.Module, details string) {
	if action.Listing() {
		r.suppressed("listing")
		return
	}

	actorKey := actor.Name
	if actor.ID != nil {
		actorKey = *actor.ID
	}
	seen, err := r.store.Seen(ctx, actorKey, string(action), string(module))
	if err != nil {
		// Dedup store trouble is not a reason to drop the entry.
		r.logger.Warn("audit dedup check failed", zap.Error(err))
	} else if seen {
		r.suppressed("duplicate")
		return
	}

	name := actor.Name
	if name == "" {
		name = cnst.UnknownActor
	}
	entry := &database.AuditEntry{
		ActorID:   actor.ID,
		ActorName: name,
		Action:    action,
		Module:    module,
		Details:   details,
		Timestamp: r.now(),
	}
	if err := r.db.InsertAuditEntry(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.AuditFailed()
		}
		r.logger.Error("failed to persist audit entry",
			zap.String("action", string(action)),
			zap.String("module", string(module)),
			zap.Error(err))
		return
	}
	if r.metrics != nil {
		r.metrics.AuditRecorded(string(action), string(module))
	}
}

// RecordExternal handles client-submitted entries. Unlike Record it
// validates the enums and reports invalid input, since the caller is
// outside the server's control.
func (r *Recorder) RecordExternal(ctx context.Context, actor Actor, action cnst.Action, module cnst.Module, details string) error {
	if !action.Valid() {
		return ErrInvalidAction
	}
	if !module.Valid() {
		return ErrInvalidModule
	}
	r.Record(ctx, actor, action, module, details)
	return nil
}

// Query returns a page of audit entries, newest first.
func (r *Recorder) Query(ctx context.Context, f Filter) (*Page, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	entries, total, err := r.db.QueryAuditEntries(ctx, database.AuditFilter{
		From:      f.From,
		To:        f.To,
		ActorName: f.ActorName,
		Action:    string(f.Action),
		Module:    string(f.Module),
		Page:      f.Page,
		PageSize:  f.PageSize,
	})
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &Page{
		Entries:  entries,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
		Pages:    pages,
	}, nil
}

// ClearListEntries removes persisted listing entries and returns how many
// were deleted.
func (r *Recorder) ClearListEntries(ctx context.Context) (int64, error) {
	return r.db.DeleteListingEntries(ctx)
}

func (r *Recorder) suppressed(reason string) {
	if r.metrics != nil {
		r.metrics.AuditSuppressed(reason)
	}
}
