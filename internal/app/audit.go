package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"safari_tours/internal/domain"
	"safari_tours/internal/opslog"
)

// Auditor writes the durable audit row, mirrors it into the ops log and
// optionally pushes a matching activity entry. Failures are logged only.
type Auditor struct {
	repo  domain.AuditRepository
	ops   *opslog.Log
	clock func() time.Time
}

func NewAuditor(repo domain.AuditRepository, ops *opslog.Log) *Auditor {
	return &Auditor{repo: repo, ops: ops, clock: func() time.Time { return time.Now().UTC() }}
}

type auditRecord struct {
	Entity  string
	Action  string
	Summary string
	Link    string
}

// Audit appends one audit entry without touching the activity feed.
func (a *Auditor) Audit(ctx context.Context, actor domain.Actor, r auditRecord) domain.AuditEntry {
	e := domain.AuditEntry{
		ID:        uuid.NewString(),
		Entity:    r.Entity,
		Action:    r.Action,
		Actor:     actor.Display(),
		Summary:   r.Summary,
		Link:      r.Link,
		CreatedAt: a.clock(),
	}
	if a.repo != nil {
		if err := a.repo.AppendAudit(ctx, e); err != nil {
			log.Warn().Err(err).Str("entity", e.Entity).Str("action", e.Action).Msg("audit append failed")
		}
	}
	if a.ops != nil {
		a.ops.MirrorAudit(e)
	}
	return e
}

// Record appends an audit entry and one activity entry for it.
func (a *Auditor) Record(ctx context.Context, actor domain.Actor, r auditRecord, tone opslog.Tone) {
	e := a.Audit(ctx, actor, r)
	a.Activity(opslog.Activity{
		Title: r.Summary,
		Meta:  e.Actor + " · " + r.Entity,
		Time:  e.CreatedAt,
		Tone:  tone,
		Href:  r.Link,
	})
}

func (a *Auditor) Activity(act opslog.Activity) {
	if a.ops != nil {
		a.ops.PushActivity(act)
	}
}

func (a *Auditor) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return a.repo.ListAudit(ctx, limit)
}

// Recent returns the in-process audit mirror, newest first.
func (a *Auditor) Recent() []domain.AuditEntry {
	if a.ops == nil {
		return nil
	}
	return a.ops.Audit()
}
