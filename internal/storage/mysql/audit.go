package mysql

import (
	"context"
	"database/sql"

	"safari_tours/internal/domain"
)

func (r *Repo) AppendAudit(ctx context.Context, e domain.AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		e.ID, e.Entity, e.Action, e.Actor, e.Summary, valStr(e.Link), e.CreatedAt.UTC())
	return err
}

// ListAudit returns newest first; limit <= 0 means everything.
func (r *Repo) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	query := "SELECT id, entity, action, actor, summary, link, created_at FROM audit_log ORDER BY created_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var link sql.NullString
		if err := rows.Scan(&e.ID, &e.Entity, &e.Action, &e.Actor, &e.Summary, &link, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Link = link.String
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
