package mysql

import (
	"context"
	"database/sql"
	"strings"

	"safari_tours/internal/domain"
)

func (r *Repo) UpsertCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	seg := c.Segment
	if seg == "" {
		seg = domain.SegmentNew
	}
	res, err := r.db.ExecContext(ctx, upsertCustomerSQL,
		c.Name, strings.ToLower(strings.TrimSpace(c.Email)), valStr(c.Phone), string(seg), r.now())
	if err != nil {
		return domain.Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Customer{}, err
	}
	return r.GetCustomer(ctx, id)
}

func (r *Repo) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, selectCustomerSQL+" WHERE c.id = ?"+groupCustomerSQL, id))
	return c, notFound(err)
}

func (r *Repo) ListCustomers(ctx context.Context, q domain.CustomersQuery) ([]domain.Customer, error) {
	var where []string
	var args []any
	if len(q.IDs) > 0 {
		where = append(where, "c.id IN ("+placeholders(len(q.IDs))+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if q.Segment != nil {
		where = append(where, "c.segment = ?")
		args = append(args, string(*q.Segment))
	}
	if needle := strings.TrimSpace(q.Q); needle != "" {
		like := "%" + strings.ToLower(needle) + "%"
		where = append(where, "(LOWER(c.name) LIKE ? OR LOWER(c.email) LIKE ?)")
		args = append(args, like, like)
	}
	query := selectCustomerSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += groupCustomerSQL + " ORDER BY c.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCustomer only touches the fields that are non-nil.
func (r *Repo) UpdateCustomer(ctx context.Context, id int64, note *string, seg *domain.Segment) error {
	var set []string
	var vals []any
	if note != nil {
		set = append(set, "note = ?")
		vals = append(vals, *note)
	}
	if seg != nil {
		set = append(set, "segment = ?")
		vals = append(vals, string(*seg))
	}
	// customers has no updated_at, so existence is checked up front.
	if _, err := r.GetCustomer(ctx, id); err != nil || len(set) == 0 {
		return err
	}
	vals = append(vals, id)
	_, err := r.db.ExecContext(ctx, "UPDATE customers SET "+strings.Join(set, ", ")+" WHERE id = ?", vals...)
	return err
}

func scanCustomer(s scanner) (domain.Customer, error) {
	var c domain.Customer
	var phone, note sql.NullString
	var seg string
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &phone, &seg, &note, &c.CreatedAt,
		&c.BookingCount, &c.LifetimeValue); err != nil {
		return domain.Customer{}, err
	}
	c.Phone = phone.String
	c.Note = note.String
	c.Segment = domain.Segment(seg)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
