package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"safari_tours/internal/domain"
)

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID, b.CustomerID, b.PackageID,
		b.TravelDate.Format(domain.DateLayout), b.Travellers, b.Amount,
		string(b.Status), valStr(b.Notes),
		b.CreatedAt, b.CreatedAt,
	)
	return err
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, selectBookingSQL+" WHERE b.id = ?", id))
	return b, notFound(err)
}

func (r *Repo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	var where []string
	var args []any
	if q.Status != nil {
		where = append(where, "b.status = ?")
		args = append(args, string(*q.Status))
	}
	if q.CreatedFrom != nil {
		where = append(where, "b.created_at >= ?")
		args = append(args, q.CreatedFrom.UTC())
	}
	if needle := strings.TrimSpace(q.Q); needle != "" {
		like := "%" + strings.ToLower(needle) + "%"
		where = append(where, "(LOWER(b.id) LIKE ? OR LOWER(c.name) LIKE ? OR LOWER(c.email) LIKE ?)")
		args = append(args, like, like, like)
	}
	query := selectBookingSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.created_at DESC, b.id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return r.queryBookings(ctx, query, args...)
}

func (r *Repo) ListBookingsByIDs(ctx context.Context, ids []string) ([]domain.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryBookings(ctx, selectBookingSQL+" WHERE b.id IN ("+placeholders(len(ids))+") ORDER BY b.created_at DESC", args...)
}

// UpdateBookingStatus locks the rows first so a missing id aborts the whole
// batch before anything is written.
func (r *Repo) UpdateBookingStatus(ctx context.Context, ids []string, s domain.BookingStatus) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	in := placeholders(len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(DISTINCT id) FROM bookings WHERE id IN ("+in+") FOR UPDATE", args...).Scan(&n); err != nil {
		return err
	}
	if want := countDistinct(ids); n != want {
		return fmt.Errorf("%d of %d bookings: %w", want-n, want, domain.ErrNotFound)
	}
	upd := append([]any{string(s), r.now()}, args...)
	if _, err := tx.ExecContext(ctx, "UPDATE bookings SET status = ?, updated_at = ? WHERE id IN ("+in+")", upd...); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) UpdateBookingDetails(ctx context.Context, id string, date time.Time, travellers int) error {
	return mustAffect(r.db.ExecContext(ctx, updateBookingDetailsSQL,
		date.Format(domain.DateLayout), travellers, r.now(), id))
}

func (r *Repo) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	var phone, title, notes sql.NullString
	var status string
	if err := s.Scan(
		&b.ID, &b.CustomerID, &b.CustomerName, &b.CustomerEmail, &phone,
		&b.PackageID, &title,
		&b.TravelDate, &b.Travellers, &b.Amount, &status, &notes,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	b.CustomerPhone = phone.String
	b.PackageTitle = title.String
	b.Notes = notes.String
	b.TravelDate = b.TravelDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func countDistinct(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
