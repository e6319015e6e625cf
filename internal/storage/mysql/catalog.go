package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"safari_tours/internal/domain"
)

// ---- packages ----

func packageArgs(p domain.Package) ([]any, error) {
	lists := []any{nonNil(p.Itinerary), nonNil(p.Inclusions), nonNil(p.Exclusions), nonNil(p.Info), nonNil(p.Images)}
	args := []any{p.Title, p.Location, p.Country, p.DurationDays, p.Price, p.MinGroup, p.MaxGroup,
		p.Featured, string(p.Status), valStr(p.Overview)}
	for _, l := range lists {
		js, err := valJSON(l)
		if err != nil {
			return nil, fmt.Errorf("encode package lists: %w", err)
		}
		args = append(args, js)
	}
	return args, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *Repo) CreatePackage(ctx context.Context, p domain.Package) (int64, error) {
	args, err := packageArgs(p)
	if err != nil {
		return 0, err
	}
	now := r.now()
	res, err := r.db.ExecContext(ctx, insertPackageSQL, append(args, now, now)...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdatePackage(ctx context.Context, p domain.Package) error {
	args, err := packageArgs(p)
	if err != nil {
		return err
	}
	return mustAffect(r.db.ExecContext(ctx, updatePackageSQL, append(args, r.now(), p.ID)...))
}

func (r *Repo) DeletePackage(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM packages WHERE id = ?", id))
}

func (r *Repo) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	p, err := scanPackage(r.db.QueryRowContext(ctx, "SELECT "+packageColumns+" FROM packages WHERE id = ?", id))
	return p, notFound(err)
}

func (r *Repo) ListPackages(ctx context.Context, q domain.PackagesQuery) ([]domain.Package, error) {
	var where []string
	var args []any
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Country != "" {
		where = append(where, "country = ?")
		args = append(args, q.Country)
	}
	query := "SELECT " + packageColumns + " FROM packages"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY featured DESC, updated_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPackage(s scanner) (domain.Package, error) {
	var p domain.Package
	var status string
	var overview sql.NullString
	var itin, inc, exc, info, imgs []byte
	if err := s.Scan(&p.ID, &p.Title, &p.Location, &p.Country, &p.DurationDays, &p.Price,
		&p.MinGroup, &p.MaxGroup, &p.Featured, &status, &overview,
		&itin, &inc, &exc, &info, &imgs, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Package{}, err
	}
	p.Status = domain.PackageStatus(status)
	p.Overview = overview.String
	for _, f := range []struct {
		raw []byte
		dst any
	}{{itin, &p.Itinerary}, {inc, &p.Inclusions}, {exc, &p.Exclusions}, {info, &p.Info}, {imgs, &p.Images}} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return domain.Package{}, fmt.Errorf("package %d lists: %w", p.ID, err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// ---- blog ----

func content(b domain.BlogPost) string {
	if len(b.Content) == 0 {
		return `{"ops":[]}`
	}
	return string(b.Content)
}

func (r *Repo) CreatePost(ctx context.Context, b domain.BlogPost) (int64, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx, insertPostSQL,
		b.Title, b.Category, b.Author, string(b.Status), b.ReadTime,
		valStr(b.CoverImage), valStr(b.Excerpt), content(b), now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpdatePost(ctx context.Context, b domain.BlogPost) error {
	return mustAffect(r.db.ExecContext(ctx, updatePostSQL,
		b.Title, b.Category, b.Author, string(b.Status), b.ReadTime,
		valStr(b.CoverImage), valStr(b.Excerpt), content(b), r.now(), b.ID))
}

func (r *Repo) DeletePost(ctx context.Context, id int64) error {
	return mustAffect(r.db.ExecContext(ctx, "DELETE FROM blog_posts WHERE id = ?", id))
}

func (r *Repo) SetPostStatus(ctx context.Context, id int64, s domain.PostStatus) error {
	return mustAffect(r.db.ExecContext(ctx,
		"UPDATE blog_posts SET status = ?, updated_at = ? WHERE id = ?", string(s), r.now(), id))
}

func (r *Repo) GetPost(ctx context.Context, id int64) (domain.BlogPost, error) {
	b, err := scanPost(r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM blog_posts WHERE id = ?", id))
	return b, notFound(err)
}

func (r *Repo) ListPosts(ctx context.Context, q domain.PostsQuery) ([]domain.BlogPost, error) {
	var where []string
	var args []any
	if q.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*q.Status))
	}
	if q.Category != "" {
		where = append(where, "LOWER(category) = ?")
		args = append(args, strings.ToLower(q.Category))
	}
	query := "SELECT " + postColumns + " FROM blog_posts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.BlogPost
	for rows.Next() {
		b, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanPost(s scanner) (domain.BlogPost, error) {
	var b domain.BlogPost
	var status string
	var cover, excerpt sql.NullString
	var body []byte
	if err := s.Scan(&b.ID, &b.Title, &b.Category, &b.Author, &status, &b.ReadTime,
		&cover, &excerpt, &body, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return domain.BlogPost{}, err
	}
	b.Status = domain.PostStatus(status)
	b.CoverImage = cover.String
	b.Excerpt = excerpt.String
	b.Content = json.RawMessage(append([]byte(nil), body...))
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// ---- hero ----

func (r *Repo) ListHero(ctx context.Context) ([]domain.HeroMedia, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT position, media_type, url, enabled, updated_at FROM hero_media ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.HeroMedia
	for rows.Next() {
		var h domain.HeroMedia
		var typ string
		if err := rows.Scan(&h.Position, &typ, &h.URL, &h.Enabled, &h.UpdatedAt); err != nil {
			return nil, err
		}
		h.Type = domain.MediaType(typ)
		h.UpdatedAt = h.UpdatedAt.UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertHero(ctx context.Context, h domain.HeroMedia) error {
	_, err := r.db.ExecContext(ctx, upsertHeroSQL, h.Position, string(h.Type), h.URL, h.Enabled, r.now())
	return err
}

func (r *Repo) DeleteHero(ctx context.Context, position int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM hero_media WHERE position = ?", position)
	return err
}
