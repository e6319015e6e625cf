package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"safari_tours/internal/domain"
	"safari_tours/internal/opslog"
)

// ContentService backs the admin editors for packages, blog posts and hero media.
type ContentService struct {
	store   domain.Store
	catalog *CatalogService
	audit   *Auditor
}

func NewContentService(store domain.Store, catalog *CatalogService, audit *Auditor) *ContentService {
	return &ContentService{store: store, catalog: catalog, audit: audit}
}

func (s *ContentService) record(ctx context.Context, actor domain.Actor, r auditRecord, tone opslog.Tone) {
	if s.audit != nil {
		s.audit.Record(ctx, actor, r, tone)
	}
}

// ---- packages ----

type PackageInput struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Location     string                 `json:"location" validate:"required,max=200"`
	Country      string                 `json:"country" validate:"required,oneof=rwanda kenya tanzania uganda"`
	DurationDays int                    `json:"durationDays" validate:"gte=1"`
	Price        float64                `json:"price" validate:"gte=0"`
	MinGroup     int                    `json:"minGroup" validate:"gte=1"`
	MaxGroup     int                    `json:"maxGroup" validate:"gtefield=MinGroup"`
	Featured     bool                   `json:"featured"`
	Status       domain.PackageStatus   `json:"status" validate:"required,oneof=active draft"`
	Overview     string                 `json:"overview"`
	Itinerary    []domain.ItineraryStep `json:"itinerary"`
	Inclusions   []string               `json:"inclusions"`
	Exclusions   []string               `json:"exclusions"`
	Info         []string               `json:"info"`
	Images       []string               `json:"images" validate:"dive,required"`
}

func (in PackageInput) toPackage(id int64) domain.Package {
	return domain.Package{
		ID:           id,
		Title:        strings.TrimSpace(in.Title),
		Location:     strings.TrimSpace(in.Location),
		Country:      in.Country,
		DurationDays: in.DurationDays,
		Price:        in.Price,
		MinGroup:     in.MinGroup,
		MaxGroup:     in.MaxGroup,
		Featured:     in.Featured,
		Status:       in.Status,
		Overview:     in.Overview,
		Itinerary:    nonNil(in.Itinerary),
		Inclusions:   nonNil(in.Inclusions),
		Exclusions:   nonNil(in.Exclusions),
		Info:         nonNil(in.Info),
		Images:       nonNil(in.Images),
	}
}

func (s *ContentService) ListPackages(ctx context.Context, q domain.PackagesQuery) ([]domain.Package, error) {
	return s.store.ListPackages(ctx, q)
}

func (s *ContentService) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	return s.store.GetPackage(ctx, id)
}

func (s *ContentService) CreatePackage(ctx context.Context, in PackageInput, actor domain.Actor) (domain.Package, error) {
	in.Country = strings.ToLower(strings.TrimSpace(in.Country))
	if err := check(in); err != nil {
		return domain.Package{}, err
	}
	id, err := s.store.CreatePackage(ctx, in.toPackage(0))
	if err != nil {
		return domain.Package{}, fmt.Errorf("create package: %w", err)
	}
	s.catalog.InvalidatePackage(ctx, id)
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityPackage, Action: domain.ActionCreate,
		Summary: fmt.Sprintf("Package %q created (%s)", p.Title, p.Status), Link: packageLink(id),
	}, opslog.ToneSuccess)
	return p, nil
}

func (s *ContentService) UpdatePackage(ctx context.Context, id int64, in PackageInput, actor domain.Actor) (domain.Package, error) {
	in.Country = strings.ToLower(strings.TrimSpace(in.Country))
	if err := check(in); err != nil {
		return domain.Package{}, err
	}
	if err := s.store.UpdatePackage(ctx, in.toPackage(id)); err != nil {
		return domain.Package{}, err
	}
	s.catalog.InvalidatePackage(ctx, id)
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityPackage, Action: domain.ActionUpdate,
		Summary: fmt.Sprintf("Package %q updated", p.Title), Link: packageLink(id),
	}, opslog.ToneInfo)
	return p, nil
}

func (s *ContentService) DeletePackage(ctx context.Context, id int64, actor domain.Actor) error {
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePackage(ctx, id); err != nil {
		return err
	}
	s.catalog.InvalidatePackage(ctx, id)
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityPackage, Action: domain.ActionDelete,
		Summary: fmt.Sprintf("Package %q deleted", p.Title),
	}, opslog.ToneWarning)
	return nil
}

// ---- blog ----

type PostInput struct {
	Title      string            `json:"title" validate:"required,max=200"`
	Category   string            `json:"category" validate:"required,max=60"`
	Author     string            `json:"author" validate:"required,max=120"`
	Status     domain.PostStatus `json:"status" validate:"required,oneof=draft published"`
	ReadTime   string            `json:"readTime" validate:"max=30"`
	CoverImage string            `json:"coverImage" validate:"max=500"`
	Excerpt    string            `json:"excerpt" validate:"max=500"`
	Content    json.RawMessage   `json:"content"`
}

func (in PostInput) toPost(id int64) (domain.BlogPost, error) {
	content := in.Content
	if len(content) == 0 || string(content) == "null" {
		content = json.RawMessage(`{"ops":[]}`)
	}
	if !json.Valid(content) {
		return domain.BlogPost{}, domain.Invalid("content", "must be a JSON document")
	}
	return domain.BlogPost{
		ID:         id,
		Title:      strings.TrimSpace(in.Title),
		Category:   strings.TrimSpace(in.Category),
		Author:     strings.TrimSpace(in.Author),
		Status:     in.Status,
		ReadTime:   in.ReadTime,
		CoverImage: in.CoverImage,
		Excerpt:    in.Excerpt,
		Content:    content,
	}, nil
}

func (s *ContentService) ListPosts(ctx context.Context, q domain.PostsQuery) ([]domain.BlogPost, error) {
	return s.store.ListPosts(ctx, q)
}

func (s *ContentService) GetPost(ctx context.Context, id int64) (domain.BlogPost, error) {
	return s.store.GetPost(ctx, id)
}

func (s *ContentService) CreatePost(ctx context.Context, in PostInput, actor domain.Actor) (domain.BlogPost, error) {
	if err := check(in); err != nil {
		return domain.BlogPost{}, err
	}
	b, err := in.toPost(0)
	if err != nil {
		return domain.BlogPost{}, err
	}
	id, err := s.store.CreatePost(ctx, b)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("create post: %w", err)
	}
	s.catalog.InvalidatePost(ctx, id)
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityBlog, Action: domain.ActionCreate,
		Summary: fmt.Sprintf("Post %q created (%s)", b.Title, b.Status), Link: postLink(id),
	}, opslog.ToneSuccess)
	return s.store.GetPost(ctx, id)
}

func (s *ContentService) UpdatePost(ctx context.Context, id int64, in PostInput, actor domain.Actor) (domain.BlogPost, error) {
	if err := check(in); err != nil {
		return domain.BlogPost{}, err
	}
	b, err := in.toPost(id)
	if err != nil {
		return domain.BlogPost{}, err
	}
	if err := s.store.UpdatePost(ctx, b); err != nil {
		return domain.BlogPost{}, err
	}
	s.catalog.InvalidatePost(ctx, id)
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityBlog, Action: domain.ActionUpdate,
		Summary: fmt.Sprintf("Post %q updated", b.Title), Link: postLink(id),
	}, opslog.ToneInfo)
	return s.store.GetPost(ctx, id)
}

func (s *ContentService) DeletePost(ctx context.Context, id int64, actor domain.Actor) error {
	b, err := s.store.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	s.catalog.InvalidatePost(ctx, id)
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityBlog, Action: domain.ActionDelete,
		Summary: fmt.Sprintf("Post %q deleted", b.Title),
	}, opslog.ToneWarning)
	return nil
}

func (s *ContentService) SetPublished(ctx context.Context, id int64, published bool, actor domain.Actor) (domain.BlogPost, error) {
	st := domain.PostDraft
	if published {
		st = domain.PostPublished
	}
	if err := s.store.SetPostStatus(ctx, id, st); err != nil {
		return domain.BlogPost{}, err
	}
	s.catalog.InvalidatePost(ctx, id)
	b, err := s.store.GetPost(ctx, id)
	if err != nil {
		return domain.BlogPost{}, err
	}
	verb := "unpublished"
	if published {
		verb = "published"
	}
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityBlog, Action: domain.ActionPublish,
		Summary: fmt.Sprintf("Post %q %s", b.Title, verb), Link: postLink(id),
	}, opslog.ToneInfo)
	return b, nil
}

// ---- hero ----

type HeroInput struct {
	Type    domain.MediaType `json:"type" validate:"required,oneof=image video"`
	URL     string           `json:"url" validate:"required,url,max=1000"`
	Enabled bool             `json:"enabled"`
}

func (s *ContentService) ListHero(ctx context.Context) ([]domain.HeroMedia, error) {
	return s.store.ListHero(ctx)
}

// SetHero stores the media for a slot. An empty URL clears the slot instead;
// deleted reports which of the two happened.
func (s *ContentService) SetHero(ctx context.Context, position int, in HeroInput, actor domain.Actor) (deleted bool, err error) {
	if position < 1 || position > domain.MaxHeroPosition {
		return false, domain.Invalid("position", fmt.Sprintf("must be between 1 and %d", domain.MaxHeroPosition))
	}
	in.URL = strings.TrimSpace(in.URL)
	if in.URL == "" {
		if err := s.store.DeleteHero(ctx, position); err != nil {
			return false, err
		}
		s.catalog.InvalidateHero(ctx)
		s.record(ctx, actor, auditRecord{
			Entity: domain.EntityHero, Action: domain.ActionDelete,
			Summary: fmt.Sprintf("Hero slot %d cleared", position),
		}, opslog.ToneWarning)
		return true, nil
	}
	if err := check(in); err != nil {
		return false, err
	}
	if err := s.store.UpsertHero(ctx, domain.HeroMedia{Position: position, Type: in.Type, URL: in.URL, Enabled: in.Enabled}); err != nil {
		return false, err
	}
	s.catalog.InvalidateHero(ctx)
	s.record(ctx, actor, auditRecord{
		Entity: domain.EntityHero, Action: domain.ActionUpdate,
		Summary: fmt.Sprintf("Hero slot %d set to %s", position, in.Type),
	}, opslog.ToneInfo)
	return false, nil
}

func packageLink(id int64) string { return fmt.Sprintf("/admin/packages/%d", id) }
func postLink(id int64) string    { return fmt.Sprintf("/admin/blog/%d", id) }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
