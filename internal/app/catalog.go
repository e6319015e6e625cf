package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safari_tours/internal/domain"
)

// CatalogService is the public read side: active packages, published posts
// and enabled hero media, cached per key and invalidated by admin writes.
type CatalogService struct {
	repo     domain.CatalogRepository
	hero     domain.HeroRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(r domain.CatalogRepository, h domain.HeroRepository, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, hero: h, cache: c, cacheTTL: ttl}
}

const (
	keyPackagesList = "packages:list:"
	keyPackage      = "package:%d"
	keyPostsList    = "blog:list"
	keyPost         = "blog:%d"
	keyHero         = "hero"
)

func (s *CatalogService) ListPackages(ctx context.Context, country string) ([]domain.Package, error) {
	country = strings.ToLower(strings.TrimSpace(country))
	if country != "" && !domain.IsCountry(country) {
		return nil, domain.Invalid("country", "must be one of: "+strings.Join(domain.Countries, ", "))
	}
	key := keyPackagesList + orAll(country)
	var out []domain.Package
	if s.get(ctx, key, &out) {
		return out, nil
	}
	active := domain.PackageActive
	ps, err := s.repo.ListPackages(ctx, domain.PackagesQuery{Status: &active, Country: country})
	if err != nil {
		return nil, err
	}
	out = make([]domain.Package, 0, len(ps))
	for _, p := range ps {
		if p.Visible() {
			out = append(out, p)
		}
	}
	s.set(ctx, key, out)
	return out, nil
}

// GetPackage hides drafts behind the same not-found as a missing id.
func (s *CatalogService) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	key := fmt.Sprintf(keyPackage, id)
	var p domain.Package
	if s.get(ctx, key, &p) && p.Visible() {
		return p, nil
	}
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	if !p.Visible() {
		return domain.Package{}, domain.ErrNotFound
	}
	s.set(ctx, key, p)
	return p, nil
}

func (s *CatalogService) ListPosts(ctx context.Context) ([]domain.BlogPost, error) {
	var out []domain.BlogPost
	if s.get(ctx, keyPostsList, &out) {
		return out, nil
	}
	published := domain.PostPublished
	bs, err := s.repo.ListPosts(ctx, domain.PostsQuery{Status: &published})
	if err != nil {
		return nil, err
	}
	out = make([]domain.BlogPost, 0, len(bs))
	for _, b := range bs {
		if b.Visible() {
			out = append(out, b)
		}
	}
	s.set(ctx, keyPostsList, out)
	return out, nil
}

func (s *CatalogService) GetPost(ctx context.Context, id int64) (domain.BlogPost, error) {
	key := fmt.Sprintf(keyPost, id)
	var b domain.BlogPost
	if s.get(ctx, key, &b) && b.Visible() {
		return b, nil
	}
	b, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return domain.BlogPost{}, err
	}
	if !b.Visible() {
		return domain.BlogPost{}, domain.ErrNotFound
	}
	s.set(ctx, key, b)
	return b, nil
}

// Hero returns enabled hero media ordered by position.
func (s *CatalogService) Hero(ctx context.Context) ([]domain.HeroMedia, error) {
	var out []domain.HeroMedia
	if s.get(ctx, keyHero, &out) {
		return out, nil
	}
	hs, err := s.hero.ListHero(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]domain.HeroMedia, 0, len(hs))
	for _, h := range hs {
		if h.Enabled && h.URL != "" {
			out = append(out, h)
		}
	}
	s.set(ctx, keyHero, out)
	return out, nil
}

// ---- invalidation (called by admin writes) ----

func (s *CatalogService) InvalidatePackage(ctx context.Context, id int64) {
	keys := []string{fmt.Sprintf(keyPackage, id), keyPackagesList + "all"}
	for _, c := range domain.Countries {
		keys = append(keys, keyPackagesList+c)
	}
	s.del(ctx, keys...)
}

func (s *CatalogService) InvalidatePost(ctx context.Context, id int64) {
	s.del(ctx, fmt.Sprintf(keyPost, id), keyPostsList)
}

func (s *CatalogService) InvalidateHero(ctx context.Context) { s.del(ctx, keyHero) }

// ---- cache helpers; a nil cache or a cache error falls through to the store ----

func (s *CatalogService) get(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	return err == nil && ok
}

func (s *CatalogService) set(ctx context.Context, key string, v any) {
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
	}
}

func (s *CatalogService) del(ctx context.Context, keys ...string) {
	if s == nil || s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, keys...)
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
