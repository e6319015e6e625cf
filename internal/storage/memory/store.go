// Package memory implements domain.Store in process memory. It backs
// STORAGE_DRIVER=memory for local runs and the service/handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"safari_tours/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	bookings  map[string]domain.Booking
	customers map[int64]domain.Customer
	packages  map[int64]domain.Package
	posts     map[int64]domain.BlogPost
	hero      map[int]domain.HeroMedia
	audit     []domain.AuditEntry
	nextID    int64
}

func New() *Store {
	return &Store{
		now:       func() time.Time { return time.Now().UTC() },
		bookings:  map[string]domain.Booking{},
		customers: map[int64]domain.Customer{},
		packages:  map[int64]domain.Package{},
		posts:     map[int64]domain.BlogPost{},
		hero:      map[int]domain.HeroMedia{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ---- bookings ----

func (s *Store) CreateBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return fmt.Errorf("booking %s already exists", b.ID)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	b.UpdatedAt = b.CreatedAt
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) GetBooking(_ context.Context, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return s.hydrate(b), nil
}

func (s *Store) ListBookings(_ context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	var out []domain.Booking
	for _, b := range s.bookings {
		b = s.hydrate(b)
		if q.Status != nil && b.Status != *q.Status {
			continue
		}
		if q.CreatedFrom != nil && b.CreatedAt.Before(*q.CreatedFrom) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(b.ID), needle) &&
			!strings.Contains(strings.ToLower(b.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(b.CustomerEmail), needle) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) ListBookingsByIDs(_ context.Context, ids []string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.bookings[id]; ok {
			out = append(out, s.hydrate(b))
		}
	}
	return out, nil
}

func (s *Store) UpdateBookingStatus(_ context.Context, ids []string, st domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.bookings[id]; !ok {
			return fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
		}
	}
	now := s.now()
	for _, id := range ids {
		b := s.bookings[id]
		b.Status = st
		b.UpdatedAt = now
		s.bookings[id] = b
	}
	return nil
}

func (s *Store) UpdateBookingDetails(_ context.Context, id string, date time.Time, travellers int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.TravelDate = date
	b.Travellers = travellers
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return nil
}

// hydrate fills the joined customer/package columns the SQL store selects.
func (s *Store) hydrate(b domain.Booking) domain.Booking {
	if c, ok := s.customers[b.CustomerID]; ok {
		b.CustomerName, b.CustomerEmail, b.CustomerPhone = c.Name, c.Email, c.Phone
	}
	if p, ok := s.packages[b.PackageID]; ok {
		b.PackageTitle = p.Title
	}
	return b
}

// ---- customers ----

func (s *Store) UpsertCustomer(_ context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(c.Email))
	for id, ex := range s.customers {
		if strings.EqualFold(ex.Email, email) {
			ex.Name = c.Name
			if c.Phone != "" {
				ex.Phone = c.Phone
			}
			s.customers[id] = ex
			return s.aggregate(ex), nil
		}
	}
	c.ID = s.id()
	c.Email = email
	if c.Segment == "" {
		c.Segment = domain.SegmentNew
	}
	c.CreatedAt = s.now()
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) GetCustomer(_ context.Context, id int64) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}
	return s.aggregate(c), nil
}

func (s *Store) ListCustomers(_ context.Context, q domain.CustomersQuery) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var only map[int64]bool
	if len(q.IDs) > 0 {
		only = map[int64]bool{}
		for _, id := range q.IDs {
			only[id] = true
		}
	}
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	var out []domain.Customer
	for _, c := range s.customers {
		if only != nil && !only[c.ID] {
			continue
		}
		if q.Segment != nil && c.Segment != *q.Segment {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) {
			continue
		}
		out = append(out, s.aggregate(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) UpdateCustomer(_ context.Context, id int64, note *string, seg *domain.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if note != nil {
		c.Note = *note
	}
	if seg != nil {
		c.Segment = *seg
	}
	s.customers[id] = c
	return nil
}

// aggregate derives count (all bookings) and lifetime value (confirmed amounts).
func (s *Store) aggregate(c domain.Customer) domain.Customer {
	c.BookingCount, c.LifetimeValue = 0, 0
	for _, b := range s.bookings {
		if b.CustomerID != c.ID {
			continue
		}
		c.BookingCount++
		if b.Status == domain.BookingConfirmed {
			c.LifetimeValue += b.Amount
		}
	}
	return c
}

// ---- packages ----

func (s *Store) CreatePackage(_ context.Context, p domain.Package) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.packages[p.ID] = p
	return p.ID, nil
}

func (s *Store) UpdatePackage(_ context.Context, p domain.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.packages[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CreatedAt = ex.CreatedAt
	p.UpdatedAt = s.now()
	s.packages[p.ID] = p
	return nil
}

func (s *Store) DeletePackage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.packages, id)
	return nil
}

func (s *Store) GetPackage(_ context.Context, id int64) (domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[id]
	if !ok {
		return domain.Package{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPackages(_ context.Context, q domain.PackagesQuery) ([]domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Package
	for _, p := range s.packages {
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.Country != "" && p.Country != q.Country {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ---- blog ----

func (s *Store) CreatePost(_ context.Context, b domain.BlogPost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	s.posts[b.ID] = b
	return b.ID, nil
}

func (s *Store) UpdatePost(_ context.Context, b domain.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.posts[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	b.CreatedAt = ex.CreatedAt
	b.UpdatedAt = s.now()
	s.posts[b.ID] = b
	return nil
}

func (s *Store) DeletePost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) SetPostStatus(_ context.Context, id int64, st domain.PostStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = st
	b.UpdatedAt = s.now()
	s.posts[id] = b
	return nil
}

func (s *Store) GetPost(_ context.Context, id int64) (domain.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.posts[id]
	if !ok {
		return domain.BlogPost{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListPosts(_ context.Context, q domain.PostsQuery) ([]domain.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BlogPost
	for _, b := range s.posts {
		if q.Status != nil && b.Status != *q.Status {
			continue
		}
		if q.Category != "" && !strings.EqualFold(b.Category, q.Category) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ---- hero ----

func (s *Store) ListHero(_ context.Context) ([]domain.HeroMedia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HeroMedia, 0, len(s.hero))
	for _, h := range s.hero {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Store) UpsertHero(_ context.Context, h domain.HeroMedia) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.UpdatedAt = s.now()
	s.hero[h.Position] = h
	return nil
}

func (s *Store) DeleteHero(_ context.Context, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hero, position)
	return nil
}

// ---- audit ----

func (s *Store) AppendAudit(_ context.Context, e domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

func (s *Store) ListAudit(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		out = append(out, s.audit[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
