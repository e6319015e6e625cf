package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, q BookingsQuery) ([]Booking, error)
	ListBookingsByIDs(ctx context.Context, ids []string) ([]Booking, error)
	// UpdateBookingStatus sets status on every id in one statement.
	UpdateBookingStatus(ctx context.Context, ids []string, s BookingStatus) error
	UpdateBookingDetails(ctx context.Context, id string, date time.Time, travellers int) error
}

type CustomerRepository interface {
	// UpsertCustomer matches on email; name/phone are refreshed, segment and note kept.
	UpsertCustomer(ctx context.Context, c Customer) (Customer, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListCustomers(ctx context.Context, q CustomersQuery) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id int64, note *string, segment *Segment) error
}

type CatalogRepository interface {
	CreatePackage(ctx context.Context, p Package) (int64, error)
	UpdatePackage(ctx context.Context, p Package) error
	DeletePackage(ctx context.Context, id int64) error
	GetPackage(ctx context.Context, id int64) (Package, error)
	// ListPackages orders featured first, then most recently updated.
	ListPackages(ctx context.Context, q PackagesQuery) ([]Package, error)

	CreatePost(ctx context.Context, b BlogPost) (int64, error)
	UpdatePost(ctx context.Context, b BlogPost) error
	DeletePost(ctx context.Context, id int64) error
	SetPostStatus(ctx context.Context, id int64, s PostStatus) error
	GetPost(ctx context.Context, id int64) (BlogPost, error)
	ListPosts(ctx context.Context, q PostsQuery) ([]BlogPost, error)
}

type HeroRepository interface {
	ListHero(ctx context.Context) ([]HeroMedia, error)
	UpsertHero(ctx context.Context, h HeroMedia) error
	DeleteHero(ctx context.Context, position int) error
}

type AuditRepository interface {
	AppendAudit(ctx context.Context, e AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Store is everything the persistence collaborator provides.
type Store interface {
	BookingRepository
	CustomerRepository
	CatalogRepository
	HeroRepository
	AuditRepository
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
}

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, m Email) error
}

type EventPublisher interface {
	PublishBooking(ctx context.Context, e BookingEvent) error
}

// Alerter pushes short staff-facing messages to an out-of-band channel.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// Actor identifies who performed an admin mutation.
type Actor struct {
	Subject string
	Name    string
	Email   string
}

func (a Actor) Display() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	case a.Subject != "":
		return a.Subject
	}
	return "system"
}
