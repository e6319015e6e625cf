package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"safari_tours/internal/domain"
	"safari_tours/internal/export"
	"safari_tours/internal/opslog"
)

// WebsiteActor is recorded for mutations coming from the public site.
var WebsiteActor = domain.Actor{Name: "website"}

type BookingDeps struct {
	Store   domain.Store
	Mailer  domain.Mailer
	Events  domain.EventPublisher
	Alerter domain.Alerter
	Audit   *Auditor
	Ops     *opslog.Log
	SiteURL string
	Workers int
	Logo    export.Logo // spreadsheet exports only
}

type BookingService struct {
	store   domain.Store
	mailer  domain.Mailer
	events  domain.EventPublisher
	alerter domain.Alerter
	audit   *Auditor
	ops     *opslog.Log
	siteURL string
	workers int
	logo    export.Logo
	clock   func() time.Time
}

func NewBookingService(d BookingDeps) *BookingService {
	return &BookingService{
		store:   d.Store,
		mailer:  d.Mailer,
		events:  d.Events,
		alerter: d.Alerter,
		audit:   d.Audit,
		ops:     d.Ops,
		siteURL: d.SiteURL,
		workers: d.Workers,
		logo:    d.Logo,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// ---- booking wizard ----

type BookingRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email,max=190"`
	Phone      string `json:"phone" validate:"max=40"`
	PackageID  int64  `json:"packageId" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required"`
	Travellers int    `json:"travellers" validate:"required,gte=1,lte=50"`
	Notes      string `json:"notes" validate:"max=2000"`
}

// Create turns a public booking request into a pending booking. Everything
// after the insert is best-effort.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := check(req); err != nil {
		return domain.Booking{}, err
	}
	date, err := domain.ParseTravelDate(req.Date)
	if err != nil {
		return domain.Booking{}, domain.Invalid("date", "must be a date (YYYY-MM-DD)")
	}
	today := s.clock().Truncate(24 * time.Hour)
	if date.Before(today) {
		return domain.Booking{}, domain.Invalid("date", "must not be in the past")
	}

	pkg, err := s.store.GetPackage(ctx, req.PackageID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !pkg.Visible()) {
		return domain.Booking{}, domain.Invalid("packageId", "is not available")
	}
	if err != nil {
		return domain.Booking{}, err
	}
	if req.Travellers < pkg.MinGroup || (pkg.MaxGroup > 0 && req.Travellers > pkg.MaxGroup) {
		return domain.Booking{}, domain.Invalid("travellers",
			fmt.Sprintf("must be between %d and %d for this tour", pkg.MinGroup, pkg.MaxGroup))
	}

	cust, err := s.store.UpsertCustomer(ctx, domain.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		Segment: domain.SegmentNew,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("upsert customer: %w", err)
	}

	b := domain.Booking{
		ID:            NewBookingID(),
		CustomerID:    cust.ID,
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		CustomerPhone: cust.Phone,
		PackageID:     pkg.ID,
		PackageTitle:  pkg.Title,
		TravelDate:    date,
		Travellers:    req.Travellers,
		Amount:        pkg.Price * float64(req.Travellers),
		Status:        domain.BookingPending,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     s.clock(),
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	b.UpdatedAt = b.CreatedAt

	link := bookingLink(b.ID)
	summary := fmt.Sprintf("%s requested %s for %d on %s", b.CustomerName, b.PackageTitle, b.Travellers, b.TravelDate.Format(domain.DateLayout))
	if s.ops != nil {
		s.ops.Notify(opslog.Notification{Title: "New booking " + b.ID, Body: summary, Href: link})
	}
	if s.audit != nil {
		s.audit.Record(ctx, WebsiteActor, auditRecord{
			Entity: domain.EntityBooking, Action: domain.ActionCreate, Summary: "New booking " + b.ID + ": " + summary, Link: link,
		}, opslog.ToneInfo)
	}
	if validEmail(b.CustomerEmail) {
		if m, err := receivedEmail(b, s.siteURL); err != nil {
			log.Warn().Err(err).Str("booking", b.ID).Msg("acknowledgement email not built")
		} else {
			s.send(ctx, b.ID, m)
		}
	}
	if s.alerter != nil {
		if err := s.alerter.Alert(ctx, "New booking "+b.ID+"\n"+summary); err != nil {
			log.Warn().Err(err).Str("booking", b.ID).Msg("staff alert failed")
		}
	}
	s.publish(ctx, domain.BookingEvent{
		Type: domain.EventBookingCreated, BookingID: b.ID, To: b.Status,
		Travellers: b.Travellers, TravelDate: b.TravelDate.Format(domain.DateLayout), Actor: WebsiteActor.Display(),
	})
	return b, nil
}

// NewBookingID returns a public id of the form BK-XXXXXXXX.
func NewBookingID() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// ---- reads ----

func (s *BookingService) Get(ctx context.Context, id string) (domain.Booking, error) {
	return s.store.GetBooking(ctx, strings.TrimSpace(id))
}

func (s *BookingService) List(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	return s.store.ListBookings(ctx, q)
}

// ---- status ----

// SetStatus applies a status to one booking. The email, audit and activity
// entries follow the committed update and never fail the call.
func (s *BookingService) SetStatus(ctx context.Context, id string, to domain.BookingStatus, actor domain.Actor) (domain.Booking, error) {
	if !to.IsValid() {
		return domain.Booking{}, domain.Invalid("status", "must be one of: pending, confirmed, cancelled")
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if t := domain.Decide(b.Status, to); !t.Allowed {
		return domain.Booking{}, domain.Invalid("status", t.Reason)
	}
	if err := s.store.UpdateBookingStatus(ctx, []string{b.ID}, to); err != nil {
		return domain.Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	from := b.Status
	b.Status = to
	b.UpdatedAt = s.clock()

	if to.Notifies() && validEmail(b.CustomerEmail) {
		if m, err := statusEmail(b, s.siteURL); err != nil {
			log.Warn().Err(err).Str("booking", b.ID).Msg("status email not built")
		} else {
			s.send(ctx, b.ID, m)
		}
	}
	if s.audit != nil {
		s.audit.Record(ctx, actor, auditRecord{
			Entity:  domain.EntityBooking,
			Action:  domain.ActionStatusChange,
			Summary: fmt.Sprintf("Booking %s %s (was %s)", b.ID, to, from),
			Link:    bookingLink(b.ID),
		}, toneFor(to))
	}
	s.publish(ctx, domain.BookingEvent{
		Type: domain.EventBookingStatusChanged, BookingID: b.ID, From: from, To: to, Actor: actor.Display(),
	})
	return b, nil
}

// BulkResult summarises a bulk status change. Sent+Failed covers every
// updated booking whose customer has a usable email; the rest are Skipped.
type BulkResult struct {
	Updated int `json:"updated"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (s *BookingService) BulkSetStatus(ctx context.Context, ids []string, to domain.BookingStatus, actor domain.Actor) (BulkResult, error) {
	if !to.Notifies() {
		return BulkResult{}, domain.Invalid("status", "must be one of: confirmed, cancelled")
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return BulkResult{}, domain.Invalid("bookingIds", "is required")
	}
	found, err := s.store.ListBookingsByIDs(ctx, ids)
	if err != nil {
		return BulkResult{}, err
	}
	byID := make(map[string]domain.Booking, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			return BulkResult{}, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound)
		}
		if t := domain.Decide(b.Status, to); !t.Allowed {
			return BulkResult{}, domain.Invalid("status", id+": "+t.Reason)
		}
	}
	if err := s.store.UpdateBookingStatus(ctx, ids, to); err != nil {
		return BulkResult{}, fmt.Errorf("bulk update booking status: %w", err)
	}
	// the rows are committed: emails, audit and events must not be cut short
	// by the caller going away
	ctx = context.WithoutCancel(ctx)
	res := BulkResult{Updated: len(ids)}

	var emails []domain.Email
	for _, id := range ids {
		b := byID[id]
		b.Status = to
		if !validEmail(b.CustomerEmail) {
			res.Skipped++
			continue
		}
		m, err := statusEmail(b, s.siteURL)
		if err != nil {
			// counted as a failed send: the customer was eligible
			log.Warn().Err(err).Str("booking", b.ID).Msg("status email not built")
			res.Failed++
			continue
		}
		emails = append(emails, m)
	}
	sent, failed := tally(fanOut(ctx, s.mailer, s.workers, emails))
	res.Sent += sent
	res.Failed += failed

	for _, id := range ids {
		from := byID[id].Status
		if s.audit != nil {
			s.audit.Audit(ctx, actor, auditRecord{
				Entity:  domain.EntityBooking,
				Action:  domain.ActionStatusChange,
				Summary: fmt.Sprintf("Booking %s %s (was %s)", id, to, from),
				Link:    bookingLink(id),
			})
		}
		s.publish(ctx, domain.BookingEvent{
			Type: domain.EventBookingStatusChanged, BookingID: id, From: from, To: to, Actor: actor.Display(),
		})
	}
	if s.audit != nil {
		s.audit.Activity(opslog.Activity{
			Title: fmt.Sprintf("%d bookings %s", res.Updated, to),
			Meta:  fmt.Sprintf("%s · %d emailed, %d failed, %d skipped", actor.Display(), res.Sent, res.Failed, res.Skipped),
			Tone:  toneFor(to),
			Href:  "/admin/bookings",
		})
	}
	return res, nil
}

// ---- details ----

type DetailsRequest struct {
	Date       string `json:"date"`
	Travellers int    `json:"travellers"`
}

// UpdateDetails changes travel date and traveller count. The amount is kept.
func (s *BookingService) UpdateDetails(ctx context.Context, id string, req DetailsRequest, actor domain.Actor) (domain.Booking, error) {
	v := domain.NewValidationError()
	if req.Travellers <= 0 {
		v.Add("travellers", "must be a positive integer")
	}
	date, err := domain.ParseTravelDate(req.Date)
	if err != nil {
		v.Add("date", "must be a date (YYYY-MM-DD)")
	}
	if err := v.Err(); err != nil {
		return domain.Booking{}, err
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.store.UpdateBookingDetails(ctx, b.ID, date, req.Travellers); err != nil {
		return domain.Booking{}, fmt.Errorf("update booking details: %w", err)
	}
	ctx = context.WithoutCancel(ctx)
	prevDate, prevTravellers := b.TravelDate, b.Travellers
	b.TravelDate, b.Travellers, b.UpdatedAt = date, req.Travellers, s.clock()

	if s.audit != nil {
		s.audit.Record(ctx, actor, auditRecord{
			Entity: domain.EntityBooking,
			Action: domain.ActionUpdate,
			Summary: fmt.Sprintf("Booking %s moved to %s for %d (was %s for %d)", b.ID,
				date.Format(domain.DateLayout), req.Travellers, prevDate.Format(domain.DateLayout), prevTravellers),
			Link: bookingLink(b.ID),
		}, opslog.ToneInfo)
	}
	s.publish(ctx, domain.BookingEvent{
		Type: domain.EventBookingDetailsUpdated, BookingID: b.ID, Travellers: b.Travellers,
		TravelDate: date.Format(domain.DateLayout), Actor: actor.Display(),
	})
	return b, nil
}

// ---- helpers ----

func (s *BookingService) send(ctx context.Context, bookingID string, m domain.Email) {
	if s.mailer == nil {
		log.Warn().Str("booking", bookingID).Msg("mailer not configured, email dropped")
		return
	}
	if err := s.mailer.Send(ctx, m); err != nil {
		log.Warn().Err(err).Str("booking", bookingID).Str("to", m.To).Msg("email send failed")
	}
}

func (s *BookingService) publish(ctx context.Context, e domain.BookingEvent) {
	if s.events == nil {
		return
	}
	e.At = s.clock()
	if err := s.events.PublishBooking(ctx, e); err != nil {
		log.Warn().Err(err).Str("booking", e.BookingID).Str("type", e.Type).Msg("publish booking event failed")
	}
}

func bookingLink(id string) string { return "/admin/bookings/" + id }

func toneFor(s domain.BookingStatus) opslog.Tone {
	switch s {
	case domain.BookingConfirmed:
		return opslog.ToneSuccess
	case domain.BookingCancelled:
		return opslog.ToneDanger
	}
	return opslog.ToneWarning
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
