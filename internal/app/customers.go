package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safari_tours/internal/domain"
	"safari_tours/internal/export"
	"safari_tours/internal/opslog"
)

type CustomerService struct {
	store   domain.Store
	mailer  domain.Mailer
	audit   *Auditor
	workers int
	logo    export.Logo
	clock   func() time.Time
}

func NewCustomerService(store domain.Store, mailer domain.Mailer, audit *Auditor, workers int) *CustomerService {
	return &CustomerService{
		store:   store,
		mailer:  mailer,
		audit:   audit,
		workers: workers,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithLogo sets the image placed on spreadsheet exports.
func (s *CustomerService) WithLogo(l export.Logo) *CustomerService {
	s.logo = l
	return s
}

func (s *CustomerService) List(ctx context.Context, q domain.CustomersQuery) ([]domain.Customer, error) {
	return s.store.ListCustomers(ctx, q)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

type CustomerPatch struct {
	Note    *string         `json:"note" validate:"omitempty,max=2000"`
	Segment *domain.Segment `json:"segment"`
}

func (s *CustomerService) Update(ctx context.Context, id int64, p CustomerPatch, actor domain.Actor) (domain.Customer, error) {
	if p.Note == nil && p.Segment == nil {
		return domain.Customer{}, domain.Invalid("body", "note or segment is required")
	}
	if err := check(p); err != nil {
		return domain.Customer{}, err
	}
	if p.Segment != nil && !p.Segment.IsValid() {
		return domain.Customer{}, domain.Invalid("segment", "must be one of: vip, new, returning")
	}
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := s.store.UpdateCustomer(ctx, id, p.Note, p.Segment); err != nil {
		return domain.Customer{}, err
	}
	var changed []string
	if p.Segment != nil && *p.Segment != c.Segment {
		changed = append(changed, fmt.Sprintf("segment %s -> %s", c.Segment, *p.Segment))
	}
	if p.Note != nil {
		changed = append(changed, "note")
	}
	if s.audit != nil {
		s.audit.Record(ctx, actor, auditRecord{
			Entity:  domain.EntityCustomer,
			Action:  domain.ActionUpdate,
			Summary: fmt.Sprintf("Customer %s updated (%s)", c.Name, strings.Join(changed, ", ")),
			Link:    fmt.Sprintf("/admin/customers/%d", id),
		}, opslog.ToneInfo)
	}
	return s.store.GetCustomer(ctx, id)
}

type BroadcastRequest struct {
	CustomerIDs []int64         `json:"customerIds"`
	Segment     *domain.Segment `json:"segment"`
	Subject     string          `json:"subject" validate:"required,max=200"`
	Message     string          `json:"message" validate:"required,max=20000"`
}

type BroadcastResult struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Broadcast emails the chosen customers (explicit ids, else a segment, else
// everyone). Individual send failures are counted, not returned.
func (s *CustomerService) Broadcast(ctx context.Context, req BroadcastRequest, actor domain.Actor) (BroadcastResult, error) {
	if err := check(req); err != nil {
		return BroadcastResult{}, err
	}
	q := domain.CustomersQuery{}
	switch {
	case len(req.CustomerIDs) > 0:
		q.IDs = req.CustomerIDs
	case req.Segment != nil:
		if !req.Segment.IsValid() {
			return BroadcastResult{}, domain.Invalid("segment", "must be one of: vip, new, returning")
		}
		q.Segment = req.Segment
	}
	cs, err := s.store.ListCustomers(ctx, q)
	if err != nil {
		return BroadcastResult{}, err
	}
	if len(cs) == 0 {
		return BroadcastResult{}, domain.Invalid("customerIds", "no matching customers")
	}

	// sends run to completion once the recipient list is fixed
	ctx = context.WithoutCancel(ctx)
	res := BroadcastResult{Recipients: len(cs)}
	emails := make([]domain.Email, 0, len(cs))
	for _, c := range cs {
		if !validEmail(c.Email) {
			res.Skipped++
			continue
		}
		m, err := broadcastEmail(c, req.Subject, req.Message)
		if err != nil {
			res.Failed++
			continue
		}
		emails = append(emails, m)
	}
	sent, failed := tally(fanOut(ctx, s.mailer, s.workers, emails))
	res.Sent += sent
	res.Failed += failed

	if s.audit != nil {
		s.audit.Record(ctx, actor, auditRecord{
			Entity:  domain.EntityCustomer,
			Action:  domain.ActionBroadcast,
			Summary: fmt.Sprintf("Broadcast %q to %d customers (%d sent, %d failed)", req.Subject, res.Recipients, res.Sent, res.Failed),
			Link:    "/admin/customers",
		}, opslog.ToneInfo)
	}
	return res, nil
}
