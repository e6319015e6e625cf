package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"safari_tours/internal/app"
	"safari_tours/internal/domain"
	"safari_tours/internal/opslog"
	"safari_tours/internal/storage/memory"
)

// ---- fakes ----

type fakeMailer struct {
	mu      sync.Mutex
	sent    []domain.Email
	failFor map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, e domain.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[e.To] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *fakeMailer) Sent() []domain.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Email(nil), m.sent...)
}

type fakeEvents struct {
	mu  sync.Mutex
	got []domain.BookingEvent
}

func (f *fakeEvents) PublishBooking(ctx context.Context, e domain.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, e)
	return nil
}

type fakeAlerter struct{ texts []string }

func (f *fakeAlerter) Alert(ctx context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

// failingStore rejects every booking mutation.
type failingStore struct {
	*memory.Store
	err error
}

func (s failingStore) UpdateBookingStatus(context.Context, []string, domain.BookingStatus) error {
	return s.err
}

func (s failingStore) UpdateBookingDetails(context.Context, string, time.Time, int) error {
	return s.err
}

// ctxStore fails audit writes on a cancelled context, as database/sql does.
type ctxStore struct{ *memory.Store }

func (s ctxStore) AppendAudit(ctx context.Context, e domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.AppendAudit(ctx, e)
}

// cancellingMailer cancels the caller's context on the first send and
// records whether any send saw a cancelled context.
type cancellingMailer struct {
	fakeMailer
	cancel    context.CancelFunc
	cancelled atomic.Int32
}

func (m *cancellingMailer) Send(ctx context.Context, e domain.Email) error {
	m.cancel()
	if ctx.Err() != nil {
		m.cancelled.Add(1)
		return ctx.Err()
	}
	return m.fakeMailer.Send(ctx, e)
}

// ---- fixture ----

type fixture struct {
	store  *memory.Store
	mailer *fakeMailer
	events *fakeEvents
	alerts *fakeAlerter
	ops    *opslog.Log
	svc    *app.BookingService
	pkgID  int64
}

var admin = domain.Actor{Subject: "u-1", Name: "Grace"}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.New(),
		mailer: &fakeMailer{failFor: map[string]bool{}},
		events: &fakeEvents{},
		alerts: &fakeAlerter{},
		ops:    opslog.New(),
	}
	id, err := f.store.CreatePackage(context.Background(), domain.Package{
		Title: "Gorilla Trek", Location: "Volcanoes NP", Country: "rwanda",
		DurationDays: 3, Price: 1500, MinGroup: 1, MaxGroup: 6, Status: domain.PackageActive,
	})
	if err != nil {
		t.Fatalf("seed package: %v", err)
	}
	f.pkgID = id
	f.svc = f.serviceOn(f.store, f.mailer)
	return f
}

func (f *fixture) serviceOn(st domain.Store, m domain.Mailer) *app.BookingService {
	return app.NewBookingService(app.BookingDeps{
		Store:   st,
		Mailer:  m,
		Events:  f.events,
		Alerter: f.alerts,
		Audit:   app.NewAuditor(st, f.ops),
		Ops:     f.ops,
		SiteURL: "https://safari.example",
		Workers: 2,
	})
}

func (f *fixture) seed(t *testing.T, id, email string, travellers int, st domain.BookingStatus) domain.Booking {
	t.Helper()
	ctx := context.Background()
	c, err := f.store.UpsertCustomer(ctx, domain.Customer{Name: "Traveller " + id, Email: email})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	b := domain.Booking{
		ID: id, CustomerID: c.ID, PackageID: f.pkgID,
		TravelDate: time.Date(2099, 7, 1, 0, 0, 0, 0, time.UTC),
		Travellers: travellers, Amount: 1500 * float64(travellers), Status: st,
	}
	if err := f.store.CreateBooking(ctx, b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func (f *fixture) status(t *testing.T, id string) domain.BookingStatus {
	t.Helper()
	b, err := f.store.GetBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return b.Status
}

func (f *fixture) audit(t *testing.T) []domain.AuditEntry {
	t.Helper()
	es, err := f.store.ListAudit(context.Background(), 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	return es
}

// ---- SetStatus ----

func TestSetStatus_AnyToAny(t *testing.T) {
	all := []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed, domain.BookingCancelled}
	for _, from := range all {
		for _, to := range all {
			f := newFixture(t)
			f.seed(t, "BK-1", "a@example.com", 2, from)
			got, err := f.svc.SetStatus(context.Background(), "BK-1", to, admin)
			if err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			if got.Status != to || f.status(t, "BK-1") != to {
				t.Fatalf("%s -> %s: stored %s", from, to, f.status(t, "BK-1"))
			}
		}
	}
}

func TestSetStatus_ConfirmEmailsAndAudits(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-TEST", "amani@example.com", 2, domain.BookingPending)

	if _, err := f.svc.SetStatus(context.Background(), "BK-TEST", domain.BookingConfirmed, admin); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if s := f.status(t, "BK-TEST"); s != domain.BookingConfirmed {
		t.Fatalf("stored status %s", s)
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("want 1 email, got %d", len(sent))
	}
	if sent[0].To != "amani@example.com" || !strings.Contains(sent[0].Subject, "confirmed") {
		t.Fatalf("unexpected email: to=%s subject=%q", sent[0].To, sent[0].Subject)
	}

	es := f.audit(t)
	if len(es) != 1 || es[0].Entity != domain.EntityBooking || es[0].Action != domain.ActionStatusChange {
		t.Fatalf("unexpected audit: %+v", es)
	}
	if es[0].Actor != "Grace" {
		t.Fatalf("actor = %q", es[0].Actor)
	}
	if n := len(f.ops.Activity()); n != 1 {
		t.Fatalf("want 1 activity entry, got %d", n)
	}
	if n := len(f.ops.Audit()); n != 1 {
		t.Fatalf("want 1 mirrored audit entry, got %d", n)
	}
	if len(f.events.got) != 1 || f.events.got[0].Type != domain.EventBookingStatusChanged {
		t.Fatalf("unexpected events: %+v", f.events.got)
	}
}

func TestSetStatus_CancelSubject(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-2", "b@example.com", 1, domain.BookingConfirmed)
	if _, err := f.svc.SetStatus(context.Background(), "BK-2", domain.BookingCancelled, admin); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	sent := f.mailer.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Subject, "cancelled") {
		t.Fatalf("unexpected emails: %+v", sent)
	}
}

func TestSetStatus_PendingSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-3", "c@example.com", 1, domain.BookingConfirmed)
	if _, err := f.svc.SetStatus(context.Background(), "BK-3", domain.BookingPending, admin); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("want no email, got %d", n)
	}
	if n := len(f.audit(t)); n != 1 {
		t.Fatalf("want 1 audit entry, got %d", n)
	}
}

func TestSetStatus_InvalidEmailSkipsSend(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-4", "not-an-email", 1, domain.BookingPending)
	if _, err := f.svc.SetStatus(context.Background(), "BK-4", domain.BookingConfirmed, admin); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("want no email, got %d", n)
	}
}

func TestSetStatus_MailerFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-5", "down@example.com", 1, domain.BookingPending)
	f.mailer.failFor["down@example.com"] = true
	if _, err := f.svc.SetStatus(context.Background(), "BK-5", domain.BookingConfirmed, admin); err != nil {
		t.Fatalf("SetStatus should succeed, got %v", err)
	}
	if s := f.status(t, "BK-5"); s != domain.BookingConfirmed {
		t.Fatalf("stored status %s", s)
	}
}

func TestSetStatus_UnknownIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetStatus(context.Background(), "BK-NOPE", domain.BookingConfirmed, admin)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if n := len(f.audit(t)); n != 0 {
		t.Fatalf("audit written for missing booking")
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-6", "d@example.com", 1, domain.BookingPending)
	_, err := f.svc.SetStatus(context.Background(), "BK-6", domain.BookingStatus("archived"), admin)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if s := f.status(t, "BK-6"); s != domain.BookingPending {
		t.Fatalf("status mutated to %s", s)
	}
}

func TestSetStatus_StoreErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-7", "e@example.com", 1, domain.BookingPending)
	svc := f.serviceOn(failingStore{f.store, errors.New("db gone")}, f.mailer)
	if _, err := svc.SetStatus(context.Background(), "BK-7", domain.BookingConfirmed, admin); err == nil {
		t.Fatalf("expected store error")
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("email sent after failed update")
	}
}

// ---- UpdateDetails ----

func TestUpdateDetails_RejectsNonPositiveTravellers(t *testing.T) {
	for _, n := range []int{0, -1} {
		f := newFixture(t)
		before := f.seed(t, "BK-8", "f@example.com", 3, domain.BookingPending)

		_, err := f.svc.UpdateDetails(context.Background(), "BK-8", app.DetailsRequest{Date: "2099-08-01", Travellers: n}, admin)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Fields["travellers"] == "" {
			t.Fatalf("travellers=%d: want travellers validation error, got %v", n, err)
		}
		after, _ := f.store.GetBooking(context.Background(), "BK-8")
		if after.Travellers != before.Travellers || !after.TravelDate.Equal(before.TravelDate) {
			t.Fatalf("travellers=%d: booking changed: %+v", n, after)
		}
		if len(f.audit(t)) != 0 {
			t.Fatalf("audit written for rejected update")
		}
	}
}

func TestUpdateDetails_RejectsBadDate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-9", "g@example.com", 3, domain.BookingPending)
	_, err := f.svc.UpdateDetails(context.Background(), "BK-9", app.DetailsRequest{Date: "next tuesday", Travellers: 2}, admin)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["date"] == "" {
		t.Fatalf("want date validation error, got %v", err)
	}
}

func TestUpdateDetails_AppliesAndAudits(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-10", "h@example.com", 2, domain.BookingConfirmed)

	got, err := f.svc.UpdateDetails(context.Background(), "BK-10",
		app.DetailsRequest{Date: "2099-09-15T14:30:00Z", Travellers: 4}, admin)
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	want := time.Date(2099, 9, 15, 0, 0, 0, 0, time.UTC)
	stored, _ := f.store.GetBooking(context.Background(), "BK-10")
	if !stored.TravelDate.Equal(want) || stored.Travellers != 4 || got.Travellers != 4 {
		t.Fatalf("unexpected stored booking: %+v", stored)
	}
	if stored.Amount != 3000 {
		t.Fatalf("amount changed to %v", stored.Amount)
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("details update must not email, sent %d", n)
	}
	es := f.audit(t)
	if len(es) != 1 || es[0].Action != domain.ActionUpdate {
		t.Fatalf("unexpected audit: %+v", es)
	}
}

func TestUpdateDetails_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateDetails(context.Background(), "BK-NOPE", app.DetailsRequest{Date: "2099-01-01", Travellers: 1}, admin)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// ---- BulkSetStatus ----

func TestBulkSetStatus_Summary(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-A", "a@example.com", 1, domain.BookingPending)
	f.seed(t, "BK-B", "b@example.com", 2, domain.BookingCancelled)
	f.seed(t, "BK-C", "no email here", 1, domain.BookingPending)
	f.seed(t, "BK-D", "bounce@example.com", 1, domain.BookingPending)
	f.mailer.failFor["bounce@example.com"] = true

	res, err := f.svc.BulkSetStatus(context.Background(),
		[]string{"BK-A", "BK-B", "BK-C", "BK-D", "BK-A"}, domain.BookingConfirmed, admin)
	if err != nil {
		t.Fatalf("BulkSetStatus: %v", err)
	}
	if res.Updated != 4 || res.Sent != 2 || res.Failed != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if res.Sent+res.Failed != 3 {
		t.Fatalf("sent+failed must equal rows with a valid email")
	}
	for _, id := range []string{"BK-A", "BK-B", "BK-C", "BK-D"} {
		if s := f.status(t, id); s != domain.BookingConfirmed {
			t.Fatalf("%s stored %s", id, s)
		}
	}
	if n := len(f.audit(t)); n != 4 {
		t.Fatalf("want one audit entry per booking, got %d", n)
	}
	if n := len(f.ops.Activity()); n != 1 {
		t.Fatalf("want a single activity entry, got %d", n)
	}
}

func TestBulkSetStatus_NoSiteURLStillEmails(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-A", "a@example.com", 1, domain.BookingPending)
	f.seed(t, "BK-B", "b@example.com", 2, domain.BookingPending)
	svc := app.NewBookingService(app.BookingDeps{
		Store: f.store, Mailer: f.mailer, Audit: app.NewAuditor(f.store, f.ops), Ops: f.ops,
	})

	res, err := svc.BulkSetStatus(context.Background(), []string{"BK-A", "BK-B"}, domain.BookingConfirmed, admin)
	if err != nil {
		t.Fatalf("BulkSetStatus: %v", err)
	}
	if res.Sent != 2 || res.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	for _, m := range f.mailer.Sent() {
		if strings.Contains(m.HTML, "href=") {
			t.Fatalf("link rendered without a site url: %s", m.HTML)
		}
		if !strings.Contains(m.Subject, "confirmed") {
			t.Fatalf("subject %q", m.Subject)
		}
	}
}

func TestBulkSetStatus_SideEffectsOutliveCaller(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"BK-A", "BK-B", "BK-C", "BK-D", "BK-E"} {
		f.seed(t, id, strings.ToLower(id)+"@example.com", 1, domain.BookingPending)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := &cancellingMailer{cancel: cancel}
	svc := f.serviceOn(ctxStore{f.store}, m)

	res, err := svc.BulkSetStatus(ctx, []string{"BK-A", "BK-B", "BK-C", "BK-D", "BK-E"}, domain.BookingConfirmed, admin)
	if err != nil {
		t.Fatalf("BulkSetStatus: %v", err)
	}
	if res.Sent != 5 || res.Failed != 0 {
		t.Fatalf("sends cut short by the caller: %+v", res)
	}
	if n := m.cancelled.Load(); n != 0 {
		t.Fatalf("%d sends saw a cancelled context", n)
	}
	if n := len(f.audit(t)); n != 5 {
		t.Fatalf("want 5 durable audit entries, got %d", n)
	}
	if n := len(f.events.got); n != 5 {
		t.Fatalf("want 5 events, got %d", n)
	}
}

func TestBulkSetStatus_MissingIDMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-A", "a@example.com", 1, domain.BookingPending)

	_, err := f.svc.BulkSetStatus(context.Background(), []string{"BK-A", "BK-GONE"}, domain.BookingConfirmed, admin)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if s := f.status(t, "BK-A"); s != domain.BookingPending {
		t.Fatalf("BK-A mutated to %s", s)
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("emails sent: %d", n)
	}
}

func TestBulkSetStatus_RejectsPendingTarget(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-A", "a@example.com", 1, domain.BookingConfirmed)
	_, err := f.svc.BulkSetStatus(context.Background(), []string{"BK-A"}, domain.BookingPending, admin)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestBulkSetStatus_EmptyIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.BulkSetStatus(context.Background(), []string{" ", ""}, domain.BookingCancelled, admin)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestBulkSetStatus_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-A", "a@example.com", 1, domain.BookingPending)
	svc := f.serviceOn(failingStore{f.store, errors.New("deadlock")}, f.mailer)
	if _, err := svc.BulkSetStatus(context.Background(), []string{"BK-A"}, domain.BookingCancelled, admin); err == nil {
		t.Fatalf("expected error")
	}
	if n := len(f.mailer.Sent()); n != 0 {
		t.Fatalf("emails sent after failed update: %d", n)
	}
}

// ---- Create ----

func TestCreate_PendingBookingWithSideEffects(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.Create(context.Background(), app.BookingRequest{
		Name: "Amani Kariuki", Email: "Amani@Example.com", PackageID: f.pkgID,
		Date: "2099-06-01", Travellers: 3, Notes: "vegetarian",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(b.ID, "BK-") || len(b.ID) != 11 {
		t.Fatalf("unexpected id %q", b.ID)
	}
	if b.Status != domain.BookingPending || b.Amount != 4500 {
		t.Fatalf("unexpected booking: %+v", b)
	}
	stored, err := f.store.GetBooking(context.Background(), b.ID)
	if err != nil || stored.CustomerEmail != "amani@example.com" {
		t.Fatalf("stored booking: %+v, err %v", stored, err)
	}
	c, _ := f.store.GetCustomer(context.Background(), b.CustomerID)
	if c.Segment != domain.SegmentNew {
		t.Fatalf("new customer segment %q", c.Segment)
	}
	if f.ops.Unread() != 1 {
		t.Fatalf("want 1 unread notification, got %d", f.ops.Unread())
	}
	if es := f.audit(t); len(es) != 1 || es[0].Actor != "website" || es[0].Action != domain.ActionCreate {
		t.Fatalf("unexpected audit: %+v", es)
	}
	if len(f.mailer.Sent()) != 1 || len(f.alerts.texts) != 1 {
		t.Fatalf("want ack email and staff alert")
	}
	if len(f.events.got) != 1 || f.events.got[0].Type != domain.EventBookingCreated {
		t.Fatalf("unexpected events: %+v", f.events.got)
	}
}

func TestCreate_RejectsDraftPackage(t *testing.T) {
	f := newFixture(t)
	id, _ := f.store.CreatePackage(context.Background(), domain.Package{
		Title: "Secret", Country: "kenya", DurationDays: 1, MinGroup: 1, MaxGroup: 2, Status: domain.PackageDraft,
	})
	_, err := f.svc.Create(context.Background(), app.BookingRequest{
		Name: "X", Email: "x@example.com", PackageID: id, Date: "2099-06-01", Travellers: 1,
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["packageId"] == "" {
		t.Fatalf("want packageId validation error, got %v", err)
	}
}

func TestCreate_ValidatesGroupSizeAndFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), app.BookingRequest{
		Name: "X", Email: "x@example.com", PackageID: f.pkgID, Date: "2099-06-01", Travellers: 9,
	})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["travellers"] == "" {
		t.Fatalf("want travellers validation error, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), app.BookingRequest{Email: "nope", Date: "2099-06-01"})
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, k := range []string{"name", "email", "packageId", "travellers"} {
		if ve.Fields[k] == "" {
			t.Fatalf("missing field error for %s: %v", k, ve.Fields)
		}
	}
	bs, _ := f.store.ListBookings(context.Background(), domain.BookingsQuery{})
	if len(bs) != 0 {
		t.Fatalf("booking stored despite validation failure")
	}
}
