package app_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"safari_tours/internal/app"
	"safari_tours/internal/domain"
	"safari_tours/internal/export"
)

func TestReports_SummaryAndRevenue(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-1", "a@example.com", 2, domain.BookingConfirmed) // 3000
	f.seed(t, "BK-2", "b@example.com", 1, domain.BookingConfirmed) // 1500
	f.seed(t, "BK-3", "c@example.com", 1, domain.BookingPending)   // 1500
	f.seed(t, "BK-4", "d@example.com", 3, domain.BookingCancelled)

	r := app.NewReportService(f.store)
	s, err := r.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Total != 4 || s.ByStatus[domain.BookingConfirmed] != 2 || s.ByStatus[domain.BookingCancelled] != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.ConfirmedRevenue != 4500 || s.PendingValue != 1500 || s.Travellers != 3 || s.ThisMonth != 4 {
		t.Fatalf("unexpected totals: %+v", s)
	}

	months, err := r.Revenue(context.Background(), 3)
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if len(months) != 3 {
		t.Fatalf("want 3 buckets, got %d", len(months))
	}
	last := months[2]
	if last.Month != time.Now().UTC().Format("2006-01") || last.Revenue != 4500 || last.Bookings != 2 {
		t.Fatalf("unexpected current month: %+v", last)
	}
	if months[0].Revenue != 0 {
		t.Fatalf("older bucket should be empty: %+v", months[0])
	}
}

func TestReports_RevenueBounds(t *testing.T) {
	r := app.NewReportService(newFixture(t).store)
	for _, m := range []int{0, 25} {
		var ve *domain.ValidationError
		if _, err := r.Revenue(context.Background(), m); !errors.As(err, &ve) {
			t.Fatalf("months=%d: want ValidationError, got %v", m, err)
		}
	}
}

func TestBookingExport_SelectedScope(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-1", "a@example.com", 2, domain.BookingConfirmed)
	f.seed(t, "BK-2", "b@example.com", 1, domain.BookingPending)

	file, err := f.svc.Export(context.Background(), app.BookingExport{
		Format: export.FormatCSV, Scope: app.ScopeSelected, IDs: []string{"BK-2", "BK-2", "BK-GONE"},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(file.Name, "bookings_selected_") || !strings.HasSuffix(file.Name, ".csv") {
		t.Fatalf("filename %q", file.Name)
	}
	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "BK-2,") {
		t.Fatalf("unexpected csv:\n%s", file.Body)
	}

	var ve *domain.ValidationError
	if _, err := f.svc.Export(context.Background(), app.BookingExport{Scope: app.ScopeSelected}); !errors.As(err, &ve) {
		t.Fatalf("selected without ids: want ValidationError, got %v", err)
	}
}

func TestBookingExport_XLSX(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-1", "a@example.com", 2, domain.BookingConfirmed)
	confirmed := domain.BookingConfirmed
	file, err := f.svc.Export(context.Background(), app.BookingExport{Format: export.FormatXLSX, Status: &confirmed})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(file.Name, "bookings_filtered_") || !strings.HasSuffix(file.Name, ".xlsx") {
		t.Fatalf("filename %q", file.Name)
	}
	if len(file.Body) < 4 || string(file.Body[:2]) != "PK" {
		t.Fatalf("not a zip container")
	}
}

func TestCustomerExport_XLSXCarriesLogo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "BK-1", "a@example.com", 2, domain.BookingConfirmed)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	logo := export.Logo{Data: buf.Bytes(), Ext: ".png"}
	svc := app.NewCustomerService(f.store, f.mailer, nil, 1).WithLogo(logo)

	file, err := svc.Export(context.Background(), app.CustomerExport{Format: export.FormatXLSX})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(file.Body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	// nine customer columns: the logo sits at the end of the title band
	pics, err := wb.GetPictures("Customers", "I1")
	if err != nil || len(pics) != 1 {
		t.Fatalf("pictures = %d, %v", len(pics), err)
	}
}
