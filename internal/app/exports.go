package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"safari_tours/internal/domain"
	"safari_tours/internal/export"
)

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

const (
	ScopeFiltered = "filtered"
	ScopeSelected = "selected"
)

type BookingExport struct {
	Format export.Format
	Scope  string
	IDs    []string
	Status *domain.BookingStatus
	Q      string
}

var bookingColumns = []export.Column{
	{Key: "id", Header: "Booking", Width: 14},
	{Key: "customer", Header: "Customer", Width: 24},
	{Key: "email", Header: "Email", Width: 28},
	{Key: "phone", Header: "Phone", Width: 16},
	{Key: "package", Header: "Package", Width: 32},
	{Key: "date", Header: "Travel date", Width: 13},
	{Key: "travellers", Header: "Travellers", Width: 11},
	{Key: "amount", Header: "Amount (USD)", Width: 14},
	{Key: "status", Header: "Status", Width: 12},
	{Key: "created", Header: "Created", Width: 22},
}

// Export renders the selected or filtered bookings. Selected ids that no
// longer exist are left out.
func (s *BookingService) Export(ctx context.Context, req BookingExport) (File, error) {
	var (
		rows []domain.Booking
		err  error
	)
	switch req.Scope {
	case ScopeSelected:
		ids := dedupe(req.IDs)
		if len(ids) == 0 {
			return File{}, domain.Invalid("ids", "is required when scope is selected")
		}
		rows, err = s.store.ListBookingsByIDs(ctx, ids)
	case "", ScopeFiltered:
		req.Scope = ScopeFiltered
		rows, err = s.store.ListBookings(ctx, domain.BookingsQuery{Status: req.Status, Q: req.Q})
	default:
		return File{}, domain.Invalid("scope", "must be one of: filtered, selected")
	}
	if err != nil {
		return File{}, err
	}

	out := make([]export.Row, 0, len(rows))
	for _, b := range rows {
		out = append(out, export.Row{
			"id":         b.ID,
			"customer":   b.CustomerName,
			"email":      b.CustomerEmail,
			"phone":      b.CustomerPhone,
			"package":    b.PackageTitle,
			"date":       b.TravelDate,
			"travellers": b.Travellers,
			"amount":     b.Amount,
			"status":     b.Status,
			"created":    b.CreatedAt,
		})
	}
	status := "all"
	if req.Status != nil {
		status = req.Status.String()
	}
	return renderFile(req.Format, "bookings", req.Scope, s.clock(), "Bookings", s.logo, bookingColumns, out, []export.Meta{
		{Key: "Status", Value: status},
	})
}

type CustomerExport struct {
	Format  export.Format
	Scope   string
	IDs     []int64
	Segment *domain.Segment
	Q       string
}

var customerColumns = []export.Column{
	{Key: "id", Header: "ID", Width: 8},
	{Key: "name", Header: "Name", Width: 24},
	{Key: "email", Header: "Email", Width: 28},
	{Key: "phone", Header: "Phone", Width: 16},
	{Key: "segment", Header: "Segment", Width: 12},
	{Key: "bookings", Header: "Bookings", Width: 10},
	{Key: "ltv", Header: "Lifetime value (USD)", Width: 20},
	{Key: "note", Header: "Note", Width: 40},
	{Key: "since", Header: "Customer since", Width: 22},
}

func (s *CustomerService) Export(ctx context.Context, req CustomerExport) (File, error) {
	q := domain.CustomersQuery{Segment: req.Segment, Q: req.Q}
	switch req.Scope {
	case ScopeSelected:
		if len(req.IDs) == 0 {
			return File{}, domain.Invalid("ids", "is required when scope is selected")
		}
		q = domain.CustomersQuery{IDs: req.IDs}
	case "", ScopeFiltered:
		req.Scope = ScopeFiltered
	default:
		return File{}, domain.Invalid("scope", "must be one of: filtered, selected")
	}
	cs, err := s.store.ListCustomers(ctx, q)
	if err != nil {
		return File{}, err
	}
	out := make([]export.Row, 0, len(cs))
	for _, c := range cs {
		out = append(out, export.Row{
			"id":       c.ID,
			"name":     c.Name,
			"email":    c.Email,
			"phone":    c.Phone,
			"segment":  c.Segment,
			"bookings": c.BookingCount,
			"ltv":      c.LifetimeValue,
			"note":     c.Note,
			"since":    c.CreatedAt,
		})
	}
	seg := "all"
	if req.Segment != nil {
		seg = string(*req.Segment)
	}
	return renderFile(req.Format, "customers", req.Scope, s.clock(), "Customers", s.logo, customerColumns, out, []export.Meta{
		{Key: "Segment", Value: seg},
	})
}

func renderFile(f export.Format, resource, scope string, at time.Time, title string, logo export.Logo, cols []export.Column, rows []export.Row, meta []export.Meta) (File, error) {
	if f == "" {
		f = export.FormatCSV
	}
	name := export.Filename(resource, scope, at, f)
	switch f {
	case export.FormatXLSX:
		meta = append([]export.Meta{
			{Key: "Generated", Value: at.Format(time.RFC1123)},
			{Key: "Scope", Value: scope},
		}, append(meta, export.Meta{Key: "Rows", Value: strconv.Itoa(len(rows))})...)
		body, err := export.Workbook(export.Sheet{
			Name:    title,
			Title:   title + " export",
			Logo:    logo,
			Meta:    meta,
			Columns: cols,
			Rows:    rows,
		})
		if err != nil {
			return File{}, fmt.Errorf("render %s workbook: %w", resource, err)
		}
		return File{Name: name, ContentType: f.ContentType(), Body: body}, nil
	case export.FormatCSV:
		return File{Name: name, ContentType: f.ContentType(), Body: export.CSV(cols, rows)}, nil
	}
	return File{}, domain.Invalid("format", "must be one of: csv, xlsx")
}
