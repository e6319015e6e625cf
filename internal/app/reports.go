package app

import (
	"context"
	"time"

	"github.com/jinzhu/now"

	"safari_tours/internal/domain"
)

const maxRevenueMonths = 24

type ReportService struct {
	bookings domain.BookingRepository
	clock    func() time.Time
}

func NewReportService(r domain.BookingRepository) *ReportService {
	return &ReportService{bookings: r, clock: func() time.Time { return time.Now().UTC() }}
}

type Summary struct {
	Total            int                          `json:"total"`
	ByStatus         map[domain.BookingStatus]int `json:"byStatus"`
	ConfirmedRevenue float64                      `json:"confirmedRevenue"`
	PendingValue     float64                      `json:"pendingValue"`
	ThisMonth        int                          `json:"thisMonth"`
	Travellers       int                          `json:"confirmedTravellers"`
}

// Summary counts every booking; revenue only includes confirmed ones.
func (s *ReportService) Summary(ctx context.Context) (Summary, error) {
	bs, err := s.bookings.ListBookings(ctx, domain.BookingsQuery{})
	if err != nil {
		return Summary{}, err
	}
	monthStart := now.With(s.clock()).BeginningOfMonth()
	out := Summary{ByStatus: map[domain.BookingStatus]int{
		domain.BookingPending: 0, domain.BookingConfirmed: 0, domain.BookingCancelled: 0,
	}}
	for _, b := range bs {
		out.Total++
		out.ByStatus[b.Status]++
		switch b.Status {
		case domain.BookingConfirmed:
			out.ConfirmedRevenue += b.Amount
			out.Travellers += b.Travellers
		case domain.BookingPending:
			out.PendingValue += b.Amount
		}
		if !b.CreatedAt.Before(monthStart) {
			out.ThisMonth++
		}
	}
	return out, nil
}

type MonthRevenue struct {
	Month    string  `json:"month"` // YYYY-MM
	Revenue  float64 `json:"revenue"`
	Bookings int     `json:"bookings"`
}

// Revenue buckets confirmed bookings by creation month, oldest first,
// covering the current month and the months-1 before it.
func (s *ReportService) Revenue(ctx context.Context, months int) ([]MonthRevenue, error) {
	if months < 1 || months > maxRevenueMonths {
		return nil, domain.Invalid("months", "must be between 1 and 24")
	}
	current := now.With(s.clock()).BeginningOfMonth()
	from := current.AddDate(0, -(months - 1), 0)

	confirmed := domain.BookingConfirmed
	bs, err := s.bookings.ListBookings(ctx, domain.BookingsQuery{Status: &confirmed, CreatedFrom: &from})
	if err != nil {
		return nil, err
	}
	out := make([]MonthRevenue, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m := from.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = m
		index[m] = i
	}
	for _, b := range bs {
		i, ok := index[now.With(b.CreatedAt.UTC()).BeginningOfMonth().Format("2006-01")]
		if !ok {
			continue
		}
		out[i].Revenue += b.Amount
		out[i].Bookings++
	}
	return out, nil
}
