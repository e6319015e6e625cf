package domain

import "time"

type Segment string

const (
	SegmentVIP       Segment = "vip"
	SegmentNew       Segment = "new"
	SegmentReturning Segment = "returning"
)

func (s Segment) IsValid() bool {
	return s == SegmentVIP || s == SegmentNew || s == SegmentReturning
}

// Customer.BookingCount and LifetimeValue are derived from bookings at read time.
type Customer struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Segment       Segment   `json:"segment"`
	Note          string    `json:"note,omitempty"`
	BookingCount  int       `json:"bookingCount"`
	LifetimeValue float64   `json:"lifetimeValue"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CustomersQuery struct {
	Segment *Segment
	Q       string
	IDs     []int64
}
