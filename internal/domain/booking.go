package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}

// ParseBookingStatus accepts the three lifecycle values, case-insensitively.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid booking status %q", s)
	}
	return st, nil
}

func (s BookingStatus) IsValid() bool {
	for _, v := range bookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Notifies reports whether entering this status emails the customer.
func (s BookingStatus) Notifies() bool {
	return s == BookingConfirmed || s == BookingCancelled
}

func (s BookingStatus) String() string { return string(s) }

// Transition is the outcome of asking the policy whether from -> to may happen.
type Transition struct {
	From    BookingStatus
	To      BookingStatus
	Allowed bool
	Reason  string
}

// bookingTransitions lists the targets reachable from each state. Staff may
// currently move a booking between any two states, including re-applying the
// current one; tighten here (e.g. make cancelled terminal) when the product does.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingPending, BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingPending, BookingConfirmed, BookingCancelled},
	BookingCancelled: {BookingPending, BookingConfirmed, BookingCancelled},
}

// Decide evaluates the transition policy.
func Decide(from, to BookingStatus) Transition {
	t := Transition{From: from, To: to}
	if !to.IsValid() {
		t.Reason = fmt.Sprintf("unknown target status %q", to)
		return t
	}
	targets, ok := bookingTransitions[from]
	if !ok {
		t.Reason = fmt.Sprintf("unknown current status %q", from)
		return t
	}
	for _, s := range targets {
		if s == to {
			t.Allowed = true
			return t
		}
	}
	t.Reason = fmt.Sprintf("%s bookings cannot become %s", from, to)
	return t
}

type Booking struct {
	ID            string        `json:"id"`
	CustomerID    int64         `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	PackageID     int64         `json:"packageId"`
	PackageTitle  string        `json:"packageTitle"`
	TravelDate    time.Time     `json:"travelDate"`
	Travellers    int           `json:"travellers"`
	Amount        float64       `json:"amount"`
	Status        BookingStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type BookingsQuery struct {
	Status      *BookingStatus
	Q           string // matches id, customer name or email
	CreatedFrom *time.Time
	Limit       int
}

// BookingEvent is published to the event stream after a committed booking mutation.
type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"bookingId"`
	From       BookingStatus `json:"from,omitempty"`
	To         BookingStatus `json:"to,omitempty"`
	Travellers int           `json:"travellers,omitempty"`
	TravelDate string        `json:"travelDate,omitempty"`
	Actor      string        `json:"actor"`
	At         time.Time     `json:"at"`
}

const (
	EventBookingCreated        = "booking.created"
	EventBookingStatusChanged  = "booking.status_changed"
	EventBookingDetailsUpdated = "booking.details_updated"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// ParseTravelDate accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC.
func ParseTravelDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
