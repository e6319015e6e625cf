// Package opslog keeps the process-local admin streams: a bounded activity
// feed, the notification list and a bounded mirror of recent audit entries.
// Durable audit rows live in the store; everything here is lost on restart.
package opslog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"safari_tours/internal/domain"
)

const (
	ActivityCap = 20
	AuditCap    = 50
)

type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

type Activity struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Meta  string    `json:"meta"`
	Time  time.Time `json:"time"`
	Tone  Tone      `json:"tone"`
	Href  string    `json:"href,omitempty"`
}

type Notification struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Href  string    `json:"href,omitempty"`
	Time  time.Time `json:"time"`
	Read  bool      `json:"read"`
}

// Log is safe for concurrent use. The zero value is not usable; call New.
type Log struct {
	mu       sync.Mutex
	now      func() time.Time
	activity *ring[Activity]
	audit    *ring[domain.AuditEntry]
	notes    []Notification // oldest first
}

func New() *Log {
	return &Log{
		now:      time.Now,
		activity: newRing[Activity](ActivityCap),
		audit:    newRing[domain.AuditEntry](AuditCap),
	}
}

// PushActivity inserts at the head, evicting the oldest entry past the cap.
func (l *Log) PushActivity(a Activity) Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Time.IsZero() {
		a.Time = l.now()
	}
	if a.Tone == "" {
		a.Tone = ToneInfo
	}
	l.activity.push(a)
	return a
}

// Activity returns the feed newest first.
func (l *Log) Activity() []Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activity.newestFirst()
}

func (l *Log) MirrorAudit(e domain.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.audit.push(e)
}

func (l *Log) Audit() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.audit.newestFirst()
}

func (l *Log) Notify(n Notification) Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Time.IsZero() {
		n.Time = l.now()
	}
	n.Read = false
	l.notes = append(l.notes, n)
	return n
}

// Notifications returns all notifications newest first.
func (l *Log) Notifications() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.notes))
	for i, n := range l.notes {
		out[len(l.notes)-1-i] = n
	}
	return out
}

// MarkRead reports whether a notification with that id exists.
func (l *Log) MarkRead(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.notes {
		if l.notes[i].ID == id {
			l.notes[i].Read = true
			return true
		}
	}
	return false
}

func (l *Log) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.notes {
		l.notes[i].Read = true
	}
}

func (l *Log) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.notes {
		if !x.Read {
			n++
		}
	}
	return n
}

// ring is a fixed-capacity buffer that overwrites its oldest element.
type ring[T any] struct {
	buf  []T
	next int
	size int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

func (r *ring[T]) newestFirst() []T {
	out := make([]T, 0, r.size)
	for i := 1; i <= r.size; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}
