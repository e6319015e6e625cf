// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"

	"safari_tours/internal/adapters/observability"
	"safari_tours/internal/domain"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	RPS      int // outbound messages per second
}

// Dialer is the part of *gomail.Dialer the mailer uses.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	cfg      Config
	d        Dialer
	rl       *rate.Limiter
	attempts int
	base     time.Duration
}

// New never fails: an incomplete config surfaces as ErrNotConfigured on Send.
func New(cfg Config) *Mailer {
	var d Dialer
	if cfg.Host != "" {
		if cfg.Port == 0 {
			cfg.Port = 587
		}
		d = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return NewWithDialer(cfg, d)
}

func NewWithDialer(cfg Config, d Dialer) *Mailer {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	return &Mailer{
		cfg:      cfg,
		d:        d,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
		attempts: 3,
		base:     200 * time.Millisecond,
	}
}

// Configured reports whether Send can succeed at all.
func (m *Mailer) Configured() bool { return m.d != nil && m.cfg.From != "" }

// Send delivers one message, retrying transient failures with backoff.
func (m *Mailer) Send(ctx context.Context, e domain.Email) error {
	if !m.Configured() {
		return fmt.Errorf("smtp: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(e.To) == "" {
		return errors.New("smtp: empty recipient")
	}
	if err := m.rl.Wait(ctx); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	switch {
	case e.Text != "" && e.HTML != "":
		msg.SetBody("text/plain", e.Text)
		msg.AddAlternative("text/html", e.HTML)
	case e.HTML != "":
		msg.SetBody("text/html", e.HTML)
	default:
		msg.SetBody("text/plain", e.Text)
	}

	var err error
	for i := 0; i < m.attempts; i++ {
		start := time.Now()
		err = m.d.DialAndSend(msg)
		observability.ObserveExternal("smtp", "send", statusOf(err), time.Since(start))
		if err == nil {
			observability.ObserveNotification(nil)
			return nil
		}
		if permanent(err) {
			break
		}
		log.Debug().Err(err).Int("attempt", i+1).Str("to", e.To).Msg("smtp send retry")
		if i < m.attempts-1 && !sleepCtx(ctx, backoff(m.base, i)) {
			err = ctx.Err()
			break
		}
	}
	observability.ObserveNotification(err)
	return fmt.Errorf("smtp send to %s: %w", e.To, err)
}

// permanentReply matches a 5xx SMTP reply; gomail flattens the reply into
// its error text ("gomail: could not send email 1: 550 ...").
var permanentReply = regexp.MustCompile(`(^|: )5\d\d `)

func permanent(err error) bool { return permanentReply.MatchString(err.Error()) }

func statusOf(err error) int {
	if err == nil {
		return 250
	}
	if permanent(err) {
		return 550
	}
	return 451
}
