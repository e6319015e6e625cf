package app

import (
	"bytes"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"safari_tours/internal/domain"
)

// validEmail is the "syntactically valid" check used to decide whether a
// customer is emailed at all.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

var emailTmpl = template.Must(template.New("email").Parse(`
{{define "layout"}}<!doctype html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#1f2a24;background:#f6f3ec;padding:24px">
<table width="100%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:auto;background:#fff;border-radius:8px">
<tr><td style="background:#1F4E3D;color:#fff;padding:20px 24px;font-size:20px">{{.Heading}}</td></tr>
<tr><td style="padding:24px;line-height:1.5">{{template "body" .}}</td></tr>
{{if .Link}}<tr><td style="padding:0 24px 24px"><a href="{{.Link}}" style="background:#C8A165;color:#fff;padding:10px 18px;border-radius:4px;text-decoration:none">{{.LinkText}}</a></td></tr>{{end}}
</table></body></html>{{end}}
`))

var statusBody = template.Must(template.Must(emailTmpl.Clone()).Parse(`{{define "body"}}
<p>Hello {{.Name}},</p>
{{if eq .Status "confirmed"}}<p>Good news: your booking <strong>{{.BookingID}}</strong> for <strong>{{.Package}}</strong> on {{.Date}} ({{.Travellers}} travellers) is confirmed.</p>
<p>Our team will be in touch with final travel details.</p>
{{else}}<p>Your booking <strong>{{.BookingID}}</strong> for <strong>{{.Package}}</strong> on {{.Date}} has been cancelled.</p>
<p>If this is unexpected, reply to this email and we will help.</p>{{end}}
{{end}}`))

var receivedBody = template.Must(template.Must(emailTmpl.Clone()).Parse(`{{define "body"}}
<p>Hello {{.Name}},</p>
<p>We received your request <strong>{{.BookingID}}</strong> for <strong>{{.Package}}</strong> on {{.Date}} for {{.Travellers}} travellers.</p>
<p>A travel consultant will review it and confirm availability shortly.</p>
{{end}}`))

var broadcastBody = template.Must(template.Must(emailTmpl.Clone()).Parse(`{{define "body"}}
<p>Hello {{.Name}},</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{end}}`))

type emailData struct {
	Heading    string
	Name       string
	BookingID  string
	Package    string
	Date       string
	Travellers int
	Status     string
	Paragraphs []string
	Link       string
	LinkText   string
}

func render(t *template.Template, d emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// siteLink is empty when no public site is configured; the email then goes
// out without its link button.
func siteLink(siteURL, path string) string {
	if strings.TrimSpace(siteURL) == "" {
		return ""
	}
	return strings.TrimRight(siteURL, "/") + path
}

// statusEmail builds the customer email for a confirmed or cancelled booking.
func statusEmail(b domain.Booking, siteURL string) (domain.Email, error) {
	link := siteLink(siteURL, "/tours/"+fmt.Sprint(b.PackageID))
	d := emailData{
		Name:       b.CustomerName,
		BookingID:  b.ID,
		Package:    b.PackageTitle,
		Date:       b.TravelDate.Format(domain.DateLayout),
		Travellers: b.Travellers,
		Status:     string(b.Status),
		Link:       link,
		LinkText:   "View your tour",
	}
	var subject, text string
	switch b.Status {
	case domain.BookingConfirmed:
		d.Heading = "Your safari is confirmed"
		subject = fmt.Sprintf("Booking %s confirmed", b.ID)
		text = fmt.Sprintf("Hello %s, your booking %s for %s on %s is confirmed.", d.Name, b.ID, d.Package, d.Date)
	case domain.BookingCancelled:
		d.Heading = "Your booking was cancelled"
		subject = fmt.Sprintf("Booking %s cancelled", b.ID)
		text = fmt.Sprintf("Hello %s, your booking %s for %s on %s has been cancelled.", d.Name, b.ID, d.Package, d.Date)
	default:
		return domain.Email{}, fmt.Errorf("no email for status %s", b.Status)
	}
	html, err := render(statusBody, d)
	if err != nil {
		return domain.Email{}, fmt.Errorf("render status email: %w", err)
	}
	return domain.Email{To: b.CustomerEmail, Subject: subject, HTML: html, Text: text}, nil
}

func receivedEmail(b domain.Booking, siteURL string) (domain.Email, error) {
	link := siteLink(siteURL, "/tours/"+fmt.Sprint(b.PackageID))
	d := emailData{
		Heading:    "We received your booking request",
		Name:       b.CustomerName,
		BookingID:  b.ID,
		Package:    b.PackageTitle,
		Date:       b.TravelDate.Format(domain.DateLayout),
		Travellers: b.Travellers,
		Link:       link,
		LinkText:   "View the tour",
	}
	html, err := render(receivedBody, d)
	if err != nil {
		return domain.Email{}, fmt.Errorf("render received email: %w", err)
	}
	return domain.Email{
		To:      b.CustomerEmail,
		Subject: fmt.Sprintf("Booking request %s received", b.ID),
		HTML:    html,
		Text:    fmt.Sprintf("Hello %s, we received your request %s for %s on %s.", d.Name, b.ID, d.Package, d.Date),
	}, nil
}

func broadcastEmail(c domain.Customer, subject, message string) (domain.Email, error) {
	var paras []string
	for _, p := range strings.Split(message, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	html, err := render(broadcastBody, emailData{Heading: subject, Name: c.Name, Paragraphs: paras})
	if err != nil {
		return domain.Email{}, fmt.Errorf("render broadcast: %w", err)
	}
	return domain.Email{To: c.Email, Subject: subject, HTML: html, Text: message}, nil
}
