package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"eventhub/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

const bookingConfirmation = "booking_confirmation"

// TemplateRenderer renders booking emails from the embedded templates.
// Templates are parsed once, when the renderer is built.
type TemplateRenderer struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// NewTemplateRenderer parses the booking confirmation templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	subject, err := texttemplate.ParseFS(templateFS, "templates/"+bookingConfirmation+"_subject.txt")
	if err != nil {
		return nil, fmt.Errorf("parse %s subject: %w", bookingConfirmation, err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/"+bookingConfirmation+".txt")
	if err != nil {
		return nil, fmt.Errorf("parse %s text: %w", bookingConfirmation, err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/"+bookingConfirmation+".html")
	if err != nil {
		return nil, fmt.Errorf("parse %s html: %w", bookingConfirmation, err)
	}
	return &TemplateRenderer{subject: subject, text: text, html: html}, nil
}

// RenderBookingConfirmation renders the confirmation sent after a booking.
// The subject is collapsed to a single line.
func (r *TemplateRenderer) RenderBookingConfirmation(data *domain.BookingConfirmationEmailData) (domain.RenderedEmail, error) {
	if data == nil {
		return domain.RenderedEmail{}, fmt.Errorf("render %s: no data", bookingConfirmation)
	}
	var subject, text, html bytes.Buffer
	if err := r.subject.Execute(&subject, data); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("render subject: %w", err)
	}
	if err := r.text.Execute(&text, data); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("render text: %w", err)
	}
	if err := r.html.Execute(&html, data); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("render html: %w", err)
	}
	return domain.RenderedEmail{
		Subject: strings.Join(strings.Fields(subject.String()), " "),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
