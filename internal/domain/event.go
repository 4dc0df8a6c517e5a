package domain

import (
	"context"
	"time"
)

// Event is a listed event that users can book.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Slug        string    `json:"slug"`
	Description string    `json:"description" validate:"required"`
	Overview    string    `json:"overview" validate:"required"`
	Image       string    `json:"image" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Date        string    `json:"date" validate:"required"`
	Time        string    `json:"time" validate:"required"`
	Mode        string    `json:"mode" validate:"required"`
	Audience    string    `json:"audience" validate:"required"`
	Organizer   string    `json:"organizer" validate:"required"`
	Agenda      []string  `json:"agenda" validate:"min=1,dive,required"`
	Tags        []string  `json:"tags" validate:"min=1,dive,required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInput carries the caller-supplied fields of an event. Slug, ID and
// timestamps are always server-generated.
type EventInput struct {
	Title       string
	Description string
	Overview    string
	Image       string
	Venue       string
	Location    string
	Date        string
	Time        string
	Mode        string
	Audience    string
	Organizer   string
	Agenda      []string
	Tags        []string
}

// NewEvent returns an unsaved Event built from the input.
func NewEvent(in EventInput) *Event {
	return &Event{
		Title:       in.Title,
		Description: in.Description,
		Overview:    in.Overview,
		Image:       in.Image,
		Venue:       in.Venue,
		Location:    in.Location,
		Date:        in.Date,
		Time:        in.Time,
		Mode:        in.Mode,
		Audience:    in.Audience,
		Organizer:   in.Organizer,
		Agenda:      in.Agenda,
		Tags:        in.Tags,
	}
}

// EventPatch lists optional field changes for an existing event.
// Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *string
	Audience    *string
	Organizer   *string
	Agenda      []string
	Tags        []string
}

// Apply returns a copy of e with the patch applied.
func (p EventPatch) Apply(e Event) Event {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&e.Title, p.Title)
	set(&e.Description, p.Description)
	set(&e.Overview, p.Overview)
	set(&e.Image, p.Image)
	set(&e.Venue, p.Venue)
	set(&e.Location, p.Location)
	set(&e.Date, p.Date)
	set(&e.Time, p.Time)
	set(&e.Mode, p.Mode)
	set(&e.Audience, p.Audience)
	set(&e.Organizer, p.Organizer)
	if p.Agenda != nil {
		e.Agenda = append([]string(nil), p.Agenda...)
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), p.Tags...)
	}
	return e
}

// EventRepository defines the interface for event storage.
// Create and Update return ErrDuplicateSlug when the slug is already taken.
type EventRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByTag(ctx context.Context, tag string) ([]*Event, error)
	// List returns events ordered by creation time, newest first.
	List(ctx context.Context, params PaginationParams) ([]*Event, error)
	Count(ctx context.Context) (int, error)
}

// EventService defines event-facing operations.
type EventService interface {
	CreateEvent(ctx context.Context, in EventInput) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByTag(ctx context.Context, tag string) ([]*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	// GetSimilarEvents returns events sharing at least one tag with the given event, excluding it.
	GetSimilarEvents(ctx context.Context, slug string) ([]*Event, error)
	UpdateEvent(ctx context.Context, slug string, patch EventPatch) (*Event, error)
	// DeleteEvent removes the event only; its bookings are left in place.
	DeleteEvent(ctx context.Context, slug string) error
}
