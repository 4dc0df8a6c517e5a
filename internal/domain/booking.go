package domain

import (
	"context"
	"time"
)

// Booking is a spot reserved on an event by email.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id" validate:"required"`
	Email     string    `json:"email" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBooking returns an unsaved Booking. ID is typically set by the repository on create.
func NewBooking(eventID, email string) *Booking {
	return &Booking{
		EventID: eventID,
		Email:   email,
	}
}

// BookingWithEvent bundles a booking with the event it references.
// Event is nil when the event has been deleted since the booking was made.
type BookingWithEvent struct {
	Booking *Booking `json:"booking"`
	Event   *Event   `json:"event"`
}

// BookingPatch lists optional field changes for an existing booking.
type BookingPatch struct {
	EventID *string
	Email   *string
}

// Apply returns a copy of b with the patch applied.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.EventID != nil {
		b.EventID = *p.EventID
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	return b
}

// EventLookup reports whether an event with the given ID exists.
type EventLookup interface {
	EventExists(ctx context.Context, id string) (bool, error)
}

// EventLookupFunc adapts a function to EventLookup.
type EventLookupFunc func(ctx context.Context, id string) (bool, error)

func (f EventLookupFunc) EventExists(ctx context.Context, id string) (bool, error) {
	return f(ctx, id)
}

// BookingRepository defines storage operations for bookings.
type BookingRepository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, booking *Booking) error
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Booking, error)
	ListByEmail(ctx context.Context, email string) ([]*Booking, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// BookingService defines booking operations.
type BookingService interface {
	CreateBooking(ctx context.Context, eventID, email string) (*Booking, error)
	// BookEvent creates a booking and reports only whether it succeeded; failures are logged.
	BookEvent(ctx context.Context, eventID, email string) bool
	UpdateBooking(ctx context.Context, id string, patch BookingPatch) (*Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookingsByEvent(ctx context.Context, eventID string) ([]*Booking, int, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]*BookingWithEvent, error)
}
