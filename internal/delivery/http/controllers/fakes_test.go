package controllers

import (
	"context"
	"io"
	"log/slog"

	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events map[string]*domain.Event // slug -> event
	err    error

	lastInput     domain.EventInput
	lastPatch     domain.EventPatch
	lastParams    domain.PaginationParams
	lastTag       string
	lastDeleted   string
	total         int
	similarResult []*domain.Event
}

func (f *fakeEventService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: "ev-created", Title: in.Title, Slug: domain.Slugify(in.Title)}, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	out := make([]*domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, f.total, nil
}

func (f *fakeEventService) ListEventsByTag(ctx context.Context, tag string) ([]*domain.Event, error) {
	f.lastTag = tag
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Event{}
	for _, e := range f.events {
		for _, t := range e.Tags {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeEventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.events[slug]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventService) GetSimilarEvents(ctx context.Context, slug string) ([]*domain.Event, error) {
	if _, err := f.GetEventBySlug(ctx, slug); err != nil {
		return nil, err
	}
	return f.similarResult, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, slug string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastPatch = patch
	e, err := f.GetEventBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(*e)
	return &updated, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, slug string) error {
	if _, err := f.GetEventBySlug(ctx, slug); err != nil {
		return err
	}
	f.lastDeleted = slug
	return nil
}

// fakeBookingService implements domain.BookingService for handler tests.
type fakeBookingService struct {
	err         error
	bookings    []*domain.Booking
	withEvents  []*domain.BookingWithEvent
	lastEventID string
	lastEmail   string
	lastID      string
	lastPatch   domain.BookingPatch
}

func (f *fakeBookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	f.lastEventID, f.lastEmail = eventID, email
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Booking{ID: "bk-1", EventID: eventID, Email: domain.NormalizeEmail(email)}, nil
}

func (f *fakeBookingService) BookEvent(ctx context.Context, eventID, email string) bool {
	_, err := f.CreateBooking(ctx, eventID, email)
	return err == nil
}

func (f *fakeBookingService) UpdateBooking(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	f.lastID, f.lastPatch = id, patch
	if f.err != nil {
		return nil, f.err
	}
	b := patch.Apply(domain.Booking{ID: id, EventID: "ev-1", Email: "a@b.com"})
	return &b, nil
}

func (f *fakeBookingService) DeleteBooking(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeBookingService) ListBookingsByEvent(ctx context.Context, eventID string) ([]*domain.Booking, int, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.bookings, len(f.bookings), nil
}

func (f *fakeBookingService) ListBookingsByEmail(ctx context.Context, email string) ([]*domain.BookingWithEvent, error) {
	f.lastEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.withEvents, nil
}
