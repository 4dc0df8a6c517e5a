package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService. emailService may be nil to
// skip confirmation emails; now may be nil, in which case time.Now is used.
func NewBookingService(
	bookingRepo domain.BookingRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	now func() time.Time,
	timeout time.Duration,
) domain.BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		emailService:   emailService,
		logger:         logger,
		now:            now,
		contextTimeout: timeout,
	}
}

// eventLookup checks existence through the event repository and keeps the
// event it found so callers can use it afterwards.
type eventLookup struct {
	repo  domain.EventRepository
	found *domain.Event
}

func (l *eventLookup) EventExists(ctx context.Context, id string) (bool, error) {
	event, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	l.found = event
	return true, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := domain.PrepareBooking(*domain.NewBooking(eventID, email), nil)
	if err != nil {
		return nil, err
	}
	lookup := &eventLookup{repo: s.eventRepo}
	if err := domain.CheckEventReference(ctx, booking, nil, lookup); err != nil {
		return nil, err
	}

	now := s.now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if err := s.bookingRepo.Create(ctx, &booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.logger.InfoContext(ctx, "booking created", "booking_id", booking.ID, "event_id", booking.EventID)

	s.sendConfirmation(ctx, &booking, lookup.found)
	return &booking, nil
}

// sendConfirmation emails the attendee. A failure is logged; the booking stands.
func (s *bookingService) sendConfirmation(ctx context.Context, booking *domain.Booking, event *domain.Event) {
	if s.emailService == nil || event == nil {
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:      booking.Email,
		EventTitle: event.Title,
		EventSlug:  event.Slug,
		Venue:      event.Venue,
		Location:   event.Location,
		Date:       event.Date,
		Time:       event.Time,
		Mode:       event.Mode,
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "booking confirmation email failed", "booking_id", booking.ID, "err", err)
	}
}

func (s *bookingService) BookEvent(ctx context.Context, eventID, email string) bool {
	if _, err := s.CreateBooking(ctx, eventID, email); err != nil {
		s.logger.ErrorContext(ctx, "create booking failed", "event_id", eventID, "err", err)
		return false
	}
	return true
}

func (s *bookingService) UpdateBooking(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	booking, err := domain.PrepareBooking(patch.Apply(*existing), existing)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckEventReference(ctx, booking, existing, &eventLookup{repo: s.eventRepo}); err != nil {
		return nil, err
	}
	booking.ID = existing.ID
	booking.CreatedAt = existing.CreatedAt
	booking.UpdatedAt = touch(s.now(), existing.CreatedAt, existing.UpdatedAt)

	if err := s.bookingRepo.Update(ctx, &booking); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return &booking, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *bookingService) ListBookingsByEvent(ctx context.Context, eventID string) ([]*domain.Booking, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, err := s.bookingRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	count, err := s.bookingRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, count, nil
}

func (s *bookingService) ListBookingsByEmail(ctx context.Context, email string) ([]*domain.BookingWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, err := s.bookingRepo.ListByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	// Events are fetched one by one and memoized per ID.
	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.BookingWithEvent, 0, len(bookings))
	for _, b := range bookings {
		ev, ok := eventsByID[b.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, b.EventID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return nil, fmt.Errorf("get event for booking: %w", err)
				}
				// Deleted events leave their bookings behind.
				ev = nil
			}
			eventsByID[b.EventID] = ev
		}
		result = append(result, &domain.BookingWithEvent{Booking: b, Event: ev})
	}
	return result, nil
}
