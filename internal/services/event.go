package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService creates an EventService. now may be nil, in which case time.Now is used.
func NewEventService(eventRepo domain.EventRepository, logger *slog.Logger, now func() time.Time, timeout time.Duration) domain.EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{
		eventRepo:      eventRepo,
		logger:         logger,
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := domain.PrepareEvent(*domain.NewEvent(in), nil)
	if err != nil {
		return nil, err
	}
	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "slug", event.Slug)
	return &event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	total, err := s.eventRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListEventsByTag(ctx context.Context, tag string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("list events by tag: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getBySlug(ctx, slug)
}

func (s *eventService) getBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetSimilarEvents(ctx context.Context, slug string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{event.ID: {}}
	similar := make([]*domain.Event, 0)
	for _, tag := range event.Tags {
		tagged, err := s.eventRepo.ListByTag(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("list events by tag %q: %w", tag, err)
		}
		for _, e := range tagged {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			similar = append(similar, e)
		}
	}
	slices.SortStableFunc(similar, func(a, b *domain.Event) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return similar, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, slug string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	existing, err := s.getBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	event, err := domain.PrepareEvent(patch.Apply(*existing), existing)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = touch(s.now(), existing.CreatedAt, existing.UpdatedAt)

	if err := s.eventRepo.Update(ctx, &event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.logger.InfoContext(ctx, "event updated", "event_id", event.ID, "slug", event.Slug)
	return &event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", event.ID, "slug", event.Slug)
	return nil
}

// touch returns the next UpdatedAt: now, but never earlier than the
// record's creation or its previous update.
func touch(now, createdAt, updatedAt time.Time) time.Time {
	if now.Before(updatedAt) {
		now = updatedAt
	}
	if now.Before(createdAt) {
		now = createdAt
	}
	return now
}
