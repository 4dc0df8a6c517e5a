package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"eventhub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

// fakeEventRepo is an in-memory EventRepository that enforces unique slugs.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every call returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) EnsureSchema(ctx context.Context) error { return f.err }

func (f *fakeEventRepo) slugTaken(slug, exceptID string) bool {
	for id, e := range f.byID {
		if id != exceptID && e.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if f.slugTaken(e.Slug, "") {
		return domain.ErrDuplicateSlug
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if f.slugTaken(e.Slug, e.ID) {
		return domain.ErrDuplicateSlug
	}
	stored := *e
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.byID {
		if e.Slug == slug {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		c := *e
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (f *fakeEventRepo) ListByTag(ctx context.Context, tag string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if slices.Contains(e.Tags, tag) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	all := f.sorted()
	if params.PageSize <= 0 {
		return all, nil
	}
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], nil
}

func (f *fakeEventRepo) Count(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.byID), nil
}

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	byID   map[string]*domain.Booking
	order  []string
	nextID int
	err    error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*domain.Booking), nextID: 1}
}

func (f *fakeBookingRepo) EnsureSchema(ctx context.Context) error { return f.err }

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	b.ID = fmt.Sprintf("bk-%d", f.nextID)
	f.nextID++
	stored := *b
	f.byID[b.ID] = &stored
	f.order = append(f.order, b.ID)
	return nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[b.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *b
	f.byID[b.ID] = &stored
	return nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.byID[id]; ok {
		c := *b
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	var out []*domain.Booking
	for _, id := range f.order {
		if b, ok := f.byID[id]; ok && keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	return out
}

func (f *fakeBookingRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(b *domain.Booking) bool { return b.EventID == eventID }), nil
}

func (f *fakeBookingRepo) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(b *domain.Booking) bool { return b.Email == email }), nil
}

func (f *fakeBookingRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	bookings, err := f.ListByEventID(ctx, eventID)
	return len(bookings), err
}

// fakeEmailService records confirmations instead of sending them.
type fakeEmailService struct {
	sent []*domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingConfirmationEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return f.err
}

type fakeRenderer struct {
	data *domain.BookingConfirmationEmailData
	err  error
}

func (f *fakeRenderer) RenderBookingConfirmation(data *domain.BookingConfirmationEmailData) (domain.RenderedEmail, error) {
	f.data = data
	if f.err != nil {
		return domain.RenderedEmail{}, f.err
	}
	return domain.RenderedEmail{Subject: "subject", HTML: "<p>html</p>", Text: "text"}, nil
}

func validEventInput(title string, tags ...string) domain.EventInput {
	if len(tags) == 0 {
		tags = []string{"react", "frontend"}
	}
	return domain.EventInput{
		Title:       title,
		Description: "A conference about React.",
		Overview:    "Talks and workshops.",
		Image:       "https://example.com/react.png",
		Venue:       "Moscone Center",
		Location:    "San Francisco, CA",
		Date:        "2024-06-01",
		Time:        "09:30",
		Mode:        "offline",
		Audience:    "Developers",
		Organizer:   "React Community",
		Agenda:      []string{"Keynote", "Workshops"},
		Tags:        tags,
	}
}
