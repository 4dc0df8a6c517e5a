package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the stored representation of Event.Date.
const DateLayout = "2006-01-02"

var (
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex  = regexp.MustCompile(`\s+`)
	slugHyphenRegex = regexp.MustCompile(`-+`)

	// eventTimeRegex accepts 24-hour H:MM and HH:MM.
	eventTimeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// Slugify derives the URL slug of a title: lowercase, characters outside
// [a-z0-9] dropped, whitespace runs turned into a single hyphen, no
// leading or trailing hyphen.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRegex.ReplaceAllString(s, "")
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugHyphenRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeEventDate parses s in any common date representation and
// returns its UTC calendar day as YYYY-MM-DD. Inputs without a zone are read as UTC.
func NormalizeEventDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("date", "date must be a valid date string")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", NewValidationError("date", "date must be a valid date string")
	}
	return t.UTC().Format(DateLayout), nil
}

// ValidateEventTime checks s against the 24-hour H:MM / HH:MM format.
func ValidateEventTime(s string) error {
	if !eventTimeRegex.MatchString(s) {
		return NewValidationError("time", "time must be in HH:MM format (24-hour)")
	}
	return nil
}

// PrepareEvent validates and normalizes next before it is written.
// prev is the stored version, or nil for a new event. The slug is derived
// again only when the title is new or changed; the date is normalized and
// the time checked only when they are new or changed.
func PrepareEvent(next Event, prev *Event) (Event, error) {
	trimEvent(&next)

	if verr := validateStruct(next); verr != nil {
		return Event{}, verr
	}

	verr := &ValidationError{}
	if prev == nil || next.Title != prev.Title {
		next.Slug = Slugify(next.Title)
		if next.Slug == "" {
			verr.Add("title", "title must contain at least one letter or digit")
		}
	} else {
		next.Slug = prev.Slug
	}

	if prev == nil || next.Date != prev.Date {
		date, err := NormalizeEventDate(next.Date)
		if err != nil {
			verr.Add("date", "date must be a valid date string")
		} else {
			next.Date = date
		}
	}

	if prev == nil || next.Time != prev.Time {
		if err := ValidateEventTime(next.Time); err != nil {
			verr.Add("time", "time must be in HH:MM format (24-hour)")
		}
	}

	if err := verr.OrNil(); err != nil {
		return Event{}, err
	}
	return next, nil
}

func trimEvent(e *Event) {
	for _, f := range []*string{
		&e.Title, &e.Description, &e.Overview, &e.Image, &e.Venue, &e.Location,
		&e.Date, &e.Time, &e.Mode, &e.Audience, &e.Organizer,
	} {
		*f = strings.TrimSpace(*f)
	}
	e.Agenda = trimAll(e.Agenda)
	e.Tags = trimAll(e.Tags)
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// SharesTag reports whether a and b have at least one tag in common.
func SharesTag(a, b *Event) bool {
	seen := make(map[string]struct{}, len(a.Tags))
	for _, t := range a.Tags {
		seen[t] = struct{}{}
	}
	for _, t := range b.Tags {
		if _, ok := seen[t]; ok {
			return true
		}
	}
	return false
}
