package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID            string    `db:"id"` // UUID
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Date          time.Time `db:"date"`
	Location      string    `db:"location"`
	OrganizerName string    `db:"organizer_name"` // display only, never used for authorization
	OrganizerID   string    `db:"organizer_id"`   // set once at creation
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	// Populated on reads from the user table
	OrganizerUsername string `db:"organizer_username"`
}

// EventInput is the client-controlled part of an event. It deliberately has
// no organizer field.
type EventInput struct {
	Title         string
	Description   string
	Date          string
	Location      string
	OrganizerName string
}

// Accepted date layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 style date. Values without a zone are UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q", value)
}

// Normalize trims every text field.
func (in EventInput) Normalize() EventInput {
	return EventInput{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Date:          strings.TrimSpace(in.Date),
		Location:      strings.TrimSpace(in.Location),
		OrganizerName: strings.TrimSpace(in.OrganizerName),
	}
}

// Validate checks every required field and returns all violations, or nil.
func (in EventInput) Validate() []FieldViolation {
	in = in.Normalize()

	var violations []FieldViolation
	required := func(field, value string) {
		if value == "" {
			violations = append(violations, FieldViolation{Field: field, Message: field + " is required"})
		}
	}

	required("title", in.Title)
	required("description", in.Description)
	if in.Date == "" {
		violations = append(violations, FieldViolation{Field: "date", Message: "date is required"})
	} else if _, err := ParseDate(in.Date); err != nil {
		violations = append(violations, FieldViolation{Field: "date", Message: "date must be a valid ISO-8601 timestamp"})
	}
	required("location", in.Location)
	required("organizerName", in.OrganizerName)

	return violations
}

// NewEvent builds an event owned by organizerID. The input must already be valid.
func NewEvent(in EventInput, organizerID string) (*Event, error) {
	in = in.Normalize()
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Event{
		ID:            uuid.New().String(),
		Title:         in.Title,
		Description:   in.Description,
		Date:          date,
		Location:      in.Location,
		OrganizerName: in.OrganizerName,
		OrganizerID:   organizerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Apply replaces the mutable fields. OrganizerID is never touched.
func (e *Event) Apply(in EventInput) error {
	in = in.Normalize()
	date, err := ParseDate(in.Date)
	if err != nil {
		return err
	}

	e.Title = in.Title
	e.Description = in.Description
	e.Date = date
	e.Location = in.Location
	e.OrganizerName = in.OrganizerName
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// IsOwnedBy compares identifiers exactly.
func (e *Event) IsOwnedBy(userID string) bool {
	return userID != "" && e.OrganizerID == userID
}
