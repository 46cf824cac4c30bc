package dto

import (
	"time"

	"github.com/martijn/evently/internal/core/domain"
)

// EventRequest represents the create and update payload. An organizer sent by
// the client has no field to land in and is dropped during binding.
type EventRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	Location      string `json:"location"`
	OrganizerName string `json:"organizerName"`
}

// ToInput converts the request to the domain input
func (r EventRequest) ToInput() domain.EventInput {
	return domain.EventInput{
		Title:         r.Title,
		Description:   r.Description,
		Date:          r.Date,
		Location:      r.Location,
		OrganizerName: r.OrganizerName,
	}
}

// OrganizerRef identifies the user who owns an event
type OrganizerRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Date          time.Time    `json:"date"`
	Location      string       `json:"location"`
	OrganizerName string       `json:"organizerName"`
	Organizer     OrganizerRef `json:"organizer"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// EventListResponse represents one page of events
type EventListResponse struct {
	Events      []EventResponse `json:"events"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalEvents int             `json:"totalEvents"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// NewEventResponse converts a domain event
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date,
		Location:      e.Location,
		OrganizerName: e.OrganizerName,
		Organizer: OrganizerRef{
			ID:       e.OrganizerID,
			Username: e.OrganizerUsername,
		},
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
