package repository

import (
	"context"

	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/domain"
)

// EventFilter embeds ListFilter for generic query/pagination
type EventFilter struct {
	util.ListFilter
	// Case-insensitive substring match over title, description and location
	Search string
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*domain.Event, error)
	Count(ctx context.Context, filter EventFilter) (int, error)

	// UpdateOwned writes the mutable fields only if the stored organizer
	// still equals organizerID. Returns false when no row matched.
	UpdateOwned(ctx context.Context, event *domain.Event, organizerID string) (bool, error)

	// DeleteOwned deletes only if the stored organizer equals organizerID.
	DeleteOwned(ctx context.Context, id string, organizerID string) (bool, error)
}
