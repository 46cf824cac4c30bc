package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/martijn/evently/internal/core/domain"
	"github.com/martijn/evently/internal/core/repository"
)

const eventSelect = `
	SELECT e.id, e.title, e.description, e.date, e.location, e.organizer_name,
		e.organizer_id, e.created_at, e.updated_at, u.username AS organizer_username
	FROM event e
	LEFT JOIN user u ON u.id = e.organizer_id
`

// eventColumns maps filterable fields to columns
var eventColumns = map[string]string{
	"location":     "e.location",
	"organizer_id": "e.organizer_id",
	"date":         "e.date",
}

type eventRow struct {
	ID                string         `db:"id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	Date              string         `db:"date"`
	Location          string         `db:"location"`
	OrganizerName     string         `db:"organizer_name"`
	OrganizerID       string         `db:"organizer_id"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
	OrganizerUsername sql.NullString `db:"organizer_username"`
}

func (r eventRow) toDomain() (*domain.Event, error) {
	date, err := parseTime(r.Date)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Date:              date,
		Location:          r.Location,
		OrganizerName:     r.OrganizerName,
		OrganizerID:       r.OrganizerID,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		OrganizerUsername: r.OrganizerUsername.String,
	}, nil
}

type eventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO event (id, title, description, date, location, organizer_name,
			organizer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		formatTime(event.Date),
		event.Location,
		event.OrganizerName,
		event.OrganizerID,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var row eventRow
	err := r.db.GetContext(ctx, &row, eventSelect+` WHERE e.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return row.toDomain()
}

func (r *eventRepository) List(ctx context.Context, filter repository.EventFilter) ([]*domain.Event, error) {
	query, args := r.where(eventSelect+` WHERE 1=1`, filter)
	query += " ORDER BY e.date ASC, e.id ASC"
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*domain.Event, 0, len(rows))
	for _, row := range rows {
		event, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, filter repository.EventFilter) (int, error) {
	query, args := r.where(`SELECT COUNT(*) FROM event e WHERE 1=1`, filter)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *eventRepository) where(query string, filter repository.EventFilter) (string, []interface{}) {
	args := []interface{}{}
	query, args = ApplyFilters(query, args, filter.Filters, eventColumns)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		query += ` AND (LOWER(e.title) LIKE ? ESCAPE '\' OR LOWER(e.description) LIKE ? ESCAPE '\' OR LOWER(e.location) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern, pattern)
	}
	return query, args
}

func (r *eventRepository) UpdateOwned(ctx context.Context, event *domain.Event, organizerID string) (bool, error) {
	query := `
		UPDATE event
		SET title = ?, description = ?, date = ?, location = ?, organizer_name = ?, updated_at = ?
		WHERE id = ? AND organizer_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		formatTime(event.Date),
		event.Location,
		event.OrganizerName,
		formatTime(event.UpdatedAt),
		event.ID,
		organizerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *eventRepository) DeleteOwned(ctx context.Context, id string, organizerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM event WHERE id = ? AND organizer_id = ?`, id, organizerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
