package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/martijn/evently/internal/api/util"
	"github.com/martijn/evently/internal/core/domain"
	"github.com/martijn/evently/internal/core/repository"
	"github.com/martijn/evently/internal/metrics"
	"github.com/martijn/evently/internal/security"
)

// Mutation names used for metrics and logs
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

type EventService struct {
	eventRepo repository.EventRepository
	sanitizer security.TextSanitizer
	recorder  metrics.EventRecorder
	logger    *slog.Logger
}

func NewEventService(
	eventRepo repository.EventRepository,
	sanitizer security.TextSanitizer,
	recorder metrics.EventRecorder,
	logger *slog.Logger,
) *EventService {
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		eventRepo: eventRepo,
		sanitizer: sanitizer,
		recorder:  recorder,
		logger:    logger,
	}
}

// EventPage is one page of the date-ordered listing
type EventPage struct {
	Events     []*domain.Event
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// CreateEvent validates the input and persists an event owned by principalID.
// Any organizer the client may have sent never reaches this point.
func (s *EventService) CreateEvent(ctx context.Context, principalID string, in domain.EventInput) (*domain.Event, error) {
	if principalID == "" {
		return nil, domain.ErrUnauthenticated
	}

	in = s.sanitize(in)
	if violations := in.Validate(); len(violations) > 0 {
		s.recorder.RecordMutation(OpCreate, metrics.OutcomeInvalid)
		return nil, &domain.ValidationError{Violations: violations}
	}

	event, err := domain.NewEvent(in, principalID)
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.recorder.RecordMutation(OpCreate, metrics.OutcomeError)
		return nil, err
	}
	s.recorder.RecordMutation(OpCreate, metrics.OutcomeSuccess)
	s.logger.Info("event created", slog.String("event_id", event.ID), slog.String("user_id", principalID))

	// Re-read to pick up the organizer's username
	return s.eventRepo.FindByID(ctx, event.ID)
}

// GetEvent returns one event by id
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// ListEvents returns the requested page ordered by date ascending
func (s *EventService) ListEvents(ctx context.Context, filter repository.EventFilter) (*EventPage, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.eventRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &EventPage{
		Events:     events,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: util.TotalPages(total, filter.PerPage),
	}, nil
}

// UpdateEvent replaces the mutable fields of an event owned by principalID.
// The record is loaded and its owner checked before the payload is
// validated; the write itself is conditional on the owner so a concurrent
// ownership change cannot slip through.
func (s *EventService) UpdateEvent(ctx context.Context, principalID, id string, in domain.EventInput) (*domain.Event, error) {
	event, err := s.authorize(ctx, OpUpdate, principalID, id)
	if err != nil {
		return nil, err
	}

	in = s.sanitize(in)
	if violations := in.Validate(); len(violations) > 0 {
		s.recorder.RecordMutation(OpUpdate, metrics.OutcomeInvalid)
		return nil, &domain.ValidationError{Violations: violations}
	}

	if err := event.Apply(in); err != nil {
		return nil, err
	}

	ok, err := s.eventRepo.UpdateOwned(ctx, event, principalID)
	if err != nil {
		s.recorder.RecordMutation(OpUpdate, metrics.OutcomeError)
		return nil, err
	}
	if !ok {
		return nil, s.resolveMiss(ctx, OpUpdate, principalID, id)
	}

	s.recorder.RecordMutation(OpUpdate, metrics.OutcomeSuccess)
	s.logger.Info("event updated", slog.String("event_id", id), slog.String("user_id", principalID))

	return s.eventRepo.FindByID(ctx, id)
}

// DeleteEvent removes an event owned by principalID
func (s *EventService) DeleteEvent(ctx context.Context, principalID, id string) error {
	if _, err := s.authorize(ctx, OpDelete, principalID, id); err != nil {
		return err
	}

	ok, err := s.eventRepo.DeleteOwned(ctx, id, principalID)
	if err != nil {
		s.recorder.RecordMutation(OpDelete, metrics.OutcomeError)
		return err
	}
	if !ok {
		return s.resolveMiss(ctx, OpDelete, principalID, id)
	}

	s.recorder.RecordMutation(OpDelete, metrics.OutcomeSuccess)
	s.logger.Info("event deleted", slog.String("event_id", id), slog.String("user_id", principalID))
	return nil
}

// authorize loads the event and checks that principalID is its organizer
func (s *EventService) authorize(ctx context.Context, op, principalID, id string) (*domain.Event, error) {
	if principalID == "" {
		return nil, domain.ErrUnauthenticated
	}

	event, err := s.eventRepo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.recorder.RecordMutation(op, metrics.OutcomeNotFound)
		return nil, err
	}
	if err != nil {
		s.recorder.RecordMutation(op, metrics.OutcomeError)
		return nil, err
	}

	if !event.IsOwnedBy(principalID) {
		s.recorder.RecordMutation(op, metrics.OutcomeForbidden)
		s.logger.Warn("ownership check failed",
			slog.String("operation", op),
			slog.String("event_id", id),
			slog.String("user_id", principalID),
		)
		return nil, fmt.Errorf("event %s: %w", id, domain.ErrForbidden)
	}

	return event, nil
}

// resolveMiss explains why a conditional write matched no row: the event is
// either gone or no longer owned by principalID.
func (s *EventService) resolveMiss(ctx context.Context, op, principalID, id string) error {
	if _, err := s.eventRepo.FindByID(ctx, id); errors.Is(err, domain.ErrNotFound) {
		s.recorder.RecordMutation(op, metrics.OutcomeNotFound)
		return err
	} else if err != nil {
		s.recorder.RecordMutation(op, metrics.OutcomeError)
		return err
	}

	s.recorder.RecordMutation(op, metrics.OutcomeForbidden)
	s.logger.Warn("conditional write rejected", slog.String("operation", op), slog.String("event_id", id))
	return fmt.Errorf("event %s: %w", id, domain.ErrForbidden)
}

func (s *EventService) sanitize(in domain.EventInput) domain.EventInput {
	return domain.EventInput{
		Title:         s.sanitizer.Sanitize(in.Title),
		Description:   s.sanitizer.Sanitize(in.Description),
		Date:          in.Date,
		Location:      s.sanitizer.Sanitize(in.Location),
		OrganizerName: s.sanitizer.Sanitize(in.OrganizerName),
	}
}
