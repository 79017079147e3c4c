package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtline/club-scheduler/models"
	"github.com/courtline/club-scheduler/repositories"
)

type CreateEventInput struct {
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Kind        models.EventKind    `json:"kind"`
	MatchFormat *models.MatchFormat `json:"match_format,omitempty"`
	RoundFormat *models.RoundFormat `json:"round_format,omitempty"`
	Courts      int                 `json:"courts"`
	StartDate   time.Time           `json:"start_date"`
}

type UpdateEventInput struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Courts      *int       `json:"courts,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	// GetFullEvent loads the event with its roster, bracket matches and
	// mixer rounds in parallel.
	GetFullEvent(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, kind *models.EventKind, status *models.EventStatus) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, id int, status models.EventStatus) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int) error
}

type eventService struct {
	eventRepo  repositories.EventRepository
	rosterRepo repositories.RosterRepository
	matchRepo  repositories.MatchRepository
}

func NewEventService(
	eventRepo repositories.EventRepository,
	rosterRepo repositories.RosterRepository,
	matchRepo repositories.MatchRepository,
) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		rosterRepo: rosterRepo,
		matchRepo:  matchRepo,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, ErrEventNameRequired
	}
	if input.Courts <= 0 {
		return nil, ErrEventInvalidCourts
	}
	switch input.Kind {
	case models.KindElimination:
		if input.MatchFormat == nil || !input.MatchFormat.Valid() {
			return nil, fmt.Errorf("%w: elimination events need a valid match_format", ErrEventInvalidFormat)
		}
		input.RoundFormat = nil
	case models.KindMixer:
		if input.RoundFormat == nil || !input.RoundFormat.Valid() {
			return nil, fmt.Errorf("%w: mixer events need a valid round_format", ErrEventInvalidFormat)
		}
		input.MatchFormat = nil
	default:
		return nil, ErrEventInvalidKind
	}

	event := &models.Event{
		Name:        input.Name,
		Description: input.Description,
		Kind:        input.Kind,
		MatchFormat: input.MatchFormat,
		RoundFormat: input.RoundFormat,
		Courts:      input.Courts,
		Status:      models.StatusRegistration,
		StartDate:   input.StartDate,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *eventService) GetFullEvent(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		roster, rosterErr := s.rosterRepo.ListByEvent(gCtx, id)
		if rosterErr != nil {
			return fmt.Errorf("failed to load roster for event %d: %w", id, rosterErr)
		}
		event.Roster = roster
		return nil
	})

	g.Go(func() error {
		matches, matchErr := s.matchRepo.ListEventMatches(gCtx, id, nil)
		if matchErr != nil {
			return fmt.Errorf("failed to load matches for event %d: %w", id, matchErr)
		}
		event.Matches = make([]models.EventMatch, len(matches))
		for i, m := range matches {
			event.Matches[i] = *m
		}
		return nil
	})

	g.Go(func() error {
		rounds, roundErr := s.matchRepo.ListMixerMatches(gCtx, id, nil)
		if roundErr != nil {
			return fmt.Errorf("failed to load mixer rounds for event %d: %w", id, roundErr)
		}
		event.Rounds = make([]models.MixerMatch, len(rounds))
		for i, m := range rounds {
			event.Rounds[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, kind *models.EventKind, status *models.EventStatus) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx, kind, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id int, input UpdateEventInput) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrEventNameRequired
		}
		event.Name = *input.Name
	}
	if input.Description != nil {
		event.Description = input.Description
	}
	if input.Courts != nil {
		if *input.Courts <= 0 {
			return nil, ErrEventInvalidCourts
		}
		event.Courts = *input.Courts
	}
	if input.StartDate != nil {
		event.StartDate = *input.StartDate
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}
	return event, nil
}

// validStatusTransitions captures the event lifecycle: registration opens,
// play happens, the event completes. Cancellation is allowed until completion.
var validStatusTransitions = map[models.EventStatus][]models.EventStatus{
	models.StatusSoon:         {models.StatusRegistration, models.StatusCanceled},
	models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
	models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
	models.StatusCompleted:    {},
	models.StatusCanceled:     {},
}

func (s *eventService) UpdateEventStatus(ctx context.Context, id int, status models.EventStatus) (*models.Event, error) {
	if !status.Valid() {
		return nil, ErrEventInvalidStatus
	}
	event, err := s.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[event.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrEventInvalidTransition, event.Status, status)
	}

	if err := s.eventRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, fmt.Errorf("failed to update status for event %d: %w", id, err)
	}
	event.Status = status
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	return nil
}
