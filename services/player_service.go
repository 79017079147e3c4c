package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtline/club-scheduler/models"
	"github.com/courtline/club-scheduler/repositories"
)

type CreatePlayerInput struct {
	Name   string         `json:"name"`
	Gender *models.Gender `json:"gender,omitempty"`
	Email  *string        `json:"email,omitempty"`
}

type UpdatePlayerInput struct {
	Name   *string        `json:"name,omitempty"`
	Gender *models.Gender `json:"gender,omitempty"`
	Email  *string        `json:"email,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error

	// Roster management
	AddToRoster(ctx context.Context, eventID, playerID, strengthRank int) (*models.RosterEntry, error)
	ListRoster(ctx context.Context, eventID int) ([]models.RosterEntry, error)
	RemoveFromRoster(ctx context.Context, eventID, playerID int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	rosterRepo repositories.RosterRepository
	eventRepo  repositories.EventRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	rosterRepo repositories.RosterRepository,
	eventRepo repositories.EventRepository,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		eventRepo:  eventRepo,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	if input.Name == "" {
		return nil, ErrPlayerNameRequired
	}
	if input.Gender != nil {
		switch *input.Gender {
		case models.GenderMale, models.GenderFemale:
		default:
			return nil, fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, *input.Gender)
		}
	}

	player := &models.Player{
		Name:   input.Name,
		Gender: input.Gender,
		Email:  input.Email,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerEmailConflict) {
			return nil, ErrPlayerConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrPlayerNameRequired
		}
		player.Name = *input.Name
	}
	if input.Gender != nil {
		switch *input.Gender {
		case models.GenderMale, models.GenderFemale:
		default:
			return nil, fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, *input.Gender)
		}
		player.Gender = input.Gender
	}
	if input.Email != nil {
		player.Email = input.Email
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerEmailConflict):
			return nil, ErrPlayerConflict
		case errors.Is(err, repositories.ErrPlayerNotFound):
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to update player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	return nil
}

func (s *playerService) AddToRoster(ctx context.Context, eventID, playerID, strengthRank int) (*models.RosterEntry, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	switch event.Status {
	case models.StatusSoon, models.StatusRegistration:
	default:
		return nil, fmt.Errorf("%w: roster is closed once the event is %s", ErrEventInvalidTransition, event.Status)
	}

	player, err := s.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	entry := &models.RosterEntry{
		EventID:      eventID,
		Player:       *player,
		StrengthRank: strengthRank,
	}
	if err := s.rosterRepo.Add(ctx, entry); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRosterConflict):
			return nil, ErrRosterConflict
		case errors.Is(err, repositories.ErrRosterPlayerInvalid):
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to add player %d to event %d roster: %w", playerID, eventID, err)
	}
	return entry, nil
}

func (s *playerService) ListRoster(ctx context.Context, eventID int) ([]models.RosterEntry, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	roster, err := s.rosterRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for event %d: %w", eventID, err)
	}
	return roster, nil
}

func (s *playerService) RemoveFromRoster(ctx context.Context, eventID, playerID int) error {
	if err := s.rosterRepo.Remove(ctx, eventID, playerID); err != nil {
		if errors.Is(err, repositories.ErrRosterEntryNotFound) {
			return ErrRosterNotFound
		}
		return fmt.Errorf("failed to remove player %d from event %d roster: %w", playerID, eventID, err)
	}
	return nil
}
