package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrEventNameRequired      = errors.New("event name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrEventInvalidKind       = errors.New("invalid event kind")
	ErrEventInvalidFormat     = errors.New("invalid event format for kind")
	ErrEventInvalidCourts     = errors.New("event court count must be positive")
	ErrEventInvalidStatus     = errors.New("invalid event status provided")
	ErrEventInvalidTransition = errors.New("invalid event status transition")
	ErrEventNotElimination    = errors.New("event is not an elimination tournament")
	ErrEventNotMixer          = errors.New("event is not a mixer")
	ErrEventNotActive         = errors.New("event is not active")
	ErrNotEnoughPlayers       = errors.New("not enough players on the roster to schedule")
	ErrBracketAlreadyExists   = errors.New("bracket has already been generated for this event")
	ErrBracketNotGenerated    = errors.New("bracket has not been generated for this event")
	ErrMatchAlreadyCompleted  = errors.New("match result has already been recorded")
	ErrMatchNotReady          = errors.New("match does not have both sides seated")
	ErrWinnerNotInMatch       = errors.New("winner is not one of the match participants")

	// Conflicts
	ErrEventNameConflict = errors.New("event name already exists")
	ErrPlayerConflict    = errors.New("player already exists")
	ErrRosterConflict    = errors.New("player is already registered for this event")

	// Entity-specific not-found errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrRosterNotFound = errors.New("roster entry not found")
)
