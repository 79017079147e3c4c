package models

import "time"

// EventStatus mirrors the ENUM in the events table.
type EventStatus string

const (
	StatusSoon         EventStatus = "soon"
	StatusRegistration EventStatus = "registration"
	StatusActive       EventStatus = "active"
	StatusCompleted    EventStatus = "completed"
	StatusCanceled     EventStatus = "canceled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusSoon, StatusRegistration, StatusActive, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// EventKind distinguishes elimination tournaments from social mixer nights.
type EventKind string

const (
	KindElimination EventKind = "elimination"
	KindMixer       EventKind = "mixer"
)

// Event is a club event: either an elimination tournament (MatchFormat set)
// or a mixer night (RoundFormat set). Courts is how many physical courts the
// event may occupy at once.
type Event struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description,omitempty" db:"description"`
	Kind        EventKind    `json:"kind" db:"kind"`
	MatchFormat *MatchFormat `json:"match_format,omitempty" db:"match_format"`
	RoundFormat *RoundFormat `json:"round_format,omitempty" db:"round_format"`
	Courts      int          `json:"courts" db:"courts"`
	Status      EventStatus  `json:"status" db:"status"`
	StartDate   time.Time    `json:"start_date" db:"start_date"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`

	// Related entities, loaded on demand.
	Roster  []RosterEntry `json:"roster,omitempty" db:"-"`
	Matches []EventMatch  `json:"matches,omitempty" db:"-"`
	Rounds  []MixerMatch  `json:"rounds,omitempty" db:"-"`
}
