package models

import "time"

type MatchStatus string

const (
	StatusScheduled      MatchStatus = "scheduled"
	StatusInProgress     MatchStatus = "in_progress"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// MatchFormat selects how many individual players form one competing unit
// in an elimination bracket.
type MatchFormat string

const (
	FormatSingles      MatchFormat = "singles"
	FormatDoubles      MatchFormat = "doubles"
	FormatMixedDoubles MatchFormat = "mixed_doubles"
)

// TeamSize reports players per side: 1 for singles, 2 for the doubles formats.
func (f MatchFormat) TeamSize() int {
	if f == FormatSingles {
		return 1
	}
	return 2
}

func (f MatchFormat) Valid() bool {
	switch f {
	case FormatSingles, FormatDoubles, FormatMixedDoubles:
		return true
	}
	return false
}

// RoundFormat selects the pairing rule for one mixer round.
type RoundFormat string

const (
	RoundDoubles        RoundFormat = "doubles"
	RoundSingles        RoundFormat = "singles"
	RoundMixedDoubles   RoundFormat = "mixed_doubles"
	RoundKingOfCourt    RoundFormat = "king_of_court"
	RoundRoundRobin     RoundFormat = "round_robin"
	RoundMaximizeCourts RoundFormat = "maximize_courts"
)

func (f RoundFormat) Valid() bool {
	switch f {
	case RoundDoubles, RoundSingles, RoundMixedDoubles,
		RoundKingOfCourt, RoundRoundRobin, RoundMaximizeCourts:
		return true
	}
	return false
}

// Match is one node of an elimination bracket. MatchNumber increases
// monotonically across the whole structure, round-major. Position is
// 0-indexed within the round. Slots 3 and 4 stay nil for singles.
// FeedsInto is the match number the winner advances into; nil marks the
// final. Byes never carry a court.
type Match struct {
	MatchNumber int  `json:"match_number"`
	Round       int  `json:"round"`
	Position    int  `json:"position"`
	Player1     *int `json:"player1,omitempty"`
	Player2     *int `json:"player2,omitempty"`
	Player3     *int `json:"player3,omitempty"`
	Player4     *int `json:"player4,omitempty"`
	IsBye       bool `json:"is_bye"`
	FeedsInto   *int `json:"feeds_into,omitempty"`
	Court       *int `json:"court,omitempty"`
}

// RoundMatch is one court assignment inside a mixer round. Same slot layout
// as Match but with no bracket linkage; every round is generated fresh from
// the current roster.
type RoundMatch struct {
	Court   int  `json:"court"`
	Player1 *int `json:"player1,omitempty"`
	Player2 *int `json:"player2,omitempty"`
	Player3 *int `json:"player3,omitempty"`
	Player4 *int `json:"player4,omitempty"`
}

// EventMatch is the persisted form of a bracket Match, extended with the
// columns the collaborator layer owns: scheduling time, status and winner.
type EventMatch struct {
	ID          int         `json:"id" db:"id"`
	EventID     int         `json:"event_id" db:"event_id"`
	MatchNumber int         `json:"match_number" db:"match_number"`
	Round       int         `json:"round" db:"round"`
	Position    int         `json:"position" db:"position"`
	Player1ID   *int        `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID   *int        `json:"player2_id,omitempty" db:"player2_id"`
	Player3ID   *int        `json:"player3_id,omitempty" db:"player3_id"`
	Player4ID   *int        `json:"player4_id,omitempty" db:"player4_id"`
	IsBye       bool        `json:"is_bye" db:"is_bye"`
	FeedsInto   *int        `json:"feeds_into,omitempty" db:"feeds_into"`
	CourtNumber *int        `json:"court_number,omitempty" db:"court_number"`
	StartTime   *time.Time  `json:"start_time,omitempty" db:"start_time"`
	Status      MatchStatus `json:"status" db:"status"`
	Score       *string     `json:"score,omitempty" db:"score"`
	Winner1ID   *int        `json:"winner1_id,omitempty" db:"winner1_id"`
	Winner2ID   *int        `json:"winner2_id,omitempty" db:"winner2_id"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// Node converts the persisted row back into the bracket node shape the
// scheduling core operates on.
func (m *EventMatch) Node() *Match {
	return &Match{
		MatchNumber: m.MatchNumber,
		Round:       m.Round,
		Position:    m.Position,
		Player1:     m.Player1ID,
		Player2:     m.Player2ID,
		Player3:     m.Player3ID,
		Player4:     m.Player4ID,
		IsBye:       m.IsBye,
		FeedsInto:   m.FeedsInto,
		Court:       m.CourtNumber,
	}
}

// MixerMatch is the persisted form of a RoundMatch. RoundSetID groups the
// matches generated together in one engine call.
type MixerMatch struct {
	ID          int       `json:"id" db:"id"`
	EventID     int       `json:"event_id" db:"event_id"`
	RoundSetID  string    `json:"round_set_id" db:"round_set_id"`
	RoundNumber int       `json:"round_number" db:"round_number"`
	CourtNumber int       `json:"court_number" db:"court_number"`
	Player1ID   *int      `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID   *int      `json:"player2_id,omitempty" db:"player2_id"`
	Player3ID   *int      `json:"player3_id,omitempty" db:"player3_id"`
	Player4ID   *int      `json:"player4_id,omitempty" db:"player4_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
