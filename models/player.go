package models

import "time"

// Gender mirrors the ENUM in the players table. It is optional: mixed
// doubles pairing is the only consumer.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Gender    *Gender   `json:"gender,omitempty" db:"gender"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RosterEntry is one player's registration in an event, with the running
// statistics accumulated as results come in. StrengthRank orders the roster
// for seeding: rank 1 is the strongest player.
type RosterEntry struct {
	EventID      int       `json:"event_id" db:"event_id"`
	Player       Player    `json:"player"`
	StrengthRank int       `json:"strength_rank" db:"strength_rank"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	GamesWon     int       `json:"games_won" db:"games_won"`
	GamesLost    int       `json:"games_lost" db:"games_lost"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// GameDiff is the games-won minus games-lost tiebreaker.
func (e RosterEntry) GameDiff() int {
	return e.GamesWon - e.GamesLost
}
