package scheduling

import (
	"fmt"
	"math/bits"

	"github.com/courtline/club-scheduler/models"
)

// TournamentStructure is the full single-elimination match graph for one
// tournament. Matches are ordered round-major, position-minor, with match
// numbers increasing monotonically across the whole sequence. The structure
// is created once by GenerateBracket; matches in rounds 2..TotalRounds start
// with nil player slots and are filled only through AdvanceWinner, never
// regenerated.
type TournamentStructure struct {
	Format          models.MatchFormat `json:"format"`
	Matches         []*models.Match    `json:"matches"`
	TotalRounds     int                `json:"total_rounds"`
	MatchesPerRound []int              `json:"matches_per_round"`
	TotalMatches    int                `json:"total_matches"`
}

// MatchByNumber returns the match with the given number, or nil.
func (ts *TournamentStructure) MatchByNumber(n int) *models.Match {
	for _, m := range ts.Matches {
		if m.MatchNumber == n {
			return m
		}
	}
	return nil
}

// Final returns the last match of the structure, or nil for an empty one.
func (ts *TournamentStructure) Final() *models.Match {
	if len(ts.Matches) == 0 {
		return nil
	}
	return ts.Matches[len(ts.Matches)-1]
}

// GenerateBracket builds a single-elimination structure for the given roster.
// Entry order is seed order, strongest first. For the doubles formats every
// two consecutive entries form one team, so the roster must hold an even
// player count; violating that returns ErrInvalidRoster.
//
// The bracket is padded to the next power of two with byes. Bye positions are
// spread symmetrically across round 1 rather than clustered at the top; a bye
// match seats only one side, carries no court and is flagged IsBye. Non-bye
// round-1 matches consume seeded players in order and receive sequential
// court numbers starting at 1. Later rounds are empty placeholders that exist
// only to receive advancing winners.
//
// Fewer than two competing units is not an error: the result is an empty
// structure the caller can detect via TotalMatches == 0.
func GenerateBracket(entries []models.RosterEntry, format models.MatchFormat) (*TournamentStructure, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown match format %q", ErrInvalidRoster, format)
	}
	teamSize := format.TeamSize()
	if teamSize == 2 && len(entries)%2 != 0 {
		return nil, fmt.Errorf("%w: doubles requires an even player count, got %d", ErrInvalidRoster, len(entries))
	}

	ts := &TournamentStructure{
		Format:          format,
		Matches:         []*models.Match{},
		MatchesPerRound: []int{},
	}

	numTeams := len(entries) / teamSize
	if numTeams < 2 {
		return ts, nil
	}

	bracketSize := nextPowerOfTwo(numTeams)
	numByes := bracketSize - numTeams
	totalRounds := bits.TrailingZeros(uint(bracketSize))
	firstRoundSlots := bracketSize / 2

	byeAt := byePositions(firstRoundSlots, numByes)

	matchNumber := 0
	court := 0
	seed := 0
	matchesPerRound := make([]int, totalRounds)
	matches := make([]*models.Match, 0, bracketSize-1)

	takeSide := func(m *models.Match, top bool) {
		if teamSize == 1 {
			id := entries[seed].Player.ID
			seed++
			if top {
				m.Player1 = &id
			} else {
				m.Player2 = &id
			}
			return
		}
		a := entries[seed].Player.ID
		b := entries[seed+1].Player.ID
		seed += 2
		if top {
			m.Player1, m.Player2 = &a, &b
		} else {
			m.Player3, m.Player4 = &a, &b
		}
	}

	for pos := 0; pos < firstRoundSlots; pos++ {
		matchNumber++
		m := &models.Match{MatchNumber: matchNumber, Round: 1, Position: pos}
		if byeAt[pos] {
			m.IsBye = true
			takeSide(m, true)
		} else {
			court++
			c := court
			m.Court = &c
			takeSide(m, true)
			takeSide(m, false)
		}
		matches = append(matches, m)
	}
	matchesPerRound[0] = firstRoundSlots

	for r := 2; r <= totalRounds; r++ {
		count := bracketSize >> uint(r)
		for pos := 0; pos < count; pos++ {
			matchNumber++
			matches = append(matches, &models.Match{MatchNumber: matchNumber, Round: r, Position: pos})
		}
		matchesPerRound[r-1] = count
	}

	// Wire every match to the one its winner advances into: round r position p
	// feeds round r+1 position p/2, expressed through running match numbers.
	roundStart := 1
	for r := 1; r < totalRounds; r++ {
		nextStart := roundStart + matchesPerRound[r-1]
		for pos := 0; pos < matchesPerRound[r-1]; pos++ {
			target := nextStart + pos/2
			matches[roundStart-1+pos].FeedsInto = &target
		}
		roundStart = nextStart
	}

	ts.Matches = matches
	ts.TotalRounds = totalRounds
	ts.MatchesPerRound = matchesPerRound
	ts.TotalMatches = len(matches)
	return ts, nil
}

// StructureFromMatches rebuilds a TournamentStructure from previously stored
// bracket nodes, e.g. rows loaded by the persistence layer. Nodes must be the
// complete structure; totals are recomputed from what is supplied.
func StructureFromMatches(format models.MatchFormat, nodes []*models.Match) (*TournamentStructure, error) {
	ts := &TournamentStructure{
		Format:          format,
		Matches:         nodes,
		MatchesPerRound: []int{},
		TotalMatches:    len(nodes),
	}
	seen := make(map[int]bool, len(nodes))
	for _, m := range nodes {
		if seen[m.MatchNumber] {
			return nil, fmt.Errorf("%w: duplicate match number %d", ErrBracketConsistency, m.MatchNumber)
		}
		seen[m.MatchNumber] = true
		if m.Round > ts.TotalRounds {
			ts.TotalRounds = m.Round
		}
	}
	ts.MatchesPerRound = make([]int, ts.TotalRounds)
	for _, m := range nodes {
		ts.MatchesPerRound[m.Round-1]++
	}
	for _, m := range nodes {
		if m.FeedsInto != nil && !seen[*m.FeedsInto] {
			return nil, fmt.Errorf("%w: match %d feeds into missing match %d", ErrBracketConsistency, m.MatchNumber, *m.FeedsInto)
		}
	}
	return ts, nil
}

// AdvanceWinner threads the winner of a completed match into the match it
// feeds. Returns the mutated next match, or nil when the completed match was
// the final and the tournament is over. winnerIDs holds one player ID for
// singles, the two team member IDs for doubles.
//
// Slot placement follows the completed match's position parity: even
// positions occupy the next match's top side (player1, or player1/player2
// for doubles), odd positions the bottom side. Re-applying the same result
// rewrites the same slots, so retried calls are harmless.
//
// This is the only mutation in the package; everything else is a pure
// constructor.
func AdvanceWinner(ts *TournamentStructure, completedMatchNumber int, winnerIDs []int) (*models.Match, error) {
	completed := ts.MatchByNumber(completedMatchNumber)
	if completed == nil {
		return nil, fmt.Errorf("%w: completed match %d not found", ErrBracketConsistency, completedMatchNumber)
	}
	if completed.FeedsInto == nil {
		return nil, nil
	}
	teamSize := ts.Format.TeamSize()
	if len(winnerIDs) != teamSize {
		return nil, fmt.Errorf("expected %d winner id(s) for %s, got %d", teamSize, ts.Format, len(winnerIDs))
	}
	target := ts.MatchByNumber(*completed.FeedsInto)
	if target == nil {
		return nil, fmt.Errorf("%w: match %d feeds into missing match %d", ErrBracketConsistency, completedMatchNumber, *completed.FeedsInto)
	}

	top := completed.Position%2 == 0
	if teamSize == 1 {
		id := winnerIDs[0]
		if top {
			target.Player1 = &id
		} else {
			target.Player2 = &id
		}
		return target, nil
	}
	a, b := winnerIDs[0], winnerIDs[1]
	if top {
		target.Player1, target.Player2 = &a, &b
	} else {
		target.Player3, target.Player4 = &a, &b
	}
	return target, nil
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// byePositions spreads numByes byes across the round-1 positions at a fixed
// interval so recipients land in different regions of the bracket. The exact
// placement is a heuristic; the invariant is exactly numByes distinct
// positions out of slots.
func byePositions(slots, numByes int) map[int]bool {
	set := make(map[int]bool, numByes)
	if numByes <= 0 {
		return set
	}
	step := float64(slots) / float64(numByes)
	for i := 0; i < numByes; i++ {
		pos := int(float64(i) * step)
		for set[pos] {
			pos = (pos + 1) % slots
		}
		set[pos] = true
	}
	return set
}
