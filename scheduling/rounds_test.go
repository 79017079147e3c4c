package scheduling

import (
	"errors"
	"reflect"
	"testing"

	"github.com/courtline/club-scheduler/models"
)

// standingsRoster builds n entries with player IDs 1..n. Wins descend with
// the index, so input order is also standings order and every win count is
// distinct.
func standingsRoster(n int) []models.RosterEntry {
	entries := make([]models.RosterEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = models.RosterEntry{
			Player:       models.Player{ID: i + 1},
			StrengthRank: i + 1,
			Wins:         n - i,
			GamesWon:     2 * (n - i),
			GamesLost:    n,
		}
	}
	return entries
}

func genderedRoster(males, females int) []models.RosterEntry {
	m := models.GenderMale
	f := models.GenderFemale
	var entries []models.RosterEntry
	id := 0
	for i := 0; i < males; i++ {
		id++
		entries = append(entries, models.RosterEntry{Player: models.Player{ID: id, Gender: &m}})
	}
	for i := 0; i < females; i++ {
		id++
		entries = append(entries, models.RosterEntry{Player: models.Player{ID: id, Gender: &f}})
	}
	return entries
}

func slotIDs(t *testing.T, m models.RoundMatch) []int {
	t.Helper()
	var ids []int
	for i, p := range []*int{m.Player1, m.Player2, m.Player3, m.Player4} {
		if p == nil {
			t.Fatalf("court %d slot %d is empty", m.Court, i+1)
		}
		ids = append(ids, *p)
	}
	return ids
}

func TestGenerateRoundDoubles(t *testing.T) {
	matches, err := GenerateRound(models.RoundDoubles, standingsRoster(8), 2, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	// Strongest remaining pairs with weakest remaining, alternating:
	// court 1 draws 1st, 8th, 2nd, 7th; court 2 draws 3rd, 6th, 4th, 5th.
	if got := slotIDs(t, matches[0]); !reflect.DeepEqual(got, []int{1, 8, 2, 7}) {
		t.Errorf("court 1 seating = %v, want [1 8 2 7]", got)
	}
	if got := slotIDs(t, matches[1]); !reflect.DeepEqual(got, []int{3, 6, 4, 5}) {
		t.Errorf("court 2 seating = %v, want [3 6 4 5]", got)
	}
	if matches[0].Court != 1 || matches[1].Court != 2 {
		t.Errorf("courts = %d, %d, want 1, 2", matches[0].Court, matches[1].Court)
	}
}

func TestGenerateRoundDoublesGameDiffTiebreak(t *testing.T) {
	// Equal wins everywhere; game differential alone decides the order.
	roster := []models.RosterEntry{
		{Player: models.Player{ID: 1}, Wins: 3, GamesWon: 10, GamesLost: 9},
		{Player: models.Player{ID: 2}, Wins: 3, GamesWon: 18, GamesLost: 2},
		{Player: models.Player{ID: 3}, Wins: 3, GamesWon: 12, GamesLost: 8},
		{Player: models.Player{ID: 4}, Wins: 3, GamesWon: 6, GamesLost: 14},
	}
	matches, err := GenerateRound(models.RoundDoubles, roster, 1, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	// Sorted by diff: 2 (+16), 3 (+4), 1 (+1), 4 (-8).
	if got := slotIDs(t, matches[0]); !reflect.DeepEqual(got, []int{2, 4, 3, 1}) {
		t.Errorf("seating = %v, want [2 4 3 1]", got)
	}
}

func TestGenerateRoundSingles(t *testing.T) {
	matches, err := GenerateRound(models.RoundSingles, standingsRoster(5), 3, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Five players seat two matches; the weakest sits out.
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for i, wantPair := range [][2]int{{1, 2}, {3, 4}} {
		m := matches[i]
		if m.Player1 == nil || m.Player2 == nil {
			t.Fatalf("court %d missing players", m.Court)
		}
		if *m.Player1 != wantPair[0] || *m.Player2 != wantPair[1] {
			t.Errorf("court %d pairing = (%d,%d), want %v", m.Court, *m.Player1, *m.Player2, wantPair)
		}
		if m.Player3 != nil || m.Player4 != nil {
			t.Errorf("court %d: singles match has doubles slots filled", m.Court)
		}
	}
}

func TestGenerateRoundMixedDoubles(t *testing.T) {
	matches, err := GenerateRound(models.RoundMixedDoubles, genderedRoster(3, 3), 2, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Three of each gender can only seat one full court.
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	got := slotIDs(t, m)
	// Roster order: males 1..3, females 4..6. Teams are (male, female) pairs.
	if !reflect.DeepEqual(got, []int{1, 4, 2, 5}) {
		t.Errorf("seating = %v, want [1 4 2 5]", got)
	}
}

func TestGenerateRoundMixedDoublesInsufficientGender(t *testing.T) {
	matches, err := GenerateRound(models.RoundMixedDoubles, genderedRoster(1, 5), 2, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0 when one gender cannot fill a team", len(matches))
	}
}

func TestGenerateRoundDelegatingFormats(t *testing.T) {
	roster := standingsRoster(8)
	want, err := GenerateRound(models.RoundDoubles, roster, 2, nil, 1)
	if err != nil {
		t.Fatalf("doubles: %v", err)
	}
	for _, format := range []models.RoundFormat{models.RoundKingOfCourt, models.RoundRoundRobin} {
		got, err := GenerateRound(format, roster, 2, nil, 1)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s should pair exactly like doubles;\ngot  %+v\nwant %+v", format, got, want)
		}
	}
}

func TestGenerateRoundMaximizeCourts(t *testing.T) {
	matches, err := GenerateRound(models.RoundMaximizeCourts, standingsRoster(7), 3, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	// No sorting: roster order straight onto courts.
	if got := slotIDs(t, matches[0]); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("court 1 seating = %v, want [1 2 3 4]", got)
	}
	// The last partial court falls back to a two-player match.
	last := matches[1]
	if last.Player1 == nil || last.Player2 == nil || *last.Player1 != 5 || *last.Player2 != 6 {
		t.Errorf("court 2 should seat players 5 and 6, got %+v", last)
	}
	if last.Player3 != nil || last.Player4 != nil {
		t.Errorf("fallback match should not fill doubles slots")
	}
}

func TestGenerateRoundStopsWhenCourtsExhausted(t *testing.T) {
	matches, err := GenerateRound(models.RoundDoubles, standingsRoster(12), 2, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2 with only 2 courts", len(matches))
	}
}

func TestGenerateRoundDegenerateRosters(t *testing.T) {
	tests := []struct {
		format  models.RoundFormat
		players int
	}{
		{models.RoundDoubles, 3},
		{models.RoundSingles, 1},
		{models.RoundMaximizeCourts, 1},
		{models.RoundKingOfCourt, 0},
	}
	for _, tt := range tests {
		matches, err := GenerateRound(tt.format, standingsRoster(tt.players), 4, nil, 1)
		if err != nil {
			t.Fatalf("%s/%d players: unexpected error: %v", tt.format, tt.players, err)
		}
		if len(matches) != 0 {
			t.Errorf("%s/%d players: got %d matches, want 0", tt.format, tt.players, len(matches))
		}
	}
}

func TestGenerateRoundUnknownFormat(t *testing.T) {
	_, err := GenerateRound(models.RoundFormat("ladder"), standingsRoster(4), 1, nil, 1)
	if !errors.Is(err, ErrInvalidRoster) {
		t.Errorf("err = %v, want ErrInvalidRoster", err)
	}
}

func TestGenerateRoundDoesNotMutateRoster(t *testing.T) {
	roster := standingsRoster(8)
	// Reverse so the engine has to sort a copy.
	for i, j := 0, len(roster)-1; i < j; i, j = i+1, j-1 {
		roster[i], roster[j] = roster[j], roster[i]
	}
	snapshot := make([]models.RosterEntry, len(roster))
	copy(snapshot, roster)

	if _, err := GenerateRound(models.RoundDoubles, roster, 2, nil, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(roster, snapshot) {
		t.Error("GenerateRound reordered the caller's roster")
	}
}
