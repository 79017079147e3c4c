package scheduling

import (
	"errors"
	"testing"

	"github.com/courtline/club-scheduler/models"
)

// seededRoster builds n entries with player IDs 1..n in seed order.
func seededRoster(n int) []models.RosterEntry {
	entries := make([]models.RosterEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = models.RosterEntry{
			Player:       models.Player{ID: i + 1, Name: "player"},
			StrengthRank: i + 1,
		}
	}
	return entries
}

func TestGenerateBracketSizing(t *testing.T) {
	tests := []struct {
		players      int
		bracketSize  int
		totalRounds  int
		totalMatches int
	}{
		{2, 2, 1, 1},
		{3, 4, 2, 3},
		{4, 4, 2, 3},
		{5, 8, 3, 7},
		{6, 8, 3, 7},
		{7, 8, 3, 7},
		{8, 8, 3, 7},
		{9, 16, 4, 15},
		{16, 16, 4, 15},
		{17, 32, 5, 31},
		{33, 64, 6, 63},
	}

	for _, tt := range tests {
		ts, err := GenerateBracket(seededRoster(tt.players), models.FormatSingles)
		if err != nil {
			t.Fatalf("players=%d: unexpected error: %v", tt.players, err)
		}
		if ts.TotalRounds != tt.totalRounds {
			t.Errorf("players=%d: TotalRounds = %d, want %d", tt.players, ts.TotalRounds, tt.totalRounds)
		}
		if ts.TotalMatches != tt.totalMatches {
			t.Errorf("players=%d: TotalMatches = %d, want %d", tt.players, ts.TotalMatches, tt.totalMatches)
		}
		if got := ts.MatchesPerRound[0] * 2; got != tt.bracketSize {
			t.Errorf("players=%d: bracket size = %d, want %d", tt.players, got, tt.bracketSize)
		}

		wantByes := tt.bracketSize - tt.players
		byes := 0
		for _, m := range ts.Matches {
			if m.IsBye {
				byes++
			}
		}
		if byes != wantByes {
			t.Errorf("players=%d: byes = %d, want %d", tt.players, byes, wantByes)
		}

		// Matches per round r must equal bracketSize / 2^r.
		for r := 1; r <= ts.TotalRounds; r++ {
			want := tt.bracketSize >> uint(r)
			if ts.MatchesPerRound[r-1] != want {
				t.Errorf("players=%d round=%d: matches = %d, want %d", tt.players, r, ts.MatchesPerRound[r-1], want)
			}
		}
	}
}

func TestGenerateBracketFeedLinks(t *testing.T) {
	for _, players := range []int{2, 3, 5, 8, 11, 16, 21} {
		ts, err := GenerateBracket(seededRoster(players), models.FormatSingles)
		if err != nil {
			t.Fatalf("players=%d: unexpected error: %v", players, err)
		}

		feeders := make(map[int]int)
		for _, m := range ts.Matches {
			if m.Round == ts.TotalRounds {
				if m.FeedsInto != nil {
					t.Errorf("players=%d: final match %d has FeedsInto", players, m.MatchNumber)
				}
				continue
			}
			if m.FeedsInto == nil {
				t.Errorf("players=%d: non-final match %d has no FeedsInto", players, m.MatchNumber)
				continue
			}
			target := ts.MatchByNumber(*m.FeedsInto)
			if target == nil {
				t.Errorf("players=%d: match %d feeds into missing match %d", players, m.MatchNumber, *m.FeedsInto)
				continue
			}
			if target.Round != m.Round+1 || target.Position != m.Position/2 {
				t.Errorf("players=%d: match %d (r%d p%d) feeds r%d p%d, want r%d p%d",
					players, m.MatchNumber, m.Round, m.Position,
					target.Round, target.Position, m.Round+1, m.Position/2)
			}
			feeders[*m.FeedsInto]++
		}

		// Every later-round match must be fed by exactly two earlier matches.
		for _, m := range ts.Matches {
			if m.Round > 1 && feeders[m.MatchNumber] != 2 {
				t.Errorf("players=%d: match %d has %d feeders, want 2", players, m.MatchNumber, feeders[m.MatchNumber])
			}
		}
	}
}

func TestGenerateBracketCourts(t *testing.T) {
	for _, players := range []int{5, 6, 8, 13} {
		ts, err := GenerateBracket(seededRoster(players), models.FormatSingles)
		if err != nil {
			t.Fatalf("players=%d: unexpected error: %v", players, err)
		}

		nextCourt := 1
		for _, m := range ts.Matches {
			if m.Round != 1 {
				if m.Court != nil {
					t.Errorf("players=%d: placeholder match %d has a court", players, m.MatchNumber)
				}
				continue
			}
			if m.IsBye {
				if m.Court != nil {
					t.Errorf("players=%d: bye match %d has a court", players, m.MatchNumber)
				}
				continue
			}
			if m.Court == nil {
				t.Errorf("players=%d: match %d has no court", players, m.MatchNumber)
				continue
			}
			if *m.Court != nextCourt {
				t.Errorf("players=%d: match %d court = %d, want %d", players, m.MatchNumber, *m.Court, nextCourt)
			}
			nextCourt++
		}
	}
}

func TestGenerateBracketFivePlayers(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(5), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ts.TotalMatches != 7 {
		t.Fatalf("TotalMatches = %d, want 7", ts.TotalMatches)
	}
	if ts.TotalRounds != 3 {
		t.Fatalf("TotalRounds = %d, want 3", ts.TotalRounds)
	}
	if ts.MatchesPerRound[0] != 4 {
		t.Fatalf("round-1 slots = %d, want 4", ts.MatchesPerRound[0])
	}

	byes, real := 0, 0
	seated := make(map[int]bool)
	for _, m := range ts.Matches {
		if m.Round != 1 {
			// Placeholder rounds start empty.
			if m.Player1 != nil || m.Player2 != nil {
				t.Errorf("placeholder match %d is not empty", m.MatchNumber)
			}
			continue
		}
		if m.IsBye {
			byes++
			if m.Player1 == nil || m.Player2 != nil {
				t.Errorf("bye match %d must seat exactly one player", m.MatchNumber)
			}
			if m.Player1 != nil {
				seated[*m.Player1] = true
			}
			continue
		}
		real++
		if m.Player1 == nil || m.Player2 == nil {
			t.Errorf("match %d is missing players", m.MatchNumber)
			continue
		}
		seated[*m.Player1] = true
		seated[*m.Player2] = true
	}
	if byes != 3 {
		t.Errorf("byes = %d, want 3", byes)
	}
	if real != 1 {
		t.Errorf("real round-1 matches = %d, want 1", real)
	}
	if len(seated) != 5 {
		t.Errorf("seated %d distinct players, want all 5", len(seated))
	}
}

func TestGenerateBracketDoubles(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(8), models.FormatDoubles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 8 players form 4 teams, a full bracket of 2 rounds.
	if ts.TotalRounds != 2 || ts.TotalMatches != 3 {
		t.Fatalf("got %d rounds / %d matches, want 2 / 3", ts.TotalRounds, ts.TotalMatches)
	}

	first := ts.Matches[0]
	for i, want := range []*int{first.Player1, first.Player2, first.Player3, first.Player4} {
		if want == nil {
			t.Fatalf("match 1 slot %d is empty", i+1)
		}
	}
	// Teams are consecutive seeded pairs: (1,2) vs (3,4).
	if *first.Player1 != 1 || *first.Player2 != 2 || *first.Player3 != 3 || *first.Player4 != 4 {
		t.Errorf("match 1 seating = (%d,%d) vs (%d,%d), want (1,2) vs (3,4)",
			*first.Player1, *first.Player2, *first.Player3, *first.Player4)
	}
}

func TestGenerateBracketDoublesOddCount(t *testing.T) {
	for _, format := range []models.MatchFormat{models.FormatDoubles, models.FormatMixedDoubles} {
		_, err := GenerateBracket(seededRoster(7), format)
		if !errors.Is(err, ErrInvalidRoster) {
			t.Errorf("format=%s: err = %v, want ErrInvalidRoster", format, err)
		}
	}
}

func TestGenerateBracketDegenerateRosters(t *testing.T) {
	for _, players := range []int{0, 1} {
		ts, err := GenerateBracket(seededRoster(players), models.FormatSingles)
		if err != nil {
			t.Fatalf("players=%d: unexpected error: %v", players, err)
		}
		if ts.TotalMatches != 0 || len(ts.Matches) != 0 {
			t.Errorf("players=%d: expected empty structure, got %d matches", players, ts.TotalMatches)
		}
	}
}

func TestAdvanceWinnerSinglesSlots(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Match 1 sits at position 0: winner takes the top slot of the final.
	next, err := AdvanceWinner(ts, 1, []int{1})
	if err != nil {
		t.Fatalf("advance match 1: %v", err)
	}
	if next == nil || next.MatchNumber != 3 {
		t.Fatalf("advance match 1 returned %+v, want match 3", next)
	}
	if next.Player1 == nil || *next.Player1 != 1 {
		t.Errorf("even position winner should land in player1, got %+v", next)
	}
	if next.Player2 != nil {
		t.Errorf("bottom slot should still be empty")
	}

	// Match 2 sits at position 1: winner takes the bottom slot.
	if _, err := AdvanceWinner(ts, 2, []int{4}); err != nil {
		t.Fatalf("advance match 2: %v", err)
	}
	final := ts.MatchByNumber(3)
	if final.Player2 == nil || *final.Player2 != 4 {
		t.Errorf("odd position winner should land in player2, got %+v", final)
	}
}

func TestAdvanceWinnerDoublesSlots(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(16), models.FormatDoubles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, err := AdvanceWinner(ts, 1, []int{1, 2})
	if err != nil {
		t.Fatalf("advance match 1: %v", err)
	}
	if next.Player1 == nil || next.Player2 == nil || *next.Player1 != 1 || *next.Player2 != 2 {
		t.Errorf("even position team should land in player1/player2, got %+v", next)
	}

	next, err = AdvanceWinner(ts, 2, []int{5, 6})
	if err != nil {
		t.Fatalf("advance match 2: %v", err)
	}
	if next.Player3 == nil || next.Player4 == nil || *next.Player3 != 5 || *next.Player4 != 6 {
		t.Errorf("odd position team should land in player3/player4, got %+v", next)
	}
}

func TestAdvanceWinnerFinalIsNoop(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	finalNumber := ts.Final().MatchNumber
	next, err := AdvanceWinner(ts, finalNumber, []int{1})
	if err != nil {
		t.Fatalf("advancing the final should not error, got %v", err)
	}
	if next != nil {
		t.Errorf("advancing the final should return nil, got %+v", next)
	}
}

func TestAdvanceWinnerUnknownMatch(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := AdvanceWinner(ts, 99, []int{1}); !errors.Is(err, ErrBracketConsistency) {
		t.Errorf("err = %v, want ErrBracketConsistency", err)
	}
}

func TestAdvanceWinnerWrongWinnerCount(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := AdvanceWinner(ts, 1, []int{1, 2}); err == nil {
		t.Error("expected error for two winner ids in a singles bracket")
	}
}

func TestAdvanceWinnerIdempotent(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := AdvanceWinner(ts, 1, []int{2}); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	final := ts.Final()
	if final.Player1 == nil || *final.Player1 != 2 || final.Player2 != nil {
		t.Errorf("repeated advancement changed state: %+v", final)
	}
}

func TestStructureFromMatches(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(6), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rebuilt, err := StructureFromMatches(ts.Format, ts.Matches)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.TotalMatches != ts.TotalMatches || rebuilt.TotalRounds != ts.TotalRounds {
		t.Errorf("rebuilt totals %d/%d, want %d/%d",
			rebuilt.TotalMatches, rebuilt.TotalRounds, ts.TotalMatches, ts.TotalRounds)
	}
	for r := range ts.MatchesPerRound {
		if rebuilt.MatchesPerRound[r] != ts.MatchesPerRound[r] {
			t.Errorf("round %d: rebuilt %d matches, want %d", r+1, rebuilt.MatchesPerRound[r], ts.MatchesPerRound[r])
		}
	}
}

func TestStructureFromMatchesInconsistent(t *testing.T) {
	ts, err := GenerateBracket(seededRoster(4), models.FormatSingles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := []*models.Match{ts.Matches[0], ts.Matches[0]}
	if _, err := StructureFromMatches(ts.Format, dup); !errors.Is(err, ErrBracketConsistency) {
		t.Errorf("duplicate numbers: err = %v, want ErrBracketConsistency", err)
	}

	// Drop the final so round-1 feed targets dangle.
	truncated := ts.Matches[:len(ts.Matches)-1]
	if _, err := StructureFromMatches(ts.Format, truncated); !errors.Is(err, ErrBracketConsistency) {
		t.Errorf("missing feed target: err = %v, want ErrBracketConsistency", err)
	}
}
