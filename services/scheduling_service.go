package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/courtline/club-scheduler/models"
	"github.com/courtline/club-scheduler/repositories"
	"github.com/courtline/club-scheduler/scheduling"
)

// MatchResultInput carries one completed match's outcome. Winner statistics
// are from the winner's perspective; the loser's are mirrored.
type MatchResultInput struct {
	WinnerIDs []int   `json:"winner_ids"`
	Score     *string `json:"score,omitempty"`
	GamesWon  int     `json:"games_won"`
	GamesLost int     `json:"games_lost"`
}

// SubmitResultOutput reports what a result submission changed. Next is nil
// when the completed match was the final; ChampionIDs is set in that case.
type SubmitResultOutput struct {
	Completed   *models.EventMatch `json:"completed"`
	Next        *models.EventMatch `json:"next,omitempty"`
	ChampionIDs []int              `json:"champion_ids,omitempty"`
}

type SchedulingService interface {
	GenerateBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error)
	GetBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error)
	SubmitResult(ctx context.Context, eventID, matchNumber int, input MatchResultInput) (*SubmitResultOutput, error)
	GenerateRound(ctx context.Context, eventID int) ([]*models.MixerMatch, error)
	ListRounds(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error)
}

type schedulingService struct {
	db         *sql.DB
	eventRepo  repositories.EventRepository
	rosterRepo repositories.RosterRepository
	matchRepo  repositories.MatchRepository
	archive    ArchiveService
	logger     *slog.Logger
}

func NewSchedulingService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	rosterRepo repositories.RosterRepository,
	matchRepo repositories.MatchRepository,
	archive ArchiveService,
	logger *slog.Logger,
) SchedulingService {
	return &schedulingService{
		db:         db,
		eventRepo:  eventRepo,
		rosterRepo: rosterRepo,
		matchRepo:  matchRepo,
		archive:    archive,
		logger:     logger,
	}
}

// GenerateBracket builds and persists the elimination structure for an
// event, then auto-advances every round-1 bye so their recipients are
// already seated in round 2. The whole write happens in one transaction.
func (s *schedulingService) GenerateBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != models.KindElimination || event.MatchFormat == nil {
		return nil, ErrEventNotElimination
	}
	switch event.Status {
	case models.StatusRegistration, models.StatusActive:
	default:
		return nil, fmt.Errorf("%w: bracket generation requires registration or active status, event is %s",
			ErrEventInvalidTransition, event.Status)
	}

	existing, err := s.matchRepo.CountEventMatches(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrBracketAlreadyExists
	}

	roster, err := s.rosterRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ts, err := scheduling.GenerateBracket(roster, *event.MatchFormat)
	if err != nil {
		return nil, err
	}
	if ts.TotalMatches == 0 {
		return nil, ErrNotEnoughPlayers
	}

	s.logger.Info("bracket generated",
		slog.Int("event_id", eventID),
		slog.Int("players", len(roster)),
		slog.Int("rounds", ts.TotalRounds),
		slog.Int("matches", ts.TotalMatches))

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range ts.Matches {
			row := &models.EventMatch{
				EventID:     eventID,
				MatchNumber: m.MatchNumber,
				Round:       m.Round,
				Position:    m.Position,
				Player1ID:   m.Player1,
				Player2ID:   m.Player2,
				Player3ID:   m.Player3,
				Player4ID:   m.Player4,
				IsBye:       m.IsBye,
				FeedsInto:   m.FeedsInto,
				CourtNumber: m.Court,
				Status:      models.StatusScheduled,
			}
			if m.Court != nil {
				start := event.StartDate
				row.StartTime = &start
			}
			if m.IsBye {
				// A bye is decided the moment the bracket exists.
				row.Status = models.MatchStatusCompleted
				row.Winner1ID = m.Player1
				row.Winner2ID = m.Player2
			}
			if createErr := s.matchRepo.CreateEventMatch(ctx, tx, row); createErr != nil {
				return createErr
			}
		}

		// Thread bye recipients into the next round.
		for _, m := range ts.Matches {
			if !m.IsBye {
				continue
			}
			next, advErr := scheduling.AdvanceWinner(ts, m.MatchNumber, sideIDs(m, true))
			if advErr != nil {
				return advErr
			}
			if next == nil {
				continue
			}
			if updErr := s.matchRepo.UpdateSlots(ctx, tx, eventID, next.MatchNumber,
				next.Player1, next.Player2, next.Player3, next.Player4); updErr != nil {
				return updErr
			}
		}

		if event.Status == models.StatusRegistration {
			return s.eventRepo.UpdateStatus(ctx, tx, eventID, models.StatusActive)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// GetBracket reloads the persisted structure for an event.
func (s *schedulingService) GetBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != models.KindElimination || event.MatchFormat == nil {
		return nil, ErrEventNotElimination
	}
	rows, err := s.matchRepo.ListEventMatches(ctx, eventID, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrBracketNotGenerated
	}
	nodes := make([]*models.Match, len(rows))
	for i, row := range rows {
		nodes[i] = row.Node()
	}
	return scheduling.StructureFromMatches(*event.MatchFormat, nodes)
}

// SubmitResult records a completed match, updates the winners' and losers'
// running statistics, and advances the winner into the next bracket node.
// Retrying with the identical winner is a no-op beyond rewriting the same
// slots; a different winner for an already completed match is rejected.
func (s *schedulingService) SubmitResult(ctx context.Context, eventID, matchNumber int, input MatchResultInput) (*SubmitResultOutput, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != models.KindElimination || event.MatchFormat == nil {
		return nil, ErrEventNotElimination
	}

	rows, err := s.matchRepo.ListEventMatches(ctx, eventID, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrBracketNotGenerated
	}

	var row *models.EventMatch
	for _, r := range rows {
		if r.MatchNumber == matchNumber {
			row = r
			break
		}
	}
	if row == nil {
		return nil, ErrMatchNotFound
	}
	if row.IsBye {
		return nil, ErrMatchAlreadyCompleted
	}

	teamSize := event.MatchFormat.TeamSize()
	if len(input.WinnerIDs) != teamSize {
		return nil, fmt.Errorf("%w: expected %d winner id(s)", ErrValidationFailed, teamSize)
	}

	winners, losers, err := splitSides(row, teamSize, input.WinnerIDs)
	if err != nil {
		return nil, err
	}

	retry := false
	if row.Status == models.MatchStatusCompleted {
		if !sameWinner(row, winners) {
			return nil, ErrMatchAlreadyCompleted
		}
		retry = true
	}

	nodes := make([]*models.Match, len(rows))
	for i, r := range rows {
		nodes[i] = r.Node()
	}
	ts, err := scheduling.StructureFromMatches(*event.MatchFormat, nodes)
	if err != nil {
		return nil, err
	}
	next, err := scheduling.AdvanceWinner(ts, matchNumber, winners)
	if err != nil {
		return nil, err
	}

	var out SubmitResultOutput
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if !retry {
			var w1, w2 *int
			w1 = &winners[0]
			if teamSize == 2 {
				w2 = &winners[1]
			}
			if completeErr := s.matchRepo.CompleteEventMatch(ctx, tx, eventID, matchNumber, input.Score, w1, w2); completeErr != nil {
				return completeErr
			}
			for _, id := range winners {
				if statErr := s.rosterRepo.RecordResult(ctx, tx, eventID, id, true, input.GamesWon, input.GamesLost); statErr != nil {
					return statErr
				}
			}
			for _, id := range losers {
				if statErr := s.rosterRepo.RecordResult(ctx, tx, eventID, id, false, input.GamesLost, input.GamesWon); statErr != nil {
					return statErr
				}
			}
		}
		if next != nil {
			return s.matchRepo.UpdateSlots(ctx, tx, eventID, next.MatchNumber,
				next.Player1, next.Player2, next.Player3, next.Player4)
		}
		if !retry {
			return s.eventRepo.UpdateStatus(ctx, tx, eventID, models.StatusCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	completed, err := s.matchRepo.GetEventMatch(ctx, eventID, matchNumber)
	if err != nil {
		return nil, err
	}
	out.Completed = completed

	if next != nil {
		nextRow, getErr := s.matchRepo.GetEventMatch(ctx, eventID, next.MatchNumber)
		if getErr != nil {
			return nil, getErr
		}
		out.Next = nextRow
		return &out, nil
	}

	out.ChampionIDs = winners
	s.logger.Info("tournament completed",
		slog.Int("event_id", eventID),
		slog.Any("champion_ids", winners))

	// Archival is best effort; the result itself is already committed.
	if s.archive != nil && !retry {
		if archiveErr := s.archiveStandings(ctx, event); archiveErr != nil {
			s.logger.Error("failed to archive standings",
				slog.Int("event_id", eventID), slog.Any("error", archiveErr))
		}
	}
	return &out, nil
}

// GenerateRound produces and persists one mixer round from the current
// roster standings.
func (s *schedulingService) GenerateRound(ctx context.Context, eventID int) ([]*models.MixerMatch, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != models.KindMixer || event.RoundFormat == nil {
		return nil, ErrEventNotMixer
	}
	switch event.Status {
	case models.StatusRegistration, models.StatusActive:
	default:
		return nil, ErrEventNotActive
	}

	roster, err := s.rosterRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	lastRound, err := s.matchRepo.LastMixerRound(ctx, eventID)
	if err != nil {
		return nil, err
	}
	previousRows, err := s.matchRepo.ListMixerMatches(ctx, eventID, nil)
	if err != nil {
		return nil, err
	}
	previous := make([]models.RoundMatch, len(previousRows))
	for i, r := range previousRows {
		previous[i] = models.RoundMatch{
			Court:   r.CourtNumber,
			Player1: r.Player1ID,
			Player2: r.Player2ID,
			Player3: r.Player3ID,
			Player4: r.Player4ID,
		}
	}

	roundNumber := lastRound + 1
	round, err := scheduling.GenerateRound(*event.RoundFormat, roster, event.Courts, previous, roundNumber)
	if err != nil {
		return nil, err
	}
	if len(round) == 0 {
		return nil, ErrNotEnoughPlayers
	}

	setID := uuid.NewString()
	created := make([]*models.MixerMatch, 0, len(round))
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range round {
			row := &models.MixerMatch{
				EventID:     eventID,
				RoundSetID:  setID,
				RoundNumber: roundNumber,
				CourtNumber: m.Court,
				Player1ID:   m.Player1,
				Player2ID:   m.Player2,
				Player3ID:   m.Player3,
				Player4ID:   m.Player4,
			}
			if createErr := s.matchRepo.CreateMixerMatch(ctx, tx, row); createErr != nil {
				return createErr
			}
			created = append(created, row)
		}
		if event.Status == models.StatusRegistration {
			return s.eventRepo.UpdateStatus(ctx, tx, eventID, models.StatusActive)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("mixer round generated",
		slog.Int("event_id", eventID),
		slog.Int("round", roundNumber),
		slog.String("format", string(*event.RoundFormat)),
		slog.Int("courts", len(created)))
	return created, nil
}

// ListRounds returns the persisted mixer matches for an event, optionally
// restricted to a single round number.
func (s *schedulingService) ListRounds(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != models.KindMixer || event.RoundFormat == nil {
		return nil, ErrEventNotMixer
	}
	return s.matchRepo.ListMixerMatches(ctx, eventID, roundNumber)
}

func (s *schedulingService) archiveStandings(ctx context.Context, event *models.Event) error {
	roster, err := s.rosterRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	_, err = s.archive.ArchiveStandings(ctx, event, roster)
	return err
}

func (s *schedulingService) loadEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (s *schedulingService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sideIDs collects the seated player IDs of one side of a bracket node.
func sideIDs(m *models.Match, top bool) []int {
	var slots []*int
	if top {
		slots = []*int{m.Player1, m.Player2}
	} else {
		slots = []*int{m.Player3, m.Player4}
	}
	ids := make([]int, 0, 2)
	for _, p := range slots {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}

// splitSides validates the claimed winners against the seated sides and
// returns (winners, losers) in slot order.
func splitSides(row *models.EventMatch, teamSize int, winnerIDs []int) (winners, losers []int, err error) {
	if teamSize == 1 {
		if row.Player1ID == nil || row.Player2ID == nil {
			return nil, nil, ErrMatchNotReady
		}
		switch winnerIDs[0] {
		case *row.Player1ID:
			return []int{*row.Player1ID}, []int{*row.Player2ID}, nil
		case *row.Player2ID:
			return []int{*row.Player2ID}, []int{*row.Player1ID}, nil
		}
		return nil, nil, ErrWinnerNotInMatch
	}

	if row.Player1ID == nil || row.Player2ID == nil || row.Player3ID == nil || row.Player4ID == nil {
		return nil, nil, ErrMatchNotReady
	}
	top := []int{*row.Player1ID, *row.Player2ID}
	bottom := []int{*row.Player3ID, *row.Player4ID}
	switch {
	case samePair(winnerIDs, top):
		return top, bottom, nil
	case samePair(winnerIDs, bottom):
		return bottom, top, nil
	}
	return nil, nil, ErrWinnerNotInMatch
}

func samePair(a, b []int) bool {
	return (a[0] == b[0] && a[1] == b[1]) || (a[0] == b[1] && a[1] == b[0])
}

func sameWinner(row *models.EventMatch, winners []int) bool {
	if row.Winner1ID == nil {
		return false
	}
	if len(winners) == 1 {
		return *row.Winner1ID == winners[0]
	}
	if row.Winner2ID == nil {
		return false
	}
	return samePair(winners, []int{*row.Winner1ID, *row.Winner2ID})
}
