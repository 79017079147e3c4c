package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/courtline/club-scheduler/models"
)

var (
	ErrEventMatchNotFound  = errors.New("event match not found")
	ErrMatchPlayerInvalid  = errors.New("match refers to an unknown player")
	ErrMatchNumberConflict = errors.New("match number already exists for this event")
)

type MatchRepository interface {
	CreateEventMatch(ctx context.Context, exec SQLExecutor, match *models.EventMatch) error
	GetEventMatch(ctx context.Context, eventID, matchNumber int) (*models.EventMatch, error)
	ListEventMatches(ctx context.Context, eventID int, round *int) ([]*models.EventMatch, error)
	CountEventMatches(ctx context.Context, eventID int) (int, error)
	// UpdateSlots rewrites the four player slots of a bracket match. Writing
	// the same values again is harmless, which keeps winner advancement
	// idempotent under retries.
	UpdateSlots(ctx context.Context, exec SQLExecutor, eventID, matchNumber int, p1, p2, p3, p4 *int) error
	CompleteEventMatch(ctx context.Context, exec SQLExecutor, eventID, matchNumber int, score *string, winner1, winner2 *int) error

	CreateMixerMatch(ctx context.Context, exec SQLExecutor, match *models.MixerMatch) error
	ListMixerMatches(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error)
	LastMixerRound(ctx context.Context, eventID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const eventMatchColumns = `id, event_id, match_number, round, position, player1_id, player2_id, player3_id, player4_id,
		is_bye, feeds_into, court_number, start_time, status, score, winner1_id, winner2_id, created_at`

func scanEventMatch(scanner interface{ Scan(...interface{}) error }, m *models.EventMatch) error {
	return scanner.Scan(
		&m.ID,
		&m.EventID,
		&m.MatchNumber,
		&m.Round,
		&m.Position,
		&m.Player1ID,
		&m.Player2ID,
		&m.Player3ID,
		&m.Player4ID,
		&m.IsBye,
		&m.FeedsInto,
		&m.CourtNumber,
		&m.StartTime,
		&m.Status,
		&m.Score,
		&m.Winner1ID,
		&m.Winner2ID,
		&m.CreatedAt,
	)
}

func (r *postgresMatchRepository) CreateEventMatch(ctx context.Context, exec SQLExecutor, match *models.EventMatch) error {
	query := `
		INSERT INTO event_matches
			(event_id, match_number, round, position, player1_id, player2_id, player3_id, player4_id,
			 is_bye, feeds_into, court_number, start_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.EventID,
		match.MatchNumber,
		match.Round,
		match.Position,
		match.Player1ID,
		match.Player2ID,
		match.Player3ID,
		match.Player4ID,
		match.IsBye,
		match.FeedsInto,
		match.CourtNumber,
		match.StartTime,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetEventMatch(ctx context.Context, eventID, matchNumber int) (*models.EventMatch, error) {
	query := `SELECT ` + eventMatchColumns + ` FROM event_matches WHERE event_id = $1 AND match_number = $2`

	match := &models.EventMatch{}
	err := scanEventMatch(r.db.QueryRowContext(ctx, query, eventID, matchNumber), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan event match %d/%d: %w", eventID, matchNumber, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListEventMatches(ctx context.Context, eventID int, round *int) ([]*models.EventMatch, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + eventMatchColumns + ` FROM event_matches WHERE event_id = $1`)

	args := []interface{}{eventID}
	if round != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		args = append(args, *round)
	}
	queryBuilder.WriteString(" ORDER BY match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.EventMatch, 0)
	for rows.Next() {
		var match models.EventMatch
		if scanErr := scanEventMatch(rows, &match); scanErr != nil {
			return nil, fmt.Errorf("failed to scan event match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountEventMatches(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_matches WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count event matches for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateSlots(ctx context.Context, exec SQLExecutor, eventID, matchNumber int, p1, p2, p3, p4 *int) error {
	query := `
		UPDATE event_matches
		SET player1_id = $1, player2_id = $2, player3_id = $3, player4_id = $4
		WHERE event_id = $5 AND match_number = $6`

	result, err := exec.ExecContext(ctx, query, p1, p2, p3, p4, eventID, matchNumber)
	if err != nil {
		return fmt.Errorf("UpdateSlots: failed to execute query for match %d/%d: %w", eventID, matchNumber, err)
	}
	return checkAffectedRows(result, ErrEventMatchNotFound)
}

func (r *postgresMatchRepository) CompleteEventMatch(ctx context.Context, exec SQLExecutor, eventID, matchNumber int, score *string, winner1, winner2 *int) error {
	query := `
		UPDATE event_matches
		SET status = $1, score = $2, winner1_id = $3, winner2_id = $4
		WHERE event_id = $5 AND match_number = $6`

	result, err := exec.ExecContext(ctx, query, models.MatchStatusCompleted, score, winner1, winner2, eventID, matchNumber)
	if err != nil {
		return fmt.Errorf("CompleteEventMatch: failed to execute query for match %d/%d: %w", eventID, matchNumber, err)
	}
	return checkAffectedRows(result, ErrEventMatchNotFound)
}

func (r *postgresMatchRepository) CreateMixerMatch(ctx context.Context, exec SQLExecutor, match *models.MixerMatch) error {
	query := `
		INSERT INTO mixer_matches
			(event_id, round_set_id, round_number, court_number, player1_id, player2_id, player3_id, player4_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.EventID,
		match.RoundSetID,
		match.RoundNumber,
		match.CourtNumber,
		match.Player1ID,
		match.Player2ID,
		match.Player3ID,
		match.Player4ID,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) ListMixerMatches(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, event_id, round_set_id, round_number, court_number,
		       player1_id, player2_id, player3_id, player4_id, created_at
		FROM mixer_matches
		WHERE event_id = $1`)

	args := []interface{}{eventID}
	if roundNumber != nil {
		queryBuilder.WriteString(" AND round_number = $2")
		args = append(args, *roundNumber)
	}
	queryBuilder.WriteString(" ORDER BY round_number ASC, court_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixer matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.MixerMatch, 0)
	for rows.Next() {
		var match models.MixerMatch
		if scanErr := rows.Scan(
			&match.ID,
			&match.EventID,
			&match.RoundSetID,
			&match.RoundNumber,
			&match.CourtNumber,
			&match.Player1ID,
			&match.Player2ID,
			&match.Player3ID,
			&match.Player4ID,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan mixer match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during mixer match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) LastMixerRound(ctx context.Context, eventID int) (int, error) {
	var last sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(round_number) FROM mixer_matches WHERE event_id = $1`, eventID).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last mixer round for event %d: %w", eventID, err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64), nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "event_matches_event_id_match_number_key":
			return ErrMatchNumberConflict
		case "event_matches_player1_id_fkey", "event_matches_player2_id_fkey",
			"event_matches_player3_id_fkey", "event_matches_player4_id_fkey",
			"mixer_matches_player1_id_fkey", "mixer_matches_player2_id_fkey",
			"mixer_matches_player3_id_fkey", "mixer_matches_player4_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
