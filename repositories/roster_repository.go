package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/courtline/club-scheduler/models"
)

var (
	ErrRosterEntryNotFound = errors.New("roster entry not found")
	ErrRosterConflict      = errors.New("player is already on the event roster")
	ErrRosterPlayerInvalid = errors.New("roster refers to an unknown player or event")
)

type RosterRepository interface {
	Add(ctx context.Context, entry *models.RosterEntry) error
	// ListByEvent returns the roster in seed order: strength rank ascending,
	// insertion order as tiebreak.
	ListByEvent(ctx context.Context, eventID int) ([]models.RosterEntry, error)
	// RecordResult adjusts one player's running statistics after a match.
	RecordResult(ctx context.Context, exec SQLExecutor, eventID, playerID int, won bool, gamesWon, gamesLost int) error
	Remove(ctx context.Context, eventID, playerID int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) Add(ctx context.Context, entry *models.RosterEntry) error {
	query := `
		INSERT INTO event_roster (event_id, player_id, strength_rank)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.EventID,
		entry.Player.ID,
		entry.StrengthRank,
	).Scan(&entry.CreatedAt)

	return r.handleRosterError(err)
}

func (r *postgresRosterRepository) ListByEvent(ctx context.Context, eventID int) ([]models.RosterEntry, error) {
	query := `
		SELECT er.event_id, er.strength_rank, er.wins, er.losses, er.games_won, er.games_lost, er.created_at,
		       p.id, p.name, p.gender, p.email, p.created_at
		FROM event_roster er
		JOIN players p ON p.id = er.player_id
		WHERE er.event_id = $1
		ORDER BY er.strength_rank ASC, er.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for event %d: %w", eventID, err)
	}
	defer rows.Close()

	entries := make([]models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		if scanErr := rows.Scan(
			&entry.EventID,
			&entry.StrengthRank,
			&entry.Wins,
			&entry.Losses,
			&entry.GamesWon,
			&entry.GamesLost,
			&entry.CreatedAt,
			&entry.Player.ID,
			&entry.Player.Name,
			&entry.Player.Gender,
			&entry.Player.Email,
			&entry.Player.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresRosterRepository) RecordResult(ctx context.Context, exec SQLExecutor, eventID, playerID int, won bool, gamesWon, gamesLost int) error {
	query := `
		UPDATE event_roster
		SET wins = wins + $1,
		    losses = losses + $2,
		    games_won = games_won + $3,
		    games_lost = games_lost + $4
		WHERE event_id = $5 AND player_id = $6`

	winInc, lossInc := 0, 1
	if won {
		winInc, lossInc = 1, 0
	}
	result, err := exec.ExecContext(ctx, query, winInc, lossInc, gamesWon, gamesLost, eventID, playerID)
	if err != nil {
		return fmt.Errorf("RecordResult: failed to execute query for event %d player %d: %w", eventID, playerID, err)
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}

func (r *postgresRosterRepository) Remove(ctx context.Context, eventID, playerID int) error {
	query := `DELETE FROM event_roster WHERE event_id = $1 AND player_id = $2`
	result, err := r.db.ExecContext(ctx, query, eventID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}

func (r *postgresRosterRepository) handleRosterError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "event_roster_pkey":
			return ErrRosterConflict
		case "event_roster_event_id_fkey", "event_roster_player_id_fkey":
			return ErrRosterPlayerInvalid
		}
	}
	return err
}
