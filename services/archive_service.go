package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/courtline/club-scheduler/models"
	"github.com/courtline/club-scheduler/storage"
)

// StandingsArchive is the document uploaded to object storage when an
// event finishes.
type StandingsArchive struct {
	EventID    int              `json:"event_id"`
	EventName  string           `json:"event_name"`
	ArchivedAt time.Time        `json:"archived_at"`
	Standings  []StandingsLine  `json:"standings"`
	Format     models.EventKind `json:"kind"`
}

type StandingsLine struct {
	Rank      int    `json:"rank"`
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	GamesWon  int    `json:"games_won"`
	GamesLost int    `json:"games_lost"`
	GameDiff  int    `json:"game_diff"`
}

type ArchiveService interface {
	// ArchiveStandings serializes the final standings and uploads them.
	// Returns the public URL of the archived document.
	ArchiveStandings(ctx context.Context, event *models.Event, roster []models.RosterEntry) (string, error)
}

type archiveService struct {
	uploader storage.FileUploader
}

func NewArchiveService(uploader storage.FileUploader) ArchiveService {
	return &archiveService{uploader: uploader}
}

func (s *archiveService) ArchiveStandings(ctx context.Context, event *models.Event, roster []models.RosterEntry) (string, error) {
	ranked := make([]models.RosterEntry, len(roster))
	copy(ranked, roster)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Wins != ranked[j].Wins {
			return ranked[i].Wins > ranked[j].Wins
		}
		return ranked[i].GameDiff() > ranked[j].GameDiff()
	})

	doc := StandingsArchive{
		EventID:    event.ID,
		EventName:  event.Name,
		ArchivedAt: time.Now().UTC(),
		Format:     event.Kind,
	}
	for i, e := range ranked {
		doc.Standings = append(doc.Standings, StandingsLine{
			Rank:      i + 1,
			PlayerID:  e.Player.ID,
			Name:      e.Player.Name,
			Wins:      e.Wins,
			Losses:    e.Losses,
			GamesWon:  e.GamesWon,
			GamesLost: e.GamesLost,
			GameDiff:  e.GameDiff(),
		})
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal standings for event %d: %w", event.ID, err)
	}

	key := fmt.Sprintf("events/%d/standings-%s.json", event.ID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to upload standings for event %d: %w", event.ID, err)
	}
	return result.Location, nil
}
