package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/courtline/club-scheduler/models"
	"github.com/courtline/club-scheduler/scheduling"
	"github.com/courtline/club-scheduler/services"
)

type stubSchedulingService struct {
	generateBracket func(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error)
	getBracket      func(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error)
	submitResult    func(ctx context.Context, eventID, matchNumber int, input services.MatchResultInput) (*services.SubmitResultOutput, error)
	generateRound   func(ctx context.Context, eventID int) ([]*models.MixerMatch, error)
	listRounds      func(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error)
}

func (s *stubSchedulingService) GenerateBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
	return s.generateBracket(ctx, eventID)
}

func (s *stubSchedulingService) GetBracket(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
	return s.getBracket(ctx, eventID)
}

func (s *stubSchedulingService) SubmitResult(ctx context.Context, eventID, matchNumber int, input services.MatchResultInput) (*services.SubmitResultOutput, error) {
	return s.submitResult(ctx, eventID, matchNumber, input)
}

func (s *stubSchedulingService) GenerateRound(ctx context.Context, eventID int) ([]*models.MixerMatch, error) {
	return s.generateRound(ctx, eventID)
}

func (s *stubSchedulingService) ListRounds(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error) {
	return s.listRounds(ctx, eventID, roundNumber)
}

func newTestRouter(h *SchedulingHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/events/{eventID}/bracket", h.GenerateBracketHandler)
	r.Get("/events/{eventID}/bracket", h.GetBracketHandler)
	r.Post("/events/{eventID}/matches/{matchNumber}/result", h.SubmitResultHandler)
	r.Post("/events/{eventID}/rounds", h.GenerateRoundHandler)
	r.Get("/events/{eventID}/rounds", h.ListRoundsHandler)
	return r
}

func TestGenerateBracketHandlerStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "created",
			url:        "/events/7/bracket",
			serviceErr: nil,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid event id",
			url:        "/events/abc/bracket",
			serviceErr: nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "event missing",
			url:        "/events/7/bracket",
			serviceErr: services.ErrEventNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bracket exists",
			url:        "/events/7/bracket",
			serviceErr: services.ErrBracketAlreadyExists,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "roster too small",
			url:        "/events/7/bracket",
			serviceErr: services.ErrNotEnoughPlayers,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid roster",
			url:        "/events/7/bracket",
			serviceErr: scheduling.ErrInvalidRoster,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "corrupt structure",
			url:        "/events/7/bracket",
			serviceErr: scheduling.ErrBracketConsistency,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubSchedulingService{
				generateBracket: func(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &scheduling.TournamentStructure{Format: models.FormatSingles}, nil
				},
			}
			router := newTestRouter(NewSchedulingHandler(svc))

			req := httptest.NewRequest(http.MethodPost, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSubmitResultHandlerDecodesInput(t *testing.T) {
	var gotEventID, gotMatchNumber int
	var gotInput services.MatchResultInput
	svc := &stubSchedulingService{
		submitResult: func(ctx context.Context, eventID, matchNumber int, input services.MatchResultInput) (*services.SubmitResultOutput, error) {
			gotEventID = eventID
			gotMatchNumber = matchNumber
			gotInput = input
			return &services.SubmitResultOutput{}, nil
		},
	}
	router := newTestRouter(NewSchedulingHandler(svc))

	body := `{"winner_ids": [4], "score": "6-3 6-4", "games_won": 12, "games_lost": 7}`
	req := httptest.NewRequest(http.MethodPost, "/events/3/matches/5/result", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if gotEventID != 3 || gotMatchNumber != 5 {
		t.Errorf("expected event 3 match 5, got event %d match %d", gotEventID, gotMatchNumber)
	}
	if len(gotInput.WinnerIDs) != 1 || gotInput.WinnerIDs[0] != 4 {
		t.Errorf("unexpected winner ids: %v", gotInput.WinnerIDs)
	}
	if gotInput.Score == nil || *gotInput.Score != "6-3 6-4" {
		t.Errorf("unexpected score: %v", gotInput.Score)
	}
	if gotInput.GamesWon != 12 || gotInput.GamesLost != 7 {
		t.Errorf("unexpected games: won %d lost %d", gotInput.GamesWon, gotInput.GamesLost)
	}
}

func TestSubmitResultHandlerRejectsUnknownField(t *testing.T) {
	svc := &stubSchedulingService{
		submitResult: func(ctx context.Context, eventID, matchNumber int, input services.MatchResultInput) (*services.SubmitResultOutput, error) {
			t.Fatal("service should not be called for malformed input")
			return nil, nil
		},
	}
	router := newTestRouter(NewSchedulingHandler(svc))

	body := `{"winner_ids": [4], "champion": true}`
	req := httptest.NewRequest(http.MethodPost, "/events/3/matches/5/result", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestListRoundsHandlerRoundFilter(t *testing.T) {
	var gotRound *int
	svc := &stubSchedulingService{
		listRounds: func(ctx context.Context, eventID int, roundNumber *int) ([]*models.MixerMatch, error) {
			gotRound = roundNumber
			return []*models.MixerMatch{}, nil
		},
	}
	router := newTestRouter(NewSchedulingHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/events/3/rounds?round=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotRound == nil || *gotRound != 2 {
		t.Errorf("expected round filter 2, got %v", gotRound)
	}

	req = httptest.NewRequest(http.MethodGet, "/events/3/rounds?round=zero", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad round, got %d", rec.Code)
	}
}

func TestGetBracketHandlerBody(t *testing.T) {
	court := 1
	p1, p2 := 1, 2
	svc := &stubSchedulingService{
		getBracket: func(ctx context.Context, eventID int) (*scheduling.TournamentStructure, error) {
			return &scheduling.TournamentStructure{
				Format: models.FormatSingles,
				Matches: []*models.Match{
					{MatchNumber: 1, Round: 1, Position: 0, Player1: &p1, Player3: &p2, Court: &court},
				},
				TotalRounds:     1,
				MatchesPerRound: []int{1},
				TotalMatches:    1,
			}, nil
		},
	}
	router := newTestRouter(NewSchedulingHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/events/9/bracket", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json content type, got %q", ct)
	}

	var envelope struct {
		Bracket struct {
			TotalRounds  int `json:"total_rounds"`
			TotalMatches int `json:"total_matches"`
		} `json:"bracket"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Bracket.TotalRounds != 1 || envelope.Bracket.TotalMatches != 1 {
		t.Errorf("unexpected bracket payload: %+v", envelope.Bracket)
	}
}
