package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtline/club-scheduler/services"
)

type SchedulingHandler struct {
	schedulingService services.SchedulingService
}

func NewSchedulingHandler(ss services.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{
		schedulingService: ss,
	}
}

// GenerateBracketHandler handles POST /events/{eventID}/bracket
func (h *SchedulingHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.schedulingService.GenerateBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler handles GET /events/{eventID}/bracket
func (h *SchedulingHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.schedulingService.GetBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler handles POST /events/{eventID}/matches/{matchNumber}/result
func (h *SchedulingHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchNumber, err := getIDFromURL(r, "matchNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.schedulingService.SubmitResult(r.Context(), eventID, matchNumber, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateRoundHandler handles POST /events/{eventID}/rounds
func (h *SchedulingHandler) GenerateRoundHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.schedulingService.GenerateRound(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRoundsHandler handles GET /events/{eventID}/rounds
func (h *SchedulingHandler) ListRoundsHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var roundNumber *int
	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		round, convErr := strconv.Atoi(roundStr)
		if convErr != nil || round <= 0 {
			badRequestResponse(w, r, errors.New("invalid round query parameter"))
			return
		}
		roundNumber = &round
	}

	matches, err := h.schedulingService.ListRounds(r.Context(), eventID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
