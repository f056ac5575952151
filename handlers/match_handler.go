package handlers

import (
	"net/http"

	"github.com/juangiadev/fulbo/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), authUser.Sub, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"match": match}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), authUser.Sub, tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"match": match}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"matches": matches}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), authUser.Sub, tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"match": match}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), authUser.Sub, tournamentID, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertLineup reconciles the match roster against the submitted
// desired state.
func (h *MatchHandler) UpsertLineup(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpsertLineupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.UpsertLineup(r.Context(), authUser.Sub, tournamentID, matchID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "lineup saved"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
