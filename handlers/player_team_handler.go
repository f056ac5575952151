package handlers

import (
	"net/http"

	"github.com/juangiadev/fulbo/services"
)

type PlayerTeamHandler struct {
	playerTeamService services.PlayerTeamService
}

func NewPlayerTeamHandler(pts services.PlayerTeamService) *PlayerTeamHandler {
	return &PlayerTeamHandler{playerTeamService: pts}
}

func (h *PlayerTeamHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
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
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rows, err := h.playerTeamService.ListByTeam(r.Context(), authUser.Sub, tournamentID, matchID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player_teams": rows}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerTeamHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreatePlayerTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	row, err := h.playerTeamService.Create(r.Context(), authUser.Sub, tournamentID, matchID, teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player_team": row}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerTeamHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	playerTeamID, err := getUUIDFromURL(r, "playerTeamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	row, err := h.playerTeamService.Update(r.Context(), authUser.Sub, tournamentID, matchID, playerTeamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player_team": row}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerTeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	playerTeamID, err := getUUIDFromURL(r, "playerTeamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerTeamService.Delete(r.Context(), authUser.Sub, tournamentID, matchID, playerTeamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
