package handlers

import (
	"net/http"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, code, err := h.playerService.CreateGuest(r.Context(), authUser.Sub, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The claim code is shown once, at creation time.
	response := jsonResponse{"player": player, "claim_code": code}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) CreateFromUser(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateFromUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreateFromUser(r.Context(), authUser.Sub, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), authUser.Sub, tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.playerService.ListByTournament(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"players": players}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), authUser.Sub, tournamentID, playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Role models.PlayerRole `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.UpdateRole(r.Context(), authUser.Sub, tournamentID, playerID, input.Role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "role updated"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), authUser.Sub, tournamentID, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayerHandler) LinkToUser(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID string `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.LinkToUser(r.Context(), authUser.Sub, tournamentID, playerID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) RegenerateClaimCode(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	code, err := h.playerService.RegenerateClaimCode(r.Context(), authUser.Sub, tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"claim_code": code}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetClaimCodeMeta reports when a guest player's claim code expires.
// A linked player has no code, so expires_at comes back null.
func (h *PlayerHandler) GetClaimCodeMeta(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	expiresAt, err := h.playerService.GetClaimCodeMeta(r.Context(), authUser.Sub, tournamentID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"expires_at": expiresAt}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClaimInTournament redeems a claim code scoped to one tournament.
func (h *PlayerHandler) ClaimInTournament(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.ClaimInTournament(r.Context(), authUser.Sub, tournamentID, input.Code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Claim links the authenticated user to the guest player whose claim
// code matches.
func (h *PlayerHandler) Claim(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	var input struct {
		Code string `json:"code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Claim(r.Context(), authUser.Sub, input.Code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"player": player}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
