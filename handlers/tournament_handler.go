package handlers

import (
	"fmt"
	"net/http"

	"github.com/juangiadev/fulbo/services"
)

const maxBannerUploadBytes = 5 << 20 // 5MB

type TournamentHandler struct {
	tournamentService services.TournamentService
	standingService   services.StandingService
}

func NewTournamentHandler(ts services.TournamentService, ss services.StandingService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
		standingService:   ss,
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), authUser.Sub, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": tournament}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), authUser.Sub)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournaments": tournaments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": tournament}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), authUser.Sub, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": tournament}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), authUser.Sub, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary serves the computed standings table.
func (h *TournamentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.standingService.GetTournamentSummary(r.Context(), tournamentID, authUser.Sub)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, summary, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadBanner accepts a multipart form with a "file" part and a
// "kind" value selecting which banner to replace.
func (h *TournamentHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxBannerUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("missing 'file' form field: %w", err))
		return
	}
	defer file.Close()

	kind := services.BannerKind(r.FormValue("kind"))
	if kind == "" {
		kind = services.BannerKindImage
	}
	contentType := header.Header.Get("Content-Type")

	tournament, err := h.tournamentService.UploadBanner(r.Context(), authUser.Sub, tournamentID, kind, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"tournament": tournament}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invite, code, err := h.tournamentService.RegenerateInvite(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// The plain-text code is only available in this response.
	response := jsonResponse{"invite": invite, "code": code}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetInvite(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invite, err := h.tournamentService.GetInvite(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"invite": invite}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
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

	request, err := h.tournamentService.RequestJoin(r.Context(), authUser.Sub, input.Code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"join_request": request}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	requests, err := h.tournamentService.ListJoinRequests(r.Context(), authUser.Sub, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"join_requests": requests}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ApproveJoinRequest(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID string `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.ApproveJoinRequest(r.Context(), authUser.Sub, tournamentID, requestID, input.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "join request approved"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	requestID, err := getUUIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.RejectJoinRequest(r.Context(), authUser.Sub, tournamentID, requestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "join request rejected"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
