package handlers

import (
	"net/http"

	"github.com/juangiadev/fulbo/models"
	"github.com/juangiadev/fulbo/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// SyncMe creates the local account on first login and returns it.
func (h *UserHandler) SyncMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.SyncMe(r.Context(), services.AuthIdentity{
		Sub:      authUser.Sub,
		Email:    authUser.Email,
		Name:     authUser.Name,
		Nickname: authUser.Nickname,
		Picture:  authUser.Picture,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(r.Context(), authUser.Sub)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := getAuthUser(w, r)
	if !ok {
		return
	}

	var input services.UpdateUserInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateMe(r.Context(), authUser.Sub, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := getAuthUser(w, r); !ok {
		return
	}

	users, err := h.userService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"users": users}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListFavoriteTeams serves the static team catalog used for the
// favorite-team picker.
func (h *UserHandler) ListFavoriteTeams(w http.ResponseWriter, r *http.Request) {
	response := jsonResponse{"favorite_teams": models.FavoriteTeams()}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
