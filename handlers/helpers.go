package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/juangiadev/fulbo/middleware"
	"github.com/juangiadev/fulbo/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusNotFound, err.Error())
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// getAuthUser pulls the verified identity out of the request context.
func getAuthUser(w http.ResponseWriter, r *http.Request) (middleware.AuthUser, bool) {
	user, err := middleware.GetAuthUser(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return middleware.AuthUser{}, false
	}
	return user, true
}

func getUUIDFromURL(r *http.Request, param string) (string, error) {
	value := chi.URLParam(r, param)
	if value == "" {
		return "", fmt.Errorf("missing %s in URL", param)
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", fmt.Errorf("invalid %s in URL", param)
	}
	return value, nil
}

// mapServiceErrorToHTTP translates service-layer errors into HTTP
// responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerTeamNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrJoinRequestNotFound),
		errors.Is(err, services.ErrCodeInvalid):
		notFoundResponse(w, r, err)

	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserAuthConflict),
		errors.Is(err, services.ErrUserAlreadyInTournament),
		errors.Is(err, services.ErrPlayerAlreadyLinked),
		errors.Is(err, services.ErrJoinRequestPending):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidDisplayPref),
		errors.Is(err, services.ErrInvalidFavoriteTeam),
		errors.Is(err, services.ErrInvalidAbility),
		errors.Is(err, services.ErrInvalidMatchStatus),
		errors.Is(err, services.ErrNegativeGoals),
		errors.Is(err, services.ErrDuplicateLineupPlayer),
		errors.Is(err, services.ErrPlayerNotInTournament),
		errors.Is(err, services.ErrTeamLimitReached),
		errors.Is(err, services.ErrCodeExpired):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrNotTournamentMember),
		errors.Is(err, services.ErrEditorRequired),
		errors.Is(err, services.ErrOwnerRequired),
		errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
