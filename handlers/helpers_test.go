package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juangiadev/fulbo/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown entity", err: services.ErrTournamentNotFound, wantStatus: http.StatusNotFound},
		{name: "match scoped out of its tournament", err: services.ErrMatchNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid code reads as not found", err: services.ErrCodeInvalid, wantStatus: http.StatusNotFound},
		{name: "expired code is a bad request", err: services.ErrCodeExpired, wantStatus: http.StatusBadRequest},
		{name: "validation failure", err: services.ErrNegativeGoals, wantStatus: http.StatusBadRequest},
		{name: "duplicate lineup player", err: services.ErrDuplicateLineupPlayer, wantStatus: http.StatusBadRequest},
		{name: "third team on a match", err: services.ErrTeamLimitReached, wantStatus: http.StatusBadRequest},
		{name: "claimed player conflict", err: services.ErrPlayerAlreadyLinked, wantStatus: http.StatusConflict},
		{name: "auth subject conflict", err: services.ErrUserAuthConflict, wantStatus: http.StatusConflict},
		{name: "duplicate membership conflict", err: services.ErrUserAlreadyInTournament, wantStatus: http.StatusConflict},
		{name: "pending join request conflict", err: services.ErrJoinRequestPending, wantStatus: http.StatusConflict},
		{name: "outsider", err: services.ErrNotTournamentMember, wantStatus: http.StatusForbidden},
		{name: "editor required", err: services.ErrEditorRequired, wantStatus: http.StatusForbidden},
		{name: "owner required", err: services.ErrOwnerRequired, wantStatus: http.StatusForbidden},
		{name: "forbidden operation", err: services.ErrForbiddenOperation, wantStatus: http.StatusForbidden},
		{name: "unexpected error", err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid body", body: `{"name":"Liga"}`},
		{name: "malformed json", body: `{"name":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"title":"Liga"}`, wantErr: "unknown key"},
		{name: "empty body", body: ``, wantErr: "must not be empty"},
		{name: "trailing value", body: `{"name":"Liga"}{"name":"Copa"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := readJSON(rec, req, &dst)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, "Liga", dst.Name)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
