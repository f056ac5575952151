package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/juangiadev/fulbo/handlers"
	"github.com/juangiadev/fulbo/middleware"
)

// SetupRoutes mounts the full API surface on the router. Everything
// except the favorite-team catalog requires a verified token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	playerTeamHandler *handlers.PlayerTeamHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/favorite-teams", userHandler.ListFavoriteTeams)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/sync", userHandler.SyncMe)
			r.Get("/me", userHandler.GetMe)
			r.Patch("/me", userHandler.UpdateMe)
		})

		r.Post("/players/claim", playerHandler.Claim)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Post("/", tournamentHandler.Create)
			r.Post("/join", tournamentHandler.RequestJoin)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByID)
				r.Patch("/", tournamentHandler.Update)
				r.Delete("/", tournamentHandler.Delete)
				r.Get("/summary", tournamentHandler.GetSummary)
				r.Post("/banner", tournamentHandler.UploadBanner)

				r.Get("/invite", tournamentHandler.GetInvite)
				r.Post("/invite", tournamentHandler.RegenerateInvite)

				r.Route("/join-requests", func(r chi.Router) {
					r.Get("/", tournamentHandler.ListJoinRequests)
					r.Post("/{requestID}/approve", tournamentHandler.ApproveJoinRequest)
					r.Post("/{requestID}/reject", tournamentHandler.RejectJoinRequest)
				})

				r.Route("/players", func(r chi.Router) {
					r.Get("/", playerHandler.ListByTournament)
					r.Post("/", playerHandler.CreateFromUser)
					r.Post("/guest", playerHandler.CreateGuest)
					r.Post("/claim", playerHandler.ClaimInTournament)
					r.Route("/{playerID}", func(r chi.Router) {
						r.Get("/", playerHandler.GetByID)
						r.Patch("/", playerHandler.Update)
						r.Delete("/", playerHandler.Delete)
						r.Patch("/role", playerHandler.UpdateRole)
						r.Post("/link", playerHandler.LinkToUser)
						r.Post("/claim-code", playerHandler.RegenerateClaimCode)
						r.Get("/claim-code/meta", playerHandler.GetClaimCodeMeta)
					})
				})

				r.Route("/matches", func(r chi.Router) {
					r.Get("/", matchHandler.ListByTournament)
					r.Post("/", matchHandler.Create)
					r.Route("/{matchID}", func(r chi.Router) {
						r.Get("/", matchHandler.GetByID)
						r.Patch("/", matchHandler.Update)
						r.Delete("/", matchHandler.Delete)
						r.Put("/lineup", matchHandler.UpsertLineup)

						r.Route("/teams", func(r chi.Router) {
							r.Get("/", teamHandler.ListByMatch)
							r.Post("/", teamHandler.Create)
							r.Route("/{teamID}", func(r chi.Router) {
								r.Patch("/", teamHandler.Update)
								r.Delete("/", teamHandler.Delete)
								r.Get("/players", playerTeamHandler.ListByTeam)
								r.Post("/players", playerTeamHandler.Create)
							})
						})

						r.Patch("/player-teams/{playerTeamID}", playerTeamHandler.Update)
						r.Delete("/player-teams/{playerTeamID}", playerTeamHandler.Delete)
					})
				})
			})
		})
	})
}
