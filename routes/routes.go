package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Toleubekov/auction-system/handlers"
	"github.com/Toleubekov/auction-system/middleware"
	"github.com/Toleubekov/auction-system/models"
)

// SetupRoutes собирает все HTTP и WebSocket маршруты приложения.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	competitionHandler *handlers.CompetitionHandler,
	playerHandler *handlers.PlayerHandler,
	trophyHandler *handlers.TrophyHandler,
	auctionHandler *handlers.AuctionHandler,
	auctionWSHandler *handlers.AuctionWSHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListHandler)
		r.Get("/{userID}", userHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Patch("/{userID}/nickname", userHandler.UpdateNicknameHandler)
		})
	})

	router.Route("/competitions", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/", competitionHandler.ListHandler)
		r.Get("/{competitionID}", competitionHandler.GetByIDHandler)
		r.Get("/{competitionID}/players", playerHandler.ListByCompetitionHandler)
		r.Get("/{competitionID}/trophies", trophyHandler.ListByCompetitionHandler)
		r.Get("/{competitionID}/standings", competitionHandler.ListStandingsHandler)
		r.Get("/{competitionID}/auctions", auctionHandler.ListByCompetitionHandler)

		// Защищенные маршруты только для организаторов
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", competitionHandler.CreateHandler)
			r.Put("/{competitionID}", competitionHandler.UpdateHandler)
			r.Patch("/{competitionID}/status", competitionHandler.UpdateStatusHandler)
			r.Post("/{competitionID}/logo", competitionHandler.UploadLogoHandler)
			r.Delete("/{competitionID}", competitionHandler.DeleteHandler)

			r.Post("/{competitionID}/players", playerHandler.CreateHandler)
			r.Post("/{competitionID}/trophies", trophyHandler.CreateHandler)
			r.Delete("/{competitionID}/trophies/{trophyID}", trophyHandler.DeleteHandler)
			r.Put("/{competitionID}/standings", competitionHandler.UpsertStandingHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}", playerHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Put("/{playerID}", playerHandler.UpdateHandler)
			r.Post("/{playerID}/photo", playerHandler.UploadPhotoHandler)
			r.Delete("/{playerID}", playerHandler.DeleteHandler)
		})
	})

	router.Route("/auctions", func(r chi.Router) {
		r.Get("/{auctionID}", auctionHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", auctionHandler.CreateHandler)
		})
	})

	// Аутентификация живых торгов происходит внутри соединения первым
	// кадром join-auction, а не через HTTP middleware.
	router.Get("/ws/auctions/{auctionID}", auctionWSHandler.ServeWs)
}
