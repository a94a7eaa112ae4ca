package routes

import (
	"net/http"

	"icarus-bknd/internal/auth"
	"icarus-bknd/internal/config"
	"icarus-bknd/internal/handlers"
	"icarus-bknd/internal/logger"
	"icarus-bknd/internal/maps"
	mdlwr "icarus-bknd/internal/middleware"
	"icarus-bknd/internal/search"
	"icarus-bknd/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

func NewRouter(db *bun.DB, rdb *redis.Client, jwtMgr *auth.JWTManager, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mdlwr.RequestLogger(logr.Component("http")))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := services.NewAuthService(db, jwtMgr, services.NewRedisRevocationStore(rdb), cfg, logr.Component("auth"))
	profileSvc := services.NewProfileService(db, logr.Component("profile"))
	catalogSvc := services.NewCatalogService(db)

	// without an api key results are served without travel distances
	var matrix search.DistanceMatrix
	if cfg.GoogleMapsAPIKey != "" {
		matrix = maps.NewDistanceMatrixClient(cfg.GoogleMapsAPIKey, cfg.DistanceMatrixURL, nil)
	}
	annotator := search.NewAnnotator(matrix, cfg.DistanceMatrixTimeout, logr.Component("distance_matrix"))
	searchSvc := search.NewService(search.NewPGStore(db), annotator, logr.Component("search"))

	authMW := mdlwr.NewAuthMiddleware(authSvc, logr.Component("auth_middleware"))

	authHandler := handlers.NewAuthHandler(authSvc, logr.Component("auth"), cfg)
	profileHandler := handlers.NewProfileHandler(profileSvc, logr.Component("profile"))
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, logr.Component("catalog"))
	searchHandler := handlers.NewSearchHandler(searchSvc, logr.Component("search"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/refresh", authHandler.Refresh)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMW.JWTAuth)

		r.Post("/logout", authHandler.Logout)
		r.Get("/verifyAuth", authHandler.VerifyAuth)
		r.Get("/loggedInAs", authHandler.LoggedInAs)

		r.Get("/specialties", catalogHandler.Specialties)
		r.Get("/languages", catalogHandler.Languages)
		r.Get("/designations", catalogHandler.Designations)

		Mount(r, profileHandler, searchHandler)
	})

	return r
}

// Mount registers the /users routes on r.
func Mount(r chi.Router, profiles *handlers.ProfileHandler, searches *handlers.SearchHandler) {
	r.Get("/users/{userUUID}/profile", profiles.GetProfile)
	r.Put("/users/{userUUID}/profile", profiles.UpdateProfile)
	r.Delete("/users/{userUUID}/profile", profiles.DeleteProfile)
	r.Get("/users/{userUUID}/user_type", profiles.GetUserType)
	r.Put("/users/{userUUID}/user_type", profiles.SetUserType)

	r.Get("/users/{specialtyID}&{radius}&{page}&{sortBy}", searches.Search)
}
