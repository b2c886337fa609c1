package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinehub/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	contentHandler *handlers.ContentHandler,
	watchProgressHandler *handlers.WatchProgressHandler,
	userHandler *handlers.UserHandler,
	habitHandler *handlers.HabitHandler,
	catalogHandler *handlers.CatalogHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Watch progress
	api.HandleFunc("/watch-progress", watchProgressHandler.Record).Methods(http.MethodPost)
	api.HandleFunc("/watch-progress/reset", watchProgressHandler.Reset).Methods(http.MethodPost)
	api.HandleFunc("/watch-progress/reset-series", watchProgressHandler.ResetSeries).Methods(http.MethodPost)
	api.HandleFunc("/watch-progress/like", watchProgressHandler.Like).Methods(http.MethodPost)
	api.HandleFunc("/watch-progress/track-watch", watchProgressHandler.TrackWatch).Methods(http.MethodPost)
	api.HandleFunc("/watch-progress/{profileID}/continue-watching", watchProgressHandler.ContinueWatching).Methods(http.MethodGet)
	api.HandleFunc("/watch-progress/{profileID}/{contentID}", watchProgressHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/watch-progress/{profileID}/{contentID}", watchProgressHandler.Update).Methods(http.MethodPut)

	// Content catalog. The fixed shelf paths register before the
	// {contentID} routes so mux never treats them as ids.
	api.HandleFunc("/content", contentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/content", contentHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/content/mark-watched", watchProgressHandler.MarkWatched).Methods(http.MethodPut)
	api.HandleFunc("/content/popular", contentHandler.MostPopular).Methods(http.MethodGet)
	api.HandleFunc("/content/newest-movies", contentHandler.NewestMovies).Methods(http.MethodGet)
	api.HandleFunc("/content/newest-series", contentHandler.NewestSeries).Methods(http.MethodGet)
	api.HandleFunc("/content/genre/{genre}", contentHandler.ByGenre).Methods(http.MethodGet)
	api.HandleFunc("/content/{contentID}", contentHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/content/{contentID}", contentHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/content/{contentID}", contentHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/content/{contentID}/episodes", contentHandler.Episodes).Methods(http.MethodGet)
	api.HandleFunc("/content/{contentID}/similar", contentHandler.Similar).Methods(http.MethodGet)
	api.HandleFunc("/content/{contentID}/ratings", contentHandler.ExternalRatings).Methods(http.MethodGet)

	// Accounts and viewing profiles
	api.HandleFunc("/users/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/users/statistics", userHandler.Statistics).Methods(http.MethodGet)
	api.HandleFunc("/users/profiles", userHandler.CreateProfile).Methods(http.MethodPost)
	api.HandleFunc("/users/profiles/{profileID}", userHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/profiles/{profileID}", userHandler.RenameProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/profiles/{profileID}", userHandler.DeleteProfile).Methods(http.MethodDelete)
	api.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}", userHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}", userHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/profiles", userHandler.ListProfiles).Methods(http.MethodGet)

	// Viewing habits
	api.HandleFunc("/profiles/{profileID}/habits", habitHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/habits", habitHandler.Upsert).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{profileID}/habits/{contentID}", habitHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/habits/{contentID}", habitHandler.Delete).Methods(http.MethodDelete)

	// Catalogs
	api.HandleFunc("/profiles/{profileID}/catalogs", catalogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/catalogs", catalogHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{profileID}/catalogs/{catalogID}", catalogHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{profileID}/catalogs/{catalogID}", catalogHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}/catalogs/{catalogID}", catalogHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{profileID}/catalogs/{catalogID}/content", catalogHandler.AddContent).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{profileID}/catalogs/{catalogID}/content/{contentID}", catalogHandler.RemoveContent).Methods(http.MethodDelete)
}
