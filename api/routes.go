package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"filmhub/handlers"
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
	authHandler *handlers.AuthHandler,
	moviesHandler *handlers.MoviesHandler,
	listsHandler *handlers.ListsHandler,
	adminHandler *handlers.AdminHandler,
	streamHandler *handlers.StreamHandler,
	uploadsDir string,
	uploadsPrefix string,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth and profile
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/password-reset", authHandler.PasswordReset).Methods(http.MethodPost)
	api.HandleFunc("/users/{uid}", authHandler.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{uid}/display-name", authHandler.UpdateDisplayName).Methods(http.MethodPut)
	api.HandleFunc("/users/{uid}/password", authHandler.UpdatePassword).Methods(http.MethodPut)
	api.HandleFunc("/users/{uid}/photo", authHandler.UploadPhoto).Methods(http.MethodPost)

	// Catalog browsing
	api.HandleFunc("/movies/popular", moviesHandler.Popular).Methods(http.MethodGet)
	api.HandleFunc("/movies/top-rated", moviesHandler.TopRated).Methods(http.MethodGet)
	api.HandleFunc("/movies/now-playing", moviesHandler.NowPlaying).Methods(http.MethodGet)
	api.HandleFunc("/movies/upcoming", listsHandler.Upcoming).Methods(http.MethodGet)
	api.HandleFunc("/movies/search", moviesHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/movies/discover", moviesHandler.Discover).Methods(http.MethodGet)
	api.HandleFunc("/movies/genres", moviesHandler.Genres).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID:[0-9]+}", moviesHandler.Detail).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID:[0-9]+}/trailers", moviesHandler.Trailers).Methods(http.MethodGet)

	// Reviews, ratings, stats
	api.HandleFunc("/movies/{movieID:[0-9]+}/reviews", moviesHandler.Reviews).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID:[0-9]+}/reviews", moviesHandler.CreateReview).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{reviewID}", moviesHandler.UpdateReview).Methods(http.MethodPut)
	api.HandleFunc("/reviews/{reviewID}", moviesHandler.DeleteReview).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{movieID:[0-9]+}/rating", moviesHandler.Rate).Methods(http.MethodPost)
	api.HandleFunc("/movies/{movieID:[0-9]+}/rating", moviesHandler.UserRating).Methods(http.MethodGet)
	api.HandleFunc("/movies/{movieID:[0-9]+}/stats", moviesHandler.Stats).Methods(http.MethodGet)

	// Custom lists
	api.HandleFunc("/lists", listsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/lists/public", listsHandler.PublicLists).Methods(http.MethodGet)
	api.HandleFunc("/lists/mine", listsHandler.UserLists).Methods(http.MethodGet)
	api.HandleFunc("/lists/{listID}", listsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/lists/{listID}", listsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/lists/{listID}", listsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/lists/{listID}/movies", listsHandler.AddMovie).Methods(http.MethodPost)
	api.HandleFunc("/lists/{listID}/movies/{movieID:[0-9]+}", listsHandler.RemoveMovie).Methods(http.MethodDelete)

	// Watchlist and favorites
	api.HandleFunc("/watchlist", listsHandler.Watchlist).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", listsHandler.AddToWatchlist).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/{movieID:[0-9]+}", listsHandler.RemoveFromWatchlist).Methods(http.MethodDelete)
	api.HandleFunc("/favorites", listsHandler.Favorites).Methods(http.MethodGet)
	api.HandleFunc("/favorites", listsHandler.AddToFavorites).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{movieID:[0-9]+}", listsHandler.RemoveFromFavorites).Methods(http.MethodDelete)
	api.HandleFunc("/movies/{movieID:[0-9]+}/membership", listsHandler.MovieStatus).Methods(http.MethodGet)

	// Realtime
	api.HandleFunc("/stream/lists", streamHandler.ListsStream).Methods(http.MethodGet)

	// Moderation and support
	api.HandleFunc("/admin/users", adminHandler.Users).Methods(http.MethodGet)
	api.HandleFunc("/admin/users/{userID}/role", adminHandler.SetRole).Methods(http.MethodPut)
	api.HandleFunc("/admin/users/{userID}/deactivate", adminHandler.Deactivate).Methods(http.MethodPost)
	api.HandleFunc("/admin/users/{userID}/reactivate", adminHandler.Reactivate).Methods(http.MethodPost)
	api.HandleFunc("/admin/reports", adminHandler.Reports).Methods(http.MethodGet)
	api.HandleFunc("/admin/reports/{reportID}/approve", adminHandler.ApproveReport).Methods(http.MethodPost)
	api.HandleFunc("/admin/reports/{reportID}/reject", adminHandler.RejectReport).Methods(http.MethodPost)
	api.HandleFunc("/admin/reviews/{reviewID}", adminHandler.DeleteReview).Methods(http.MethodDelete)
	api.HandleFunc("/admin/tickets", adminHandler.AllTickets).Methods(http.MethodGet)
	api.HandleFunc("/admin/faqs", adminHandler.CreateFAQ).Methods(http.MethodPost)
	api.HandleFunc("/reports", adminHandler.CreateReport).Methods(http.MethodPost)
	api.HandleFunc("/support/tickets", adminHandler.CreateTicket).Methods(http.MethodPost)
	api.HandleFunc("/support/tickets", adminHandler.UserTickets).Methods(http.MethodGet).Queries("userId", "{userId}")
	api.HandleFunc("/support/faqs", adminHandler.FAQs).Methods(http.MethodGet)

	// Uploaded profile photos
	if uploadsDir != "" && uploadsPrefix != "" {
		r.PathPrefix(uploadsPrefix + "/").Handler(
			http.StripPrefix(uploadsPrefix+"/", http.FileServer(http.Dir(uploadsDir))))
	}
}
