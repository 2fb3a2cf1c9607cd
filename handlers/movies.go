package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"filmhub/models"
	"filmhub/services/catalog"
	"filmhub/services/movies"
)

type moviesService interface {
	GetPopular(ctx context.Context, page int) (models.MoviePage, error)
	GetTopRated(ctx context.Context, page int) (models.MoviePage, error)
	GetNowPlaying(ctx context.Context, page int) (models.MoviePage, error)
	Search(ctx context.Context, query string, page int) (models.MoviePage, error)
	Discover(ctx context.Context, year int, genreIDs []int, page int) (models.MoviePage, error)
	GetGenres(ctx context.Context) ([]models.Genre, error)
	GetMovie(ctx context.Context, movieID int) (models.Movie, error)
	GetMovieTrailers(ctx context.Context, movieID int) ([]models.VideoTrailer, error)
	CreateReview(ctx context.Context, review models.Review) (string, error)
	UpdateReview(ctx context.Context, review models.Review) error
	DeleteReview(ctx context.Context, reviewID string, movieID int) error
	GetMovieReviews(ctx context.Context, movieID int) ([]models.Review, error)
	RateMovie(ctx context.Context, rating models.Rating) (string, error)
	GetMovieStats(ctx context.Context, movieID int) (models.MovieStats, error)
	GetUserRating(ctx context.Context, movieID int, userID string) (*models.Rating, error)
}

var _ moviesService = (*movies.Service)(nil)

type MoviesHandler struct {
	Service moviesService
}

func NewMoviesHandler(service moviesService) *MoviesHandler {
	return &MoviesHandler{Service: service}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func movieIDVar(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["movieID"])
	return id, err == nil && id > 0
}

func catalogStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *MoviesHandler) Popular(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.Service.GetPopular)
}

func (h *MoviesHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.Service.GetTopRated)
}

func (h *MoviesHandler) NowPlaying(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, h.Service.GetNowPlaying)
}

func (h *MoviesHandler) page(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int) (models.MoviePage, error)) {
	page, err := fetch(r.Context(), pageParam(r))
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func (h *MoviesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	page, err := h.Service.Search(r.Context(), query, pageParam(r))
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// Discover filters by optional year and comma-separated genre ids.
func (h *MoviesHandler) Discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))

	var genreIDs []int
	if raw := strings.TrimSpace(q.Get("genres")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				http.Error(w, "invalid genre id: "+part, http.StatusBadRequest)
				return
			}
			genreIDs = append(genreIDs, id)
		}
	}

	page, err := h.Service.Discover(r.Context(), year, genreIDs, pageParam(r))
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func (h *MoviesHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Service.GetGenres(r.Context())
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(genres)
}

func (h *MoviesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	movie, err := h.Service.GetMovie(r.Context(), movieID)
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(movie)
}

func (h *MoviesHandler) Trailers(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	trailers, err := h.Service.GetMovieTrailers(r.Context(), movieID)
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trailers)
}

func (h *MoviesHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	reviews, err := h.Service.GetMovieReviews(r.Context(), movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

func (h *MoviesHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	var review models.Review
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&review); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	review.MovieID = movieID

	id, err := h.Service.CreateReview(r.Context(), review)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *MoviesHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := strings.TrimSpace(mux.Vars(r)["reviewID"])
	if reviewID == "" {
		http.Error(w, "review id is required", http.StatusBadRequest)
		return
	}

	var review models.Review
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&review); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	review.ID = reviewID

	if err := h.Service.UpdateReview(r.Context(), review); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, movies.ErrReviewIDRequired):
			status = http.StatusBadRequest
		case errors.Is(err, movies.ErrNotReviewOwner):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MoviesHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := strings.TrimSpace(mux.Vars(r)["reviewID"])
	if reviewID == "" {
		http.Error(w, "review id is required", http.StatusBadRequest)
		return
	}
	movieID, _ := strconv.Atoi(r.URL.Query().Get("movieId"))

	if err := h.Service.DeleteReview(r.Context(), reviewID, movieID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MoviesHandler) Rate(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	var rating models.Rating
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rating); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rating.MovieID = movieID

	id, err := h.Service.RateMovie(r.Context(), rating)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *MoviesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}

	stats, err := h.Service.GetMovieStats(r.Context(), movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// UserRating returns the caller's rating for the movie, or null when none
// exists.
func (h *MoviesHandler) UserRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(r)
	if !ok {
		http.Error(w, "movie id is required", http.StatusBadRequest)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	rating, err := h.Service.GetUserRating(r.Context(), movieID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rating)
}
