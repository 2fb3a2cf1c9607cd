package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"filmhub/internal/store"
	"filmhub/models"
	"filmhub/services/lists"
)

type listsService interface {
	CreateList(ctx context.Context, list models.MovieList) (string, error)
	UpdateList(ctx context.Context, list models.MovieList) error
	DeleteList(ctx context.Context, listID string) error
	AddMovieToList(ctx context.Context, listID string, movieID int) error
	RemoveMovieFromList(ctx context.Context, listID string, movieID int) error
	GetList(ctx context.Context, listID string) (models.MovieList, error)
	GetUserLists(ctx context.Context, userID string) ([]models.MovieList, error)
	GetPublicLists(ctx context.Context) ([]models.MovieList, error)
	AddToWatchlist(ctx context.Context, userID string, movieID int) (string, error)
	RemoveFromWatchlist(ctx context.Context, userID string, movieID int) error
	GetWatchlist(ctx context.Context, userID string) ([]int, error)
	IsInWatchlist(ctx context.Context, userID string, movieID int) (bool, error)
	AddToFavorites(ctx context.Context, userID string, movieID int) (string, error)
	RemoveFromFavorites(ctx context.Context, userID string, movieID int) error
	GetFavorites(ctx context.Context, userID string) ([]int, error)
	IsInFavorites(ctx context.Context, userID string, movieID int) (bool, error)
	GetUpcomingMovies(ctx context.Context, page int) (models.MoviePage, error)
}

var _ listsService = (*lists.Service)(nil)

type ListsHandler struct {
	Service listsService
}

func NewListsHandler(service listsService) *ListsHandler {
	return &ListsHandler{Service: service}
}

func listIDVar(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["listID"])
}

func userIDQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("userId"))
}

func (h *ListsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var list models.MovieList
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&list); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Service.CreateList(r.Context(), list)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, lists.ErrUserIDRequired), errors.Is(err, lists.ErrTitleRequired):
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *ListsHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID := listIDVar(r)
	if listID == "" {
		http.Error(w, "list id is required", http.StatusBadRequest)
		return
	}

	var list models.MovieList
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&list); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list.ID = listID

	if err := h.Service.UpdateList(r.Context(), list); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lists.ErrNotListOwner) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID := listIDVar(r)
	if listID == "" {
		http.Error(w, "list id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteList(r.Context(), listID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) Get(w http.ResponseWriter, r *http.Request) {
	listID := listIDVar(r)
	if listID == "" {
		http.Error(w, "list id is required", http.StatusBadRequest)
		return
	}

	list, err := h.Service.GetList(r.Context(), listID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *ListsHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	listID := listIDVar(r)
	if listID == "" {
		http.Error(w, "list id is required", http.StatusBadRequest)
		return
	}

	var body struct {
		MovieID int `json:"movieId"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.AddMovieToList(r.Context(), listID, body.MovieID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	listID := listIDVar(r)
	movieID, err := strconv.Atoi(mux.Vars(r)["movieID"])
	if listID == "" || err != nil {
		http.Error(w, "list id and movie id are required", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveMovieFromList(r.Context(), listID, movieID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) UserLists(w http.ResponseWriter, r *http.Request) {
	userID := userIDQuery(r)
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	batch, err := h.Service.GetUserLists(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}

func (h *ListsHandler) PublicLists(w http.ResponseWriter, r *http.Request) {
	batch, err := h.Service.GetPublicLists(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(batch)
}

type membershipRequest struct {
	UserID  string `json:"userId"`
	MovieID int    `json:"movieId"`
}

func (h *ListsHandler) membershipAdd(w http.ResponseWriter, r *http.Request, add func(context.Context, string, int) (string, error)) {
	var body membershipRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := add(r.Context(), body.UserID, body.MovieID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lists.ErrUserIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *ListsHandler) membershipRemove(w http.ResponseWriter, r *http.Request, remove func(context.Context, string, int) error) {
	userID := userIDQuery(r)
	movieID, err := strconv.Atoi(mux.Vars(r)["movieID"])
	if userID == "" || err != nil {
		http.Error(w, "userId and movie id are required", http.StatusBadRequest)
		return
	}

	if err := remove(r.Context(), userID, movieID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) membershipIDs(w http.ResponseWriter, r *http.Request, get func(context.Context, string) ([]int, error)) {
	userID := userIDQuery(r)
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	ids, err := get(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []int{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ids)
}

func (h *ListsHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	h.membershipAdd(w, r, h.Service.AddToWatchlist)
}

func (h *ListsHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	h.membershipRemove(w, r, h.Service.RemoveFromWatchlist)
}

func (h *ListsHandler) Watchlist(w http.ResponseWriter, r *http.Request) {
	h.membershipIDs(w, r, h.Service.GetWatchlist)
}

func (h *ListsHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	h.membershipAdd(w, r, h.Service.AddToFavorites)
}

func (h *ListsHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	h.membershipRemove(w, r, h.Service.RemoveFromFavorites)
}

func (h *ListsHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	h.membershipIDs(w, r, h.Service.GetFavorites)
}

// MovieStatus reports watchlist and favorites membership for one movie.
func (h *ListsHandler) MovieStatus(w http.ResponseWriter, r *http.Request) {
	userID := userIDQuery(r)
	movieID, err := strconv.Atoi(mux.Vars(r)["movieID"])
	if userID == "" || err != nil {
		http.Error(w, "userId and movie id are required", http.StatusBadRequest)
		return
	}

	inWatchlist, err := h.Service.IsInWatchlist(r.Context(), userID, movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	inFavorites, err := h.Service.IsInFavorites(r.Context(), userID, movieID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"inWatchlist": inWatchlist,
		"inFavorites": inFavorites,
	})
}

func (h *ListsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.GetUpcomingMovies(r.Context(), pageParam(r))
	if err != nil {
		http.Error(w, err.Error(), catalogStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}
