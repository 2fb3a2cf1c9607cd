// Package lists owns custom movie lists, the watchlist and favorites.
// Membership records are unique per (user, movie) by convention here, not
// by the store: adds are lookup-then-write upserts that return the
// existing id, removes delete every match to clean up any accidental
// duplicates.
package lists

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmhub/internal/store"
	"filmhub/models"
	"filmhub/services/catalog"
)

const (
	colLists     = "movie_lists"
	colWatchlist = "watchlist"
	colFavorites = "favorites"

	// publicListCap bounds the public listing to the most recently
	// updated lists.
	publicListCap = 50
)

var (
	ErrListIDRequired = errors.New("list id is required")
	ErrUserIDRequired = errors.New("user id is required")
	ErrTitleRequired  = errors.New("list title is required")
	ErrNotListOwner   = errors.New("list belongs to another user")
)

type Service struct {
	store   *store.Store
	catalog *catalog.Client

	// Serializes membership upserts so concurrent adds for the same
	// (user, movie) pair cannot insert duplicates.
	memberMu sync.Mutex
}

func NewService(st *store.Store, cat *catalog.Client) *Service {
	return &Service{store: st, catalog: cat}
}

// CreateList persists a new list owned by list.UserID and returns its id.
func (s *Service) CreateList(ctx context.Context, list models.MovieList) (string, error) {
	if strings.TrimSpace(list.UserID) == "" {
		return "", ErrUserIDRequired
	}
	if strings.TrimSpace(list.Title) == "" {
		return "", ErrTitleRequired
	}

	list.ID = uuid.NewString()
	now := time.Now().UTC()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = now
	}
	if list.UpdatedAt.IsZero() {
		list.UpdatedAt = now
	}

	if err := s.store.Put(ctx, colLists, list.ID, list); err != nil {
		return "", err
	}
	return list.ID, nil
}

// UpdateList overwrites the list with a refreshed updatedAt. Only the
// owner may update an existing list.
func (s *Service) UpdateList(ctx context.Context, list models.MovieList) error {
	if strings.TrimSpace(list.ID) == "" {
		return ErrListIDRequired
	}

	var existing models.MovieList
	err := s.store.Get(ctx, colLists, list.ID, &existing)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err == nil && existing.UserID != list.UserID {
		return ErrNotListOwner
	}

	list.UpdatedAt = time.Now().UTC()
	return s.store.Put(ctx, colLists, list.ID, list)
}

// DeleteList removes the list. It carries no acting user: callers gate
// deletion on ownership.
func (s *Service) DeleteList(ctx context.Context, listID string) error {
	if strings.TrimSpace(listID) == "" {
		return ErrListIDRequired
	}
	return s.store.Delete(ctx, colLists, listID)
}

// AddMovieToList appends the movie to the list if not already present.
// Adding a movie that is already in the list, or adding to a list that
// does not exist, succeeds as a no-op.
func (s *Service) AddMovieToList(ctx context.Context, listID string, movieID int) error {
	var list models.MovieList
	err := s.store.Get(ctx, colLists, listID, &list)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if list.Contains(movieID) {
		return nil
	}

	list.MovieIDs = append(list.MovieIDs, movieID)
	list.UpdatedAt = time.Now().UTC()
	return s.store.Put(ctx, colLists, list.ID, list)
}

// RemoveMovieFromList drops the movie from the list; removing a movie that
// is not in the list still refreshes updatedAt, matching a full-document
// overwrite.
func (s *Service) RemoveMovieFromList(ctx context.Context, listID string, movieID int) error {
	var list models.MovieList
	err := s.store.Get(ctx, colLists, listID, &list)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	kept := make([]int, 0, len(list.MovieIDs))
	for _, id := range list.MovieIDs {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	list.MovieIDs = kept
	list.UpdatedAt = time.Now().UTC()
	return s.store.Put(ctx, colLists, list.ID, list)
}

// GetList returns a single list document.
func (s *Service) GetList(ctx context.Context, listID string) (models.MovieList, error) {
	var list models.MovieList
	err := s.store.Get(ctx, colLists, strings.TrimSpace(listID), &list)
	return list, err
}

// GetUserLists returns the user's lists, most recently updated first.
func (s *Service) GetUserLists(ctx context.Context, userID string) ([]models.MovieList, error) {
	var lists []models.MovieList
	if err := s.store.Find(ctx, colLists, map[string]any{"userId": userID}, &lists); err != nil {
		return nil, err
	}

	sortListsByUpdated(lists)
	return lists, nil
}

// GetPublicLists returns up to 50 public lists, most recently updated
// first.
func (s *Service) GetPublicLists(ctx context.Context) ([]models.MovieList, error) {
	var lists []models.MovieList
	if err := s.store.Find(ctx, colLists, map[string]any{"isPublic": true}, &lists); err != nil {
		return nil, err
	}

	sortListsByUpdated(lists)
	if len(lists) > publicListCap {
		lists = lists[:publicListCap]
	}
	return lists, nil
}

// AddToWatchlist is an idempotent upsert: re-adding an existing membership
// returns the existing record's id without inserting a duplicate.
func (s *Service) AddToWatchlist(ctx context.Context, userID string, movieID int) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUserIDRequired
	}

	s.memberMu.Lock()
	defer s.memberMu.Unlock()

	if id, found, err := s.findMembership(ctx, colWatchlist, userID, movieID); err != nil || found {
		return id, err
	}

	item := models.WatchlistItem{
		ID:      uuid.NewString(),
		UserID:  userID,
		MovieID: movieID,
		AddedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, colWatchlist, item.ID, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// RemoveFromWatchlist deletes every matching membership record; removing a
// movie that was never added succeeds as a no-op.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID string, movieID int) error {
	return s.removeMembership(ctx, colWatchlist, userID, movieID)
}

// GetWatchlist returns the user's movie ids, most recently added first.
func (s *Service) GetWatchlist(ctx context.Context, userID string) ([]int, error) {
	return s.membershipIDs(ctx, colWatchlist, userID)
}

// IsInWatchlist reports whether the membership exists.
func (s *Service) IsInWatchlist(ctx context.Context, userID string, movieID int) (bool, error) {
	return s.hasMembership(ctx, colWatchlist, userID, movieID)
}

// AddToFavorites mirrors AddToWatchlist for the favorites collection.
func (s *Service) AddToFavorites(ctx context.Context, userID string, movieID int) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUserIDRequired
	}

	s.memberMu.Lock()
	defer s.memberMu.Unlock()

	if id, found, err := s.findMembership(ctx, colFavorites, userID, movieID); err != nil || found {
		return id, err
	}

	item := models.FavoriteMovie{
		ID:      uuid.NewString(),
		UserID:  userID,
		MovieID: movieID,
		AddedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, colFavorites, item.ID, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

func (s *Service) RemoveFromFavorites(ctx context.Context, userID string, movieID int) error {
	return s.removeMembership(ctx, colFavorites, userID, movieID)
}

func (s *Service) GetFavorites(ctx context.Context, userID string) ([]int, error) {
	return s.membershipIDs(ctx, colFavorites, userID)
}

func (s *Service) IsInFavorites(ctx context.Context, userID string, movieID int) (bool, error) {
	return s.hasMembership(ctx, colFavorites, userID, movieID)
}

// GetUpcomingMovies is a catalog pass-through.
func (s *Service) GetUpcomingMovies(ctx context.Context, page int) (models.MoviePage, error) {
	return s.catalog.Upcoming(ctx, page)
}

// WatchlistListener pushes the re-sorted movie id list on every watchlist
// change.
func (s *Service) WatchlistListener(userID string) (<-chan []int, func()) {
	return store.Listen(s.store, colWatchlist, func() ([]int, bool) {
		ids, err := s.GetWatchlist(context.Background(), userID)
		if err != nil {
			return nil, false
		}
		return ids, true
	})
}

// FavoritesListener mirrors WatchlistListener for favorites.
func (s *Service) FavoritesListener(userID string) (<-chan []int, func()) {
	return store.Listen(s.store, colFavorites, func() ([]int, bool) {
		ids, err := s.GetFavorites(context.Background(), userID)
		if err != nil {
			return nil, false
		}
		return ids, true
	})
}

// UserListsListener pushes the user's lists on every list change.
func (s *Service) UserListsListener(userID string) (<-chan []models.MovieList, func()) {
	return store.Listen(s.store, colLists, func() ([]models.MovieList, bool) {
		lists, err := s.GetUserLists(context.Background(), userID)
		if err != nil {
			return nil, false
		}
		return lists, true
	})
}

// PublicListsListener pushes the capped public listing on every list
// change. A list whose isPublic flag is cleared drops out on the next
// event.
func (s *Service) PublicListsListener() (<-chan []models.MovieList, func()) {
	return store.Listen(s.store, colLists, func() ([]models.MovieList, bool) {
		lists, err := s.GetPublicLists(context.Background())
		if err != nil {
			return nil, false
		}
		return lists, true
	})
}

// membership is the shared decode shape of WatchlistItem and
// FavoriteMovie; the two collections store identical fields.
type membership struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	MovieID int       `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

func (s *Service) findMembership(ctx context.Context, collection, userID string, movieID int) (string, bool, error) {
	var existing []membership
	err := s.store.Find(ctx, collection, map[string]any{
		"userId":  userID,
		"movieId": movieID,
	}, &existing)
	if err != nil {
		return "", false, err
	}
	if len(existing) > 0 {
		return existing[0].ID, true, nil
	}
	return "", false, nil
}

func (s *Service) removeMembership(ctx context.Context, collection, userID string, movieID int) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}

	var matches []membership
	err := s.store.Find(ctx, collection, map[string]any{
		"userId":  userID,
		"movieId": movieID,
	}, &matches)
	if err != nil {
		return err
	}

	for _, m := range matches {
		if err := s.store.Delete(ctx, collection, m.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) membershipIDs(ctx context.Context, collection, userID string) ([]int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	var items []membership
	if err := s.store.Find(ctx, collection, map[string]any{"userId": userID}, &items); err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.MovieID
	}
	return ids, nil
}

func (s *Service) hasMembership(ctx context.Context, collection, userID string, movieID int) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUserIDRequired
	}

	var items []membership
	err := s.store.Find(ctx, collection, map[string]any{
		"userId":  userID,
		"movieId": movieID,
	}, &items)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func sortListsByUpdated(lists []models.MovieList) {
	sort.Slice(lists, func(i, j int) bool {
		if lists[i].UpdatedAt.Equal(lists[j].UpdatedAt) {
			return lists[i].ID < lists[j].ID
		}
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
}
