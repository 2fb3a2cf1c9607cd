package state

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"filmhub/models"
	"filmhub/services/lists"
	"filmhub/services/movies"
)

// ListsState is the lists/watchlist/favorites area's single state value.
type ListsState struct {
	IsLoading      bool
	UserLists      []models.MovieList
	PublicLists    []models.MovieList
	Watchlist      []models.Movie
	Favorites      []models.Movie
	Upcoming       []models.Movie
	SelectedList   *models.MovieList
	ListMovies     []models.Movie
	ErrorMessage   string
	SuccessMessage string
	IsInWatchlist  bool
	IsInFavorites  bool
}

// Lists drives custom lists, the watchlist and favorites for one user. Its
// four live subscriptions are independent; each re-resolves its full slice
// of state on every change event, with no incremental diffing.
type Lists struct {
	lists  *lists.Service
	movies *movies.Service
	userID string
	state  *Value[ListsState]

	mu    sync.Mutex
	stops []func()
	wg    conc.WaitGroup
}

func NewLists(listSvc *lists.Service, movieSvc *movies.Service, userID string) *Lists {
	return &Lists{lists: listSvc, movies: movieSvc, userID: userID, state: NewValue(ListsState{})}
}

func (l *Lists) State() *Value[ListsState] { return l.state }

// StartRealtime opens the four live subscriptions. Each id-list event
// triggers a full movie re-resolution; ids whose catalog fetch fails are
// skipped for that event.
func (l *Lists) StartRealtime(ctx context.Context) {
	watchlist, stopWatchlist := l.lists.WatchlistListener(l.userID)
	favorites, stopFavorites := l.lists.FavoritesListener(l.userID)
	userLists, stopUserLists := l.lists.UserListsListener(l.userID)
	publicLists, stopPublicLists := l.lists.PublicListsListener()

	l.mu.Lock()
	l.stops = append(l.stops, stopWatchlist, stopFavorites, stopUserLists, stopPublicLists)
	l.mu.Unlock()

	l.wg.Go(func() {
		for ids := range watchlist {
			resolved := l.resolveMovies(ctx, ids, false)
			l.state.Update(func(s ListsState) ListsState {
				s.Watchlist = resolved
				return s
			})
		}
	})
	l.wg.Go(func() {
		for ids := range favorites {
			resolved := l.resolveMovies(ctx, ids, false)
			l.state.Update(func(s ListsState) ListsState {
				s.Favorites = resolved
				return s
			})
		}
	})
	l.wg.Go(func() {
		for batch := range userLists {
			b := batch
			l.state.Update(func(s ListsState) ListsState {
				s.UserLists = b
				return s
			})
		}
	})
	l.wg.Go(func() {
		for batch := range publicLists {
			b := batch
			l.state.Update(func(s ListsState) ListsState {
				s.PublicLists = b
				return s
			})
		}
	})
}

// Close cancels every subscription exactly once and waits for the
// consumer goroutines to drain.
func (l *Lists) Close() {
	l.mu.Lock()
	stops := l.stops
	l.stops = nil
	l.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	l.wg.Wait()
}

// CreateList creates a list owned by the holder's user.
func (l *Lists) CreateList(ctx context.Context, title, description string, isPublic bool) {
	l.setLoading()

	list := models.MovieList{
		UserID:      l.userID,
		Title:       title,
		Description: description,
		IsPublic:    isPublic,
	}
	if _, err := l.lists.CreateList(ctx, list); err != nil {
		l.foldError(err)
		return
	}

	l.setSuccess("list created")
	l.LoadUserLists(ctx)
}

func (l *Lists) UpdateList(ctx context.Context, list models.MovieList) {
	l.setLoading()

	if err := l.lists.UpdateList(ctx, list); err != nil {
		l.foldError(err)
		return
	}

	l.setSuccess("list updated")
	l.LoadUserLists(ctx)
}

func (l *Lists) DeleteList(ctx context.Context, listID string) {
	if err := l.lists.DeleteList(ctx, listID); err != nil {
		l.setError(err)
		return
	}
	l.setSuccess("list deleted")
	l.LoadUserLists(ctx)
}

func (l *Lists) AddMovieToList(ctx context.Context, listID string, movieID int) {
	if err := l.lists.AddMovieToList(ctx, listID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.setSuccess("movie added to list")
	l.LoadUserLists(ctx)
}

func (l *Lists) RemoveMovieFromList(ctx context.Context, listID string, movieID int) {
	if err := l.lists.RemoveMovieFromList(ctx, listID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.setSuccess("movie removed from list")
	l.LoadListDetails(ctx, listID)
}

func (l *Lists) LoadUserLists(ctx context.Context) {
	l.setLoading()

	batch, err := l.lists.GetUserLists(ctx, l.userID)
	if err != nil {
		l.foldError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.UserLists = batch
		return s
	})
}

func (l *Lists) LoadPublicLists(ctx context.Context) {
	l.setLoading()

	batch, err := l.lists.GetPublicLists(ctx)
	if err != nil {
		l.foldError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.PublicLists = batch
		return s
	})
}

// LoadListDetails selects a list from the already-loaded user and public
// slices and resolves its movies. An unknown id leaves the selection
// unchanged.
func (l *Lists) LoadListDetails(ctx context.Context, listID string) {
	l.setLoading()

	snapshot := l.state.Get()
	all := append(append([]models.MovieList{}, snapshot.UserLists...), snapshot.PublicLists...)

	for i := range all {
		if all[i].ID != listID {
			continue
		}
		selected := all[i]
		resolved := l.resolveMovies(ctx, selected.MovieIDs, true)
		l.state.Update(func(s ListsState) ListsState {
			s.IsLoading = false
			s.SelectedList = &selected
			s.ListMovies = resolved
			return s
		})
		return
	}

	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		return s
	})
}

func (l *Lists) AddToWatchlist(ctx context.Context, movieID int) {
	if _, err := l.lists.AddToWatchlist(ctx, l.userID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.SuccessMessage = "added to watchlist"
		s.IsInWatchlist = true
		return s
	})
	l.LoadWatchlist(ctx)
}

func (l *Lists) RemoveFromWatchlist(ctx context.Context, movieID int) {
	if err := l.lists.RemoveFromWatchlist(ctx, l.userID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.SuccessMessage = "removed from watchlist"
		s.IsInWatchlist = false
		return s
	})
	l.LoadWatchlist(ctx)
}

// LoadWatchlist resolves the user's watchlist ids into full movie records;
// an id whose catalog fetch fails becomes a bare placeholder record.
func (l *Lists) LoadWatchlist(ctx context.Context) {
	l.setLoading()

	ids, err := l.lists.GetWatchlist(ctx, l.userID)
	if err != nil {
		l.foldError(err)
		return
	}

	resolved := l.resolveMovies(ctx, ids, true)
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.Watchlist = resolved
		return s
	})
}

func (l *Lists) AddToFavorites(ctx context.Context, movieID int) {
	if _, err := l.lists.AddToFavorites(ctx, l.userID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.SuccessMessage = "added to favorites"
		s.IsInFavorites = true
		return s
	})
	l.LoadFavorites(ctx)
}

func (l *Lists) RemoveFromFavorites(ctx context.Context, movieID int) {
	if err := l.lists.RemoveFromFavorites(ctx, l.userID, movieID); err != nil {
		l.setError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.SuccessMessage = "removed from favorites"
		s.IsInFavorites = false
		return s
	})
	l.LoadFavorites(ctx)
}

func (l *Lists) LoadFavorites(ctx context.Context) {
	l.setLoading()

	ids, err := l.lists.GetFavorites(ctx, l.userID)
	if err != nil {
		l.foldError(err)
		return
	}

	resolved := l.resolveMovies(ctx, ids, true)
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.Favorites = resolved
		return s
	})
}

func (l *Lists) LoadUpcoming(ctx context.Context) {
	l.setLoading()

	page, err := l.lists.GetUpcomingMovies(ctx, 1)
	if err != nil {
		l.foldError(err)
		return
	}
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.Upcoming = page.Results
		return s
	})
}

// CheckMovieStatus refreshes the watchlist/favorites membership flags for
// the movie; a failed check reads as not-a-member.
func (l *Lists) CheckMovieStatus(ctx context.Context, movieID int) {
	inWatchlist, _ := l.lists.IsInWatchlist(ctx, l.userID, movieID)
	inFavorites, _ := l.lists.IsInFavorites(ctx, l.userID, movieID)

	l.state.Update(func(s ListsState) ListsState {
		s.IsInWatchlist = inWatchlist
		s.IsInFavorites = inFavorites
		return s
	})
}

// ResetMessages clears the transient notification fields.
func (l *Lists) ResetMessages() {
	l.state.Update(func(s ListsState) ListsState {
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		return s
	})
}

// resolveMovies fetches full catalog records for the ids, preserving
// order. With placeholders enabled a failed fetch yields a record carrying
// only the id; otherwise failed ids are skipped.
func (l *Lists) resolveMovies(ctx context.Context, ids []int, placeholders bool) []models.Movie {
	resolved := make([]models.Movie, 0, len(ids))
	for _, id := range ids {
		movie, err := l.movies.GetMovie(ctx, id)
		if err != nil {
			if placeholders {
				resolved = append(resolved, models.Movie{ID: id, Title: "Untitled"})
			}
			continue
		}
		resolved = append(resolved, movie)
	}
	return resolved
}

func (l *Lists) setLoading() {
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = true
		return s
	})
}

func (l *Lists) foldError(err error) {
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.ErrorMessage = err.Error()
		return s
	})
}

func (l *Lists) setError(err error) {
	l.state.Update(func(s ListsState) ListsState {
		s.ErrorMessage = err.Error()
		return s
	})
}

func (l *Lists) setSuccess(msg string) {
	l.state.Update(func(s ListsState) ListsState {
		s.IsLoading = false
		s.SuccessMessage = msg
		return s
	})
}
