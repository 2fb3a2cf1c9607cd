package state

import (
	"context"
	"strings"

	"filmhub/models"
	"filmhub/services/movies"
)

// BrowseState is the movie browsing screen's single state value.
type BrowseState struct {
	IsLoading      bool
	Movies         []models.Movie
	Genres         []models.Genre
	ErrorMessage   string
	SearchQuery    string
	SelectedYear   int
	SelectedGenres []int
}

// MovieBrowse drives the browse screen: popular/top-rated listings,
// search, and year/genre filtering.
type MovieBrowse struct {
	movies *movies.Service
	state  *Value[BrowseState]
}

func NewMovieBrowse(svc *movies.Service) *MovieBrowse {
	return &MovieBrowse{movies: svc, state: NewValue(BrowseState{})}
}

func (b *MovieBrowse) State() *Value[BrowseState] { return b.state }

func (b *MovieBrowse) LoadPopular(ctx context.Context) {
	b.loadPage(func() (models.MoviePage, error) {
		return b.movies.GetPopular(ctx, 1)
	})
}

func (b *MovieBrowse) LoadTopRated(ctx context.Context) {
	b.loadPage(func() (models.MoviePage, error) {
		return b.movies.GetTopRated(ctx, 1)
	})
}

// Search runs a title search; a blank query falls back to the popular
// listing.
func (b *MovieBrowse) Search(ctx context.Context, query string) {
	b.state.Update(func(s BrowseState) BrowseState {
		s.IsLoading = true
		s.SearchQuery = query
		return s
	})

	if strings.TrimSpace(query) == "" {
		b.LoadPopular(ctx)
		return
	}

	page, err := b.movies.Search(ctx, query, 1)
	b.fold(page, err)
}

// Filter applies a year and/or genre filter via discovery.
func (b *MovieBrowse) Filter(ctx context.Context, year int, genreIDs []int) {
	b.state.Update(func(s BrowseState) BrowseState {
		s.IsLoading = true
		s.SelectedYear = year
		s.SelectedGenres = genreIDs
		return s
	})

	page, err := b.movies.Discover(ctx, year, genreIDs, 1)
	b.fold(page, err)
}

// ClearFilters resets query and filters and reloads the popular listing.
func (b *MovieBrowse) ClearFilters(ctx context.Context) {
	b.state.Update(func(s BrowseState) BrowseState {
		s.SearchQuery = ""
		s.SelectedYear = 0
		s.SelectedGenres = nil
		return s
	})
	b.LoadPopular(ctx)
}

// LoadGenres fills the genre catalog; a failure leaves the current genres
// untouched and does not surface an error.
func (b *MovieBrowse) LoadGenres(ctx context.Context) {
	genres, err := b.movies.GetGenres(ctx)
	if err != nil {
		return
	}
	b.state.Update(func(s BrowseState) BrowseState {
		s.Genres = genres
		return s
	})
}

func (b *MovieBrowse) loadPage(fetch func() (models.MoviePage, error)) {
	b.state.Update(func(s BrowseState) BrowseState {
		s.IsLoading = true
		return s
	})

	page, err := fetch()
	b.fold(page, err)
}

func (b *MovieBrowse) fold(page models.MoviePage, err error) {
	b.state.Update(func(s BrowseState) BrowseState {
		s.IsLoading = false
		if err != nil {
			s.ErrorMessage = err.Error()
			return s
		}
		s.Movies = page.Results
		s.ErrorMessage = ""
		return s
	})
}
