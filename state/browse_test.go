package state

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmhub/models"
)

// browseFake answers the browse endpoints with distinguishable result
// sets so the tests can tell which listing landed in state.
func browseFake() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/popular":
			json.NewEncoder(w).Encode(models.MoviePage{
				Results: []models.Movie{{ID: 1, Title: "Popular Pick"}},
			})
		case "/movie/top_rated":
			json.NewEncoder(w).Encode(models.MoviePage{
				Results: []models.Movie{{ID: 2, Title: "Top Pick"}},
			})
		case "/search/movie":
			json.NewEncoder(w).Encode(models.MoviePage{
				Results: []models.Movie{{ID: 3, Title: "Search Hit: " + r.URL.Query().Get("query")}},
			})
		case "/discover/movie":
			json.NewEncoder(w).Encode(models.MoviePage{
				Results: []models.Movie{{ID: 4, Title: "Discovered"}},
			})
		case "/genre/movie/list":
			json.NewEncoder(w).Encode(map[string]any{
				"genres": []models.Genre{{ID: 28, Name: "Action"}},
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func TestBrowseLoadPopular(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, browseFake()))
	holder.LoadPopular(context.Background())

	s := holder.State().Get()
	require.Len(t, s.Movies, 1)
	assert.Equal(t, "Popular Pick", s.Movies[0].Title)
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.ErrorMessage)
}

func TestBrowseSearchBlankFallsBackToPopular(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, browseFake()))
	holder.Search(context.Background(), "   ")

	s := holder.State().Get()
	require.Len(t, s.Movies, 1)
	assert.Equal(t, "Popular Pick", s.Movies[0].Title)
}

func TestBrowseSearchSetsQueryAndResults(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, browseFake()))
	holder.Search(context.Background(), "heat")

	s := holder.State().Get()
	assert.Equal(t, "heat", s.SearchQuery)
	require.Len(t, s.Movies, 1)
	assert.Equal(t, "Search Hit: heat", s.Movies[0].Title)
}

func TestBrowseFilterAndClear(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, browseFake()))
	ctx := context.Background()

	holder.Filter(ctx, 1995, []int{28})

	s := holder.State().Get()
	assert.Equal(t, 1995, s.SelectedYear)
	assert.Equal(t, []int{28}, s.SelectedGenres)
	require.Len(t, s.Movies, 1)
	assert.Equal(t, "Discovered", s.Movies[0].Title)

	holder.ClearFilters(ctx)

	s = holder.State().Get()
	assert.Zero(t, s.SelectedYear)
	assert.Nil(t, s.SelectedGenres)
	assert.Equal(t, "Popular Pick", s.Movies[0].Title)
}

func TestBrowseLoadGenresFailureIsSilent(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	holder.LoadGenres(context.Background())

	s := holder.State().Get()
	assert.Nil(t, s.Genres)
	assert.Empty(t, s.ErrorMessage)
}

func TestBrowseCatalogErrorSurfaces(t *testing.T) {
	holder := NewMovieBrowse(newMovieService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusInternalServerError)
	}))
	holder.LoadPopular(context.Background())

	s := holder.State().Get()
	assert.NotEmpty(t, s.ErrorMessage)
	assert.False(t, s.IsLoading)
}
