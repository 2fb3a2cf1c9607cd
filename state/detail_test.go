package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmhub/internal/store"
	"filmhub/internal/tasks"
	"filmhub/models"
	"filmhub/services/catalog"
	"filmhub/services/movies"
)

// catalogFake answers the detail and videos endpoints for a single movie
// and 404s everything else.
func catalogFake(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			json.NewEncoder(w).Encode(map[string]any{
				"results": []models.VideoTrailer{
					{Key: "trailer-key", Site: "YouTube", Type: "Trailer"},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/movie/550"):
			json.NewEncoder(w).Encode(models.Movie{ID: 550, Title: "Fight Club"})
		default:
			http.NotFound(w, r)
		}
	}
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(catalogFake(t))
	t.Cleanup(srv.Close)
	return srv
}

func newMovieService(t *testing.T, handler http.HandlerFunc) *movies.Service {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "detail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	runner := tasks.NewRunner(32)
	t.Cleanup(runner.Close)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return movies.NewService(catalog.NewClient("test-key", "en", srv.URL, srv.Client()), st, runner)
}

func TestLoadMovieMergesAllSlices(t *testing.T) {
	svc := newMovieService(t, catalogFake(t))
	ctx := context.Background()

	_, err := svc.RateMovie(ctx, models.Rating{MovieID: 550, UserID: "u1", Rating: 4})
	require.NoError(t, err)

	holder := NewMovieDetail(svc)
	holder.LoadMovie(ctx, 550, "u1")

	s := holder.State().Get()
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.Movie)
	assert.Equal(t, "Fight Club", s.Movie.Title)
	require.NotNil(t, s.Stats)
	assert.Equal(t, 1, s.Stats.TotalRatings)
	require.NotNil(t, s.UserRating)
	assert.Equal(t, 4.0, s.UserRating.Rating)
	require.Len(t, s.Trailers, 1)
	assert.Equal(t, "trailer-key", s.Trailers[0].Key)
}

func TestLoadMovieToleratesCatalogFailure(t *testing.T) {
	svc := newMovieService(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	holder := NewMovieDetail(svc)
	holder.LoadMovie(context.Background(), 999, "")

	// The failed sub-fetches leave their slices untouched; the load itself
	// still completes.
	s := holder.State().Get()
	assert.False(t, s.IsLoading)
	assert.Nil(t, s.Movie)
	assert.Empty(t, s.ErrorMessage)
}

func TestRateMovieConfirmsAndRefreshesStats(t *testing.T) {
	svc := newMovieService(t, catalogFake(t))
	holder := NewMovieDetail(svc)

	holder.RateMovie(context.Background(), 550, "u1", 5)

	s := holder.State().Get()
	assert.Equal(t, "rating saved", s.SuccessMessage)
	require.NotNil(t, s.UserRating)
	assert.NotEmpty(t, s.UserRating.ID)
	require.NotNil(t, s.Stats)
	assert.Equal(t, 5.0, s.Stats.AverageRating)
}

func TestReviewLifecycleMessages(t *testing.T) {
	svc := newMovieService(t, catalogFake(t))
	holder := NewMovieDetail(svc)
	ctx := context.Background()

	holder.CreateReview(ctx, models.Review{MovieID: 550, UserID: "u1", ReviewText: "superb"})

	s := holder.State().Get()
	assert.Equal(t, "review published", s.SuccessMessage)
	require.Len(t, s.Reviews, 1)

	review := s.Reviews[0]
	review.ReviewText = "still superb"
	holder.UpdateReview(ctx, review)
	s = holder.State().Get()
	assert.Equal(t, "review updated", s.SuccessMessage)
	assert.Equal(t, "still superb", s.Reviews[0].ReviewText)

	holder.DeleteReview(ctx, review.ID, 550)
	s = holder.State().Get()
	assert.Equal(t, "review deleted", s.SuccessMessage)
	assert.Empty(t, s.Reviews)
}

func TestReviewsListenerUpdatesState(t *testing.T) {
	svc := newMovieService(t, catalogFake(t))
	holder := NewMovieDetail(svc)
	defer holder.Close()

	snapshots, unsubscribe := holder.State().Subscribe()
	defer unsubscribe()

	holder.StartReviewsListener(550)

	_, err := svc.CreateReview(context.Background(), models.Review{MovieID: 550, UserID: "u2", ReviewText: "live"})
	require.NoError(t, err)

	waitFor(t, snapshots, func(s DetailState) bool { return len(s.Reviews) == 1 })
}

func TestDetailCloseIsIdempotent(t *testing.T) {
	holder := NewMovieDetail(newMovieService(t, catalogFake(t)))
	holder.StartReviewsListener(550)
	holder.Close()
	holder.Close()
}
