package state

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"filmhub/models"
	"filmhub/services/movies"
)

// DetailState is the movie detail screen's single state value.
type DetailState struct {
	IsLoading      bool
	Movie          *models.Movie
	Reviews        []models.Review
	Stats          *models.MovieStats
	UserRating     *models.Rating
	Trailers       []models.VideoTrailer
	ErrorMessage   string
	SuccessMessage string
}

// MovieDetail drives a single movie's detail screen: the full record, its
// reviews, aggregate stats, the viewer's own rating and the trailers.
type MovieDetail struct {
	movies *movies.Service
	state  *Value[DetailState]

	mu          sync.Mutex
	stopReviews func()
	listenerWG  conc.WaitGroup
}

func NewMovieDetail(svc *movies.Service) *MovieDetail {
	return &MovieDetail{movies: svc, state: NewValue(DetailState{})}
}

func (d *MovieDetail) State() *Value[DetailState] { return d.state }

// LoadMovie fetches the detail record and its satellite data. The
// sub-fetches run concurrently; any one of them failing leaves its slice
// at the previous value rather than failing the whole load.
func (d *MovieDetail) LoadMovie(ctx context.Context, movieID int, userID string) {
	d.state.Update(func(s DetailState) DetailState {
		s.IsLoading = true
		return s
	})

	var (
		movie      *models.Movie
		reviews    []models.Review
		stats      *models.MovieStats
		userRating *models.Rating
		trailers   []models.VideoTrailer
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		if m, err := d.movies.GetMovie(ctx, movieID); err == nil {
			movie = &m
		}
	})
	wg.Go(func() {
		if r, err := d.movies.GetMovieReviews(ctx, movieID); err == nil {
			reviews = r
		}
	})
	wg.Go(func() {
		if st, err := d.movies.GetMovieStats(ctx, movieID); err == nil {
			stats = &st
		}
	})
	wg.Go(func() {
		if userID == "" {
			return
		}
		if r, err := d.movies.GetUserRating(ctx, movieID, userID); err == nil {
			userRating = r
		}
	})
	wg.Go(func() {
		if t, err := d.movies.GetMovieTrailers(ctx, movieID); err == nil {
			trailers = t
		}
	})
	wg.Wait()

	d.state.Update(func(s DetailState) DetailState {
		s.IsLoading = false
		if movie != nil {
			s.Movie = movie
		}
		if reviews != nil {
			s.Reviews = reviews
		}
		if stats != nil {
			s.Stats = stats
		}
		s.UserRating = userRating
		if trailers != nil {
			s.Trailers = trailers
		}
		return s
	})
}

// RateMovie persists the rating, confirms it and refreshes the aggregate.
func (d *MovieDetail) RateMovie(ctx context.Context, movieID int, userID string, value float64) {
	rating := models.Rating{MovieID: movieID, UserID: userID, Rating: value}

	id, err := d.movies.RateMovie(ctx, rating)
	if err != nil {
		d.setError(err)
		return
	}
	rating.ID = id

	d.state.Update(func(s DetailState) DetailState {
		s.SuccessMessage = "rating saved"
		s.UserRating = &rating
		return s
	})
	d.refreshStats(ctx, movieID)
}

// CreateReview publishes the review and reloads the review list.
func (d *MovieDetail) CreateReview(ctx context.Context, review models.Review) {
	if _, err := d.movies.CreateReview(ctx, review); err != nil {
		d.setError(err)
		return
	}
	d.setSuccess("review published")
	d.refreshReviews(ctx, review.MovieID)
}

// UpdateReview overwrites the review and reloads the review list.
func (d *MovieDetail) UpdateReview(ctx context.Context, review models.Review) {
	if err := d.movies.UpdateReview(ctx, review); err != nil {
		d.setError(err)
		return
	}
	d.setSuccess("review updated")
	d.refreshReviews(ctx, review.MovieID)
}

// DeleteReview removes the review and reloads the review list.
func (d *MovieDetail) DeleteReview(ctx context.Context, reviewID string, movieID int) {
	if err := d.movies.DeleteReview(ctx, reviewID, movieID); err != nil {
		d.setError(err)
		return
	}
	d.setSuccess("review deleted")
	d.refreshReviews(ctx, movieID)
}

// StartReviewsListener subscribes to live review changes for the movie.
// Starting a new listener stops the previous one.
func (d *MovieDetail) StartReviewsListener(movieID int) {
	d.mu.Lock()
	if d.stopReviews != nil {
		d.stopReviews()
	}
	updates, stop := d.movies.ReviewsListener(movieID)
	d.stopReviews = stop
	d.mu.Unlock()

	d.listenerWG.Go(func() {
		for reviews := range updates {
			r := reviews
			d.state.Update(func(s DetailState) DetailState {
				s.Reviews = r
				return s
			})
		}
	})
}

// Close stops the reviews listener and waits for its goroutine to drain.
// Safe to call more than once.
func (d *MovieDetail) Close() {
	d.mu.Lock()
	if d.stopReviews != nil {
		d.stopReviews()
		d.stopReviews = nil
	}
	d.mu.Unlock()
	d.listenerWG.Wait()
}

// ResetMessages clears the transient notification fields.
func (d *MovieDetail) ResetMessages() {
	d.state.Update(func(s DetailState) DetailState {
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		return s
	})
}

func (d *MovieDetail) refreshReviews(ctx context.Context, movieID int) {
	reviews, err := d.movies.GetMovieReviews(ctx, movieID)
	if err != nil {
		return
	}
	d.state.Update(func(s DetailState) DetailState {
		s.Reviews = reviews
		return s
	})
}

func (d *MovieDetail) refreshStats(ctx context.Context, movieID int) {
	stats, err := d.movies.GetMovieStats(ctx, movieID)
	if err != nil {
		return
	}
	d.state.Update(func(s DetailState) DetailState {
		s.Stats = &stats
		return s
	})
}

func (d *MovieDetail) setError(err error) {
	d.state.Update(func(s DetailState) DetailState {
		s.ErrorMessage = err.Error()
		return s
	})
}

func (d *MovieDetail) setSuccess(msg string) {
	d.state.Update(func(s DetailState) DetailState {
		s.SuccessMessage = msg
		return s
	})
}
