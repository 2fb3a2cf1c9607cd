// Package movies wraps catalog reads and review/rating persistence into
// single-purpose operations. Stats recomputation is fire-and-forget: it is
// submitted to the background runner and its failure never fails the
// mutation that triggered it.
package movies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"filmhub/internal/store"
	"filmhub/internal/tasks"
	"filmhub/models"
	"filmhub/services/catalog"
)

const (
	colReviews = "reviews"
	colRatings = "ratings"
	colStats   = "movie_stats"
)

var (
	ErrReviewIDRequired = errors.New("review id is required")
	ErrNotReviewOwner   = errors.New("review belongs to another user")
)

type Service struct {
	catalog *catalog.Client
	store   *store.Store
	tasks   *tasks.Runner

	// Serializes the lookup-then-write pair in RateMovie so concurrent
	// calls for the same (movie, user) cannot insert duplicate ratings.
	rateMu sync.Mutex
}

func NewService(cat *catalog.Client, st *store.Store, runner *tasks.Runner) *Service {
	return &Service{catalog: cat, store: st, tasks: runner}
}

// Catalog pass-throughs.

func (s *Service) GetPopular(ctx context.Context, page int) (models.MoviePage, error) {
	return s.catalog.Popular(ctx, page)
}

func (s *Service) GetTopRated(ctx context.Context, page int) (models.MoviePage, error) {
	return s.catalog.TopRated(ctx, page)
}

func (s *Service) GetNowPlaying(ctx context.Context, page int) (models.MoviePage, error) {
	return s.catalog.NowPlaying(ctx, page)
}

func (s *Service) Search(ctx context.Context, query string, page int) (models.MoviePage, error) {
	return s.catalog.Search(ctx, query, page)
}

func (s *Service) Discover(ctx context.Context, year int, genreIDs []int, page int) (models.MoviePage, error) {
	return s.catalog.Discover(ctx, year, genreIDs, page)
}

func (s *Service) GetGenres(ctx context.Context) ([]models.Genre, error) {
	return s.catalog.Genres(ctx)
}

func (s *Service) GetMovie(ctx context.Context, movieID int) (models.Movie, error) {
	return s.catalog.Details(ctx, movieID)
}

// GetMovieTrailers returns the movie's official-or-not YouTube trailers,
// matched case-insensitively on site and type.
func (s *Service) GetMovieTrailers(ctx context.Context, movieID int) ([]models.VideoTrailer, error) {
	videos, err := s.catalog.Videos(ctx, movieID)
	if err != nil {
		return nil, err
	}

	trailers := make([]models.VideoTrailer, 0, len(videos))
	for _, v := range videos {
		if v.IsYouTubeTrailer() {
			trailers = append(trailers, v)
		}
	}
	return trailers, nil
}

// CreateReview assigns a new id, persists the review and schedules a stats
// recompute.
func (s *Service) CreateReview(ctx context.Context, review models.Review) (string, error) {
	review.ID = uuid.NewString()
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	if review.UpdatedAt.IsZero() {
		review.UpdatedAt = now
	}

	if err := s.store.Put(ctx, colReviews, review.ID, review); err != nil {
		return "", err
	}

	s.scheduleStatsRecompute(review.MovieID)
	return review.ID, nil
}

// UpdateReview overwrites the full document with a refreshed updatedAt.
// Only the author may update; admin removals go through the admin service.
// Reviews do not feed the rating aggregate, so no recompute happens here.
func (s *Service) UpdateReview(ctx context.Context, review models.Review) error {
	if strings.TrimSpace(review.ID) == "" {
		return ErrReviewIDRequired
	}

	var existing models.Review
	err := s.store.Get(ctx, colReviews, review.ID, &existing)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err == nil && existing.UserID != review.UserID {
		return ErrNotReviewOwner
	}

	review.UpdatedAt = time.Now().UTC()
	return s.store.Put(ctx, colReviews, review.ID, review)
}

// DeleteReview removes the review and schedules a stats recompute. It
// carries no acting user: callers gate deletion on ownership or, for
// moderation, on admin privilege.
func (s *Service) DeleteReview(ctx context.Context, reviewID string, movieID int) error {
	if strings.TrimSpace(reviewID) == "" {
		return ErrReviewIDRequired
	}

	if err := s.store.Delete(ctx, colReviews, reviewID); err != nil {
		return err
	}

	s.scheduleStatsRecompute(movieID)
	return nil
}

// GetMovieReviews returns all reviews for the movie, newest first. The
// sort happens client-side so the store needs no compound index.
func (s *Service) GetMovieReviews(ctx context.Context, movieID int) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.store.Find(ctx, colReviews, map[string]any{"movieId": movieID}, &reviews); err != nil {
		return nil, err
	}

	sortReviews(reviews)
	return reviews, nil
}

// ReviewsListener mirrors GetMovieReviews as a live subscription. The
// caller must invoke the stop func on teardown.
func (s *Service) ReviewsListener(movieID int) (<-chan []models.Review, func()) {
	return store.Listen(s.store, colReviews, func() ([]models.Review, bool) {
		reviews, err := s.GetMovieReviews(context.Background(), movieID)
		if err != nil {
			return nil, false
		}
		return reviews, true
	})
}

// RateMovie upserts the user's rating for the movie. A second rating for
// the same (movie, user) pair updates the existing record in place; the
// pair never gains a duplicate. Stats are recomputed after either branch.
func (s *Service) RateMovie(ctx context.Context, rating models.Rating) (string, error) {
	s.rateMu.Lock()
	defer s.rateMu.Unlock()

	var existing []models.Rating
	err := s.store.Find(ctx, colRatings, map[string]any{
		"movieId": rating.MovieID,
		"userId":  rating.UserID,
	}, &existing)
	if err != nil {
		return "", err
	}

	if len(existing) > 0 {
		rating.ID = existing[0].ID
	} else {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	if err := s.store.Put(ctx, colRatings, rating.ID, rating); err != nil {
		return "", err
	}

	s.scheduleStatsRecompute(rating.MovieID)
	return rating.ID, nil
}

// GetMovieStats recomputes the aggregate fresh from the live rating and
// review collections; it never reads the cached movie_stats document. The
// average is 0 when no ratings exist, regardless of review count.
func (s *Service) GetMovieStats(ctx context.Context, movieID int) (models.MovieStats, error) {
	var ratings []models.Rating
	if err := s.store.Find(ctx, colRatings, map[string]any{"movieId": movieID}, &ratings); err != nil {
		return models.MovieStats{}, err
	}

	var reviews []models.Review
	if err := s.store.Find(ctx, colReviews, map[string]any{"movieId": movieID}, &reviews); err != nil {
		return models.MovieStats{}, err
	}

	var average float64
	if len(ratings) > 0 {
		var sum float64
		for _, r := range ratings {
			sum += r.Rating
		}
		average = sum / float64(len(ratings))
	}

	return models.MovieStats{
		MovieID:       movieID,
		AverageRating: average,
		TotalRatings:  len(ratings),
		TotalReviews:  len(reviews),
	}, nil
}

// GetUserRating returns the user's rating for the movie, or nil if none
// exists.
func (s *Service) GetUserRating(ctx context.Context, movieID int, userID string) (*models.Rating, error) {
	var ratings []models.Rating
	err := s.store.Find(ctx, colRatings, map[string]any{
		"movieId": movieID,
		"userId":  userID,
	}, &ratings)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, nil
	}
	return &ratings[0], nil
}

// scheduleStatsRecompute persists a fresh aggregate into the movie_stats
// cache in the background.
func (s *Service) scheduleStatsRecompute(movieID int) {
	s.tasks.Submit(fmt.Sprintf("recompute stats for movie %d", movieID), func(ctx context.Context) error {
		stats, err := s.GetMovieStats(ctx, movieID)
		if err != nil {
			return err
		}
		return s.store.Put(ctx, colStats, strconv.Itoa(movieID), stats)
	})
}

func sortReviews(reviews []models.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID < reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
