package models

import "time"

// Review is a user-authored movie review. Nothing prevents a user from
// posting several reviews for the same movie.
type Review struct {
	ID         string    `json:"id"`
	MovieID    int       `json:"movieId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserEmail  string    `json:"userEmail"`
	Rating     float64   `json:"rating"`
	ReviewText string    `json:"reviewText"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Rating is a user's score for a movie, unique per (movieId, userId) by
// repository convention. The review's own rating field never feeds the
// movie aggregate; only Rating records do.
type Rating struct {
	ID        string    `json:"id"`
	MovieID   int       `json:"movieId"`
	UserID    string    `json:"userId"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovieStats is a denormalized aggregate cache keyed by movie id. It may
// transiently diverge from the live Rating/Review collections until the
// next recomputation.
type MovieStats struct {
	MovieID       int     `json:"movieId"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
	TotalReviews  int     `json:"totalReviews"`
}
