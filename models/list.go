package models

import "time"

// MovieList is a user-owned custom list. MovieIDs is ordered and never
// contains duplicates; IsPublic gates the public listing.
type MovieList struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MovieIDs    []int     `json:"movieIds"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contains reports whether the list already holds the movie.
func (l MovieList) Contains(movieID int) bool {
	for _, id := range l.MovieIDs {
		if id == movieID {
			return true
		}
	}
	return false
}

// WatchlistItem is a (user, movie) membership record, unique per pair by
// repository convention.
type WatchlistItem struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	MovieID int       `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

// FavoriteMovie is a (user, movie) membership record for favorites.
type FavoriteMovie struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	MovieID int       `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}
