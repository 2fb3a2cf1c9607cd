package models

import (
	"strings"
	"time"
)

// Movie is a catalog record. The field tags follow the catalog's wire
// format; movies are never created or mutated locally.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
}

// DaysUntilRelease returns the number of whole days between now and the
// movie's release date, or 0 if the date is missing, unparseable or past.
func (m Movie) DaysUntilRelease(now time.Time) int {
	if m.ReleaseDate == "" {
		return 0
	}
	release, err := time.Parse("2006-01-02", m.ReleaseDate)
	if err != nil {
		return 0
	}
	days := int(release.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// MoviePage is one page of catalog results.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// VideoTrailer is a single catalog video entry. Callers filter to official
// YouTube trailers with IsYouTubeTrailer.
type VideoTrailer struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// IsYouTubeTrailer reports whether the video is a YouTube-hosted trailer.
// Site and type are matched case-insensitively.
func (v VideoTrailer) IsYouTubeTrailer() bool {
	return strings.EqualFold(v.Site, "YouTube") && strings.EqualFold(v.Type, "Trailer")
}

// WatchURL returns the public playback URL for a YouTube-hosted video.
func (v VideoTrailer) WatchURL() string {
	if v.Key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + v.Key
}
