// Package catalog is the client for the external movie metadata service.
// Every call is stateless, read-only and a single attempt; transport errors
// and non-success responses surface as one wrapped error with no retry.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"filmhub/models"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	imageBaseURL    = "https://image.tmdb.org/t/p"
	posterSize      = "w500"
	backdropSize    = "w780"
	defaultLanguage = "en-US"
)

var (
	ErrNotConfigured = errors.New("catalog api key not configured")
	ErrEmptyQuery    = errors.New("search query is empty")
	ErrNotFound      = errors.New("movie not found")
)

// Client issues typed requests against the catalog, keyed by an API
// credential and a language tag.
type Client struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client
}

func NewClient(apiKey, language, baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	return &Client{
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    httpc,
	}
}

func (c *Client) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs a single GET and decodes the JSON body into v.
func (c *Client) doGET(ctx context.Context, path string, params url.Values, v any) error {
	if !c.isConfigured() {
		return ErrNotConfigured
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for key, values := range params {
		for _, value := range values {
			q.Set(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("catalog request %s failed: %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// Popular returns one page of the currently popular movies.
func (c *Client) Popular(ctx context.Context, page int) (models.MoviePage, error) {
	var out models.MoviePage
	err := c.doGET(ctx, "/movie/popular", pageParams(page), &out)
	return out, err
}

// TopRated returns one page of the highest-rated movies.
func (c *Client) TopRated(ctx context.Context, page int) (models.MoviePage, error) {
	var out models.MoviePage
	err := c.doGET(ctx, "/movie/top_rated", pageParams(page), &out)
	return out, err
}

// NowPlaying returns one page of movies currently in theaters.
func (c *Client) NowPlaying(ctx context.Context, page int) (models.MoviePage, error) {
	var out models.MoviePage
	err := c.doGET(ctx, "/movie/now_playing", pageParams(page), &out)
	return out, err
}

// Upcoming returns one page of upcoming releases.
func (c *Client) Upcoming(ctx context.Context, page int) (models.MoviePage, error) {
	var out models.MoviePage
	err := c.doGET(ctx, "/movie/upcoming", pageParams(page), &out)
	return out, err
}

// Search runs a free-text title search. Callers must not pass a blank
// query; doing so returns ErrEmptyQuery before any request is made.
func (c *Client) Search(ctx context.Context, query string, page int) (models.MoviePage, error) {
	if strings.TrimSpace(query) == "" {
		return models.MoviePage{}, ErrEmptyQuery
	}

	params := pageParams(page)
	params.Set("query", query)

	var out models.MoviePage
	err := c.doGET(ctx, "/search/movie", params, &out)
	return out, err
}

// Discover returns movies filtered by optional year and genre facets,
// sorted by descending popularity. Both filters are optional and
// combinable.
func (c *Client) Discover(ctx context.Context, year int, genreIDs []int, page int) (models.MoviePage, error) {
	params := pageParams(page)
	params.Set("sort_by", "popularity.desc")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if len(genreIDs) > 0 {
		ids := make([]string, len(genreIDs))
		for i, id := range genreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}

	var out models.MoviePage
	err := c.doGET(ctx, "/discover/movie", params, &out)
	return out, err
}

// Genres returns the flat genre reference list.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	var out struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.doGET(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// Details returns the full record for a single movie. A missing movie
// surfaces as ErrNotFound.
func (c *Client) Details(ctx context.Context, movieID int) (models.Movie, error) {
	var out models.Movie
	if err := c.doGET(ctx, "/movie/"+strconv.Itoa(movieID), nil, &out); err != nil {
		return models.Movie{}, err
	}
	if out.ID == 0 {
		return models.Movie{}, ErrNotFound
	}
	return out, nil
}

// Videos returns all video entries attached to the movie. Filtering to
// official YouTube trailers is the caller's concern.
func (c *Client) Videos(ctx context.Context, movieID int) ([]models.VideoTrailer, error) {
	var out struct {
		Results []models.VideoTrailer `json:"results"`
	}
	if err := c.doGET(ctx, "/movie/"+strconv.Itoa(movieID)+"/videos", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// PosterURL builds the public image URL for a poster path, or "" if the
// movie has no poster.
func PosterURL(posterPath string) string {
	return imageURL(posterPath, posterSize)
}

// BackdropURL builds the public image URL for a backdrop path.
func BackdropURL(backdropPath string) string {
	return imageURL(backdropPath, backdropSize)
}

func imageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return imageBaseURL + "/" + size + "/" + strings.TrimPrefix(trimmed, "/")
}
