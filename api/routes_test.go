package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"filmhub/handlers"
	"filmhub/internal/store"
	"filmhub/internal/tasks"
	"filmhub/models"
	"filmhub/services/admin"
	"filmhub/services/auth"
	"filmhub/services/blob"
	"filmhub/services/catalog"
	"filmhub/services/identity"
	"filmhub/services/lists"
	"filmhub/services/movies"
)

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	runner := tasks.NewRunner(64)
	t.Cleanup(runner.Close)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/movie/popular":
			json.NewEncoder(w).Encode(models.MoviePage{
				Page:    1,
				Results: []models.Movie{{ID: 550, Title: "Fight Club"}},
			})
		case strings.HasSuffix(r.URL.Path, "/videos"):
			json.NewEncoder(w).Encode(map[string]any{
				"results": []models.VideoTrailer{{Key: "k", Site: "YouTube", Type: "Trailer"}},
			})
		case strings.HasPrefix(r.URL.Path, "/movie/"):
			json.NewEncoder(w).Encode(models.Movie{ID: 550, Title: "Fight Club"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)

	client := catalog.NewClient("test-key", "en", upstream.URL, upstream.Client())

	blobSvc, err := blob.NewService(afero.NewMemMapFs(), "/uploads")
	if err != nil {
		t.Fatalf("blob service: %v", err)
	}

	authSvc := auth.NewService(identity.NewService(st), blobSvc, st)
	movieSvc := movies.NewService(client, st, runner)
	listSvc := lists.NewService(st, client)
	adminSvc := admin.NewService(st, movieSvc, runner)

	r := mux.NewRouter()
	Register(
		r,
		handlers.NewAuthHandler(authSvc),
		handlers.NewMoviesHandler(movieSvc),
		handlers.NewListsHandler(listSvc),
		handlers.NewAdminHandler(adminSvc),
		handlers.NewStreamHandler(listSvc, movieSvc),
		"", "",
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (int, []byte) {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, payload)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/health", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("health = %d, want 200", status)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("unexpected health body: %s", body)
	}
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]string{"email": "ana@example.com", "password": "secret1"}

	status, body := env.do(t, http.MethodPost, "/api/auth/register", creds, nil)
	if status != http.StatusCreated {
		t.Fatalf("register = %d, body %s", status, body)
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.DisplayName != "ana" {
		t.Fatalf("displayName = %q, want %q", user.DisplayName, "ana")
	}

	status, _ = env.do(t, http.MethodPost, "/api/auth/register", creds, nil)
	if status != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", status)
	}

	status, body = env.do(t, http.MethodPost, "/api/auth/login", creds, nil)
	if status != http.StatusOK {
		t.Fatalf("login = %d, body %s", status, body)
	}
	var session map[string]string
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session["uid"] != user.UID {
		t.Fatalf("session uid = %q, want %q", session["uid"], user.UID)
	}

	status, _ = env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ana@example.com", "password": "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", status)
	}
}

func TestReviewAndRatingRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/movies/550/reviews",
		models.Review{UserID: "u1", UserName: "Ana", Rating: 4, ReviewText: "tight pacing"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create review = %d, body %s", status, body)
	}
	var created map[string]string
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	reviewID := created["id"]
	if reviewID == "" {
		t.Fatal("create review returned no id")
	}

	status, body = env.do(t, http.MethodGet, "/api/movies/550/reviews", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("list reviews = %d", status)
	}
	var reviews []models.Review
	if err := json.Unmarshal(body, &reviews); err != nil {
		t.Fatalf("decode reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ReviewText != "tight pacing" {
		t.Fatalf("unexpected reviews: %+v", reviews)
	}

	status, body = env.do(t, http.MethodPost, "/api/movies/550/rating",
		models.Rating{UserID: "u1", Rating: 4.5}, nil)
	if status != http.StatusOK {
		t.Fatalf("rate = %d, body %s", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/api/movies/550/rating?userId=u1", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("user rating = %d", status)
	}
	var rating models.Rating
	if err := json.Unmarshal(body, &rating); err != nil {
		t.Fatalf("decode rating: %v", err)
	}
	if rating.Rating != 4.5 {
		t.Fatalf("rating = %v, want 4.5", rating.Rating)
	}

	status, body = env.do(t, http.MethodGet, "/api/movies/550/stats", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("stats = %d", status)
	}
	var stats models.MovieStats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalRatings != 1 || stats.TotalReviews != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	status, _ = env.do(t, http.MethodPut, "/api/reviews/"+reviewID,
		models.Review{MovieID: 550, UserID: "u1", ReviewText: "edited"}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("update review = %d, want 204", status)
	}

	status, _ = env.do(t, http.MethodDelete, "/api/reviews/"+reviewID+"?movieId=550", nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete review = %d, want 204", status)
	}
}

func TestWatchlistRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/watchlist",
		map[string]any{"userId": "u1", "movieId": 550}, nil)
	if status != http.StatusOK {
		t.Fatalf("add to watchlist = %d, body %s", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/api/watchlist?userId=u1", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("watchlist = %d", status)
	}
	var ids []int
	if err := json.Unmarshal(body, &ids); err != nil {
		t.Fatalf("decode ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 550 {
		t.Fatalf("watchlist ids = %v, want [550]", ids)
	}

	status, body = env.do(t, http.MethodGet, "/api/movies/550/membership?userId=u1", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("membership = %d", status)
	}
	var flags map[string]bool
	if err := json.Unmarshal(body, &flags); err != nil {
		t.Fatalf("decode flags: %v", err)
	}
	if !flags["inWatchlist"] || flags["inFavorites"] {
		t.Fatalf("unexpected flags: %v", flags)
	}

	status, _ = env.do(t, http.MethodDelete, "/api/watchlist/550?userId=u1", nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("remove = %d, want 204", status)
	}

	status, body = env.do(t, http.MethodGet, "/api/watchlist?userId=u1", nil, nil)
	if status != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("emptied watchlist = %d %s, want 200 []", status, body)
	}
}

func TestListRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/lists",
		models.MovieList{UserID: "u1", Title: "Noir", IsPublic: true}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create list = %d, body %s", status, body)
	}
	var created map[string]string
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	listID := created["id"]

	status, _ = env.do(t, http.MethodPost, "/api/lists",
		models.MovieList{Title: "ownerless"}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("ownerless list = %d, want 400", status)
	}

	status, _ = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%s/movies", listID),
		map[string]int{"movieId": 550}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("add movie = %d, want 204", status)
	}

	status, body = env.do(t, http.MethodGet, "/api/lists/"+listID, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("get list = %d", status)
	}
	var list models.MovieList
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if !list.Contains(550) {
		t.Fatalf("list movies = %v, want [550]", list.MovieIDs)
	}

	status, body = env.do(t, http.MethodGet, "/api/lists/public", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("public lists = %d", status)
	}
	var public []models.MovieList
	if err := json.Unmarshal(body, &public); err != nil {
		t.Fatalf("decode public: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("public lists = %d entries, want 1", len(public))
	}

	status, _ = env.do(t, http.MethodGet, "/api/lists/mine?userId=u1", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("my lists = %d", status)
	}

	status, _ = env.do(t, http.MethodGet, "/api/lists/does-not-exist", nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("missing list = %d, want 404", status)
	}
}

func TestCatalogProxy(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/movies/popular", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("popular = %d", status)
	}
	var page models.MoviePage
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Title != "Fight Club" {
		t.Fatalf("unexpected page: %+v", page)
	}

	status, _ = env.do(t, http.MethodGet, "/api/movies/search?query=", nil, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("blank search = %d, want 400", status)
	}
}

func TestAdminRoutesEnforcePrivilege(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.store.Put(ctx, "users", "root", models.User{UID: "root", IsAdmin: true, IsActive: true}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := env.store.Put(ctx, "users", "plain", models.User{UID: "plain", IsActive: true}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	status, _ := env.do(t, http.MethodGet, "/api/admin/users", nil, nil)
	if status != http.StatusForbidden {
		t.Fatalf("anonymous admin listing = %d, want 403", status)
	}

	status, _ = env.do(t, http.MethodGet, "/api/admin/users", nil,
		map[string]string{"X-Admin-UID": "plain"})
	if status != http.StatusForbidden {
		t.Fatalf("non-admin listing = %d, want 403", status)
	}

	status, body := env.do(t, http.MethodGet, "/api/admin/users", nil,
		map[string]string{"X-Admin-UID": "root"})
	if status != http.StatusOK {
		t.Fatalf("admin listing = %d, body %s", status, body)
	}
	var users []models.User
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d entries, want 2", len(users))
	}

	status, _ = env.do(t, http.MethodPut, "/api/admin/users/plain/role",
		map[string]bool{"isAdmin": true}, map[string]string{"X-Admin-UID": "root"})
	if status != http.StatusNoContent {
		t.Fatalf("set role = %d, want 204", status)
	}

	var plain models.User
	if err := env.store.Get(ctx, "users", "plain", &plain); err != nil {
		t.Fatalf("read user: %v", err)
	}
	if !plain.IsAdmin {
		t.Fatal("role change not persisted")
	}
}

func TestSupportRoutes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/support/tickets",
		models.SupportTicket{UserID: "u1", Subject: "playback stutters"}, nil)
	if status != http.StatusCreated {
		t.Fatalf("create ticket = %d, body %s", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/api/support/tickets?userId=u1", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("user tickets = %d", status)
	}
	var tickets []models.SupportTicket
	if err := json.Unmarshal(body, &tickets); err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].Status != models.TicketStatusOpen {
		t.Fatalf("unexpected tickets: %+v", tickets)
	}

	status, _ = env.do(t, http.MethodGet, "/api/support/faqs", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("faqs = %d", status)
	}
}

func TestListsStream(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+"/api/stream/lists?userId=u1", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := env.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", ct)
	}

	events := bufio.NewReader(resp.Body)
	readEvent := func() map[string]json.RawMessage {
		t.Helper()
		for {
			line, err := events.ReadString('\n')
			if err != nil {
				t.Fatalf("read event: %v", err)
			}
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var event map[string]json.RawMessage
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			return event
		}
	}

	// Snapshot before any change.
	if _, ok := readEvent()["Watchlist"]; !ok {
		t.Fatal("initial snapshot missing watchlist field")
	}

	status, _ := env.do(t, http.MethodPost, "/api/watchlist",
		map[string]any{"userId": "u1", "movieId": 550}, nil)
	if status != http.StatusOK {
		t.Fatalf("add to watchlist = %d, want 200", status)
	}

	for {
		event := readEvent()
		if strings.Contains(string(event["Watchlist"]), "Fight Club") {
			break
		}
	}

	// Disconnect tears the holder's subscriptions down; later writes must
	// still land with no stream attached.
	cancel()

	status, _ = env.do(t, http.MethodPost, "/api/watchlist",
		map[string]any{"userId": "u1", "movieId": 680}, nil)
	if status != http.StatusOK {
		t.Fatalf("post-disconnect add = %d, want 200", status)
	}
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.srv.Client().Get(env.srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
}
