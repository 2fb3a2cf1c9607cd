package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"filmhub/services/lists"
	"filmhub/services/movies"
	"filmhub/state"
)

// StreamHandler exposes the realtime layer over server-sent events. Each
// connection owns one Lists state holder; its subscriptions are torn down
// when the client disconnects.
type StreamHandler struct {
	Lists  *lists.Service
	Movies *movies.Service
}

func NewStreamHandler(listSvc *lists.Service, movieSvc *movies.Service) *StreamHandler {
	return &StreamHandler{Lists: listSvc, Movies: movieSvc}
}

// ListsStream streams the user's lists state as SSE. Every state change
// produces one `data:` event carrying the full snapshot.
func (h *StreamHandler) ListsStream(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	holder := state.NewLists(h.Lists, h.Movies, userID)
	defer holder.Close()

	snapshots, unsubscribe := holder.State().Subscribe()
	defer unsubscribe()

	holder.StartRealtime(r.Context())

	// Initial snapshot so the client renders before the first change.
	writeEvent(w, holder.State().Get())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-snapshots:
			if !open {
				return
			}
			writeEvent(w, snapshot)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
