package models

import (
	"testing"
	"time"
)

func TestDaysUntilRelease(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		release string
		want    int
	}{
		{"future", "2026-03-11", 10},
		{"today", "2026-03-01", 0},
		{"past", "2020-01-01", 0},
		{"missing", "", 0},
		{"unparseable", "soon", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Movie{ReleaseDate: tc.release}
			if got := m.DaysUntilRelease(now); got != tc.want {
				t.Errorf("DaysUntilRelease(%q) = %d, want %d", tc.release, got, tc.want)
			}
		})
	}
}

func TestWatchURL(t *testing.T) {
	v := VideoTrailer{Key: "dQw4w9WgXcQ"}
	if got, want := v.WatchURL(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ"; got != want {
		t.Errorf("WatchURL() = %q, want %q", got, want)
	}
	if got := (VideoTrailer{}).WatchURL(); got != "" {
		t.Errorf("WatchURL() on keyless video = %q, want empty", got)
	}
}

func TestIsYouTubeTrailer(t *testing.T) {
	cases := []struct {
		site, kind string
		want       bool
	}{
		{"YouTube", "Trailer", true},
		{"youtube", "trailer", true},
		{"YouTube", "Teaser", false},
		{"Vimeo", "Trailer", false},
	}
	for _, tc := range cases {
		v := VideoTrailer{Site: tc.site, Type: tc.kind}
		if got := v.IsYouTubeTrailer(); got != tc.want {
			t.Errorf("IsYouTubeTrailer(%s/%s) = %v, want %v", tc.site, tc.kind, got, tc.want)
		}
	}
}
