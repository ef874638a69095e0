package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"

	"tunebot/internal/music/sources"
)

type fakeFetcher struct {
	video     *youtube.Video
	err       error
	urls      []string
	deadlines []bool
}

func (f *fakeFetcher) GetVideoContext(ctx context.Context, url string) (*youtube.Video, error) {
	_, hasDeadline := ctx.Deadline()
	f.urls = append(f.urls, url)
	f.deadlines = append(f.deadlines, hasDeadline)
	return f.video, f.err
}

func newTestSource(t *testing.T, handler http.HandlerFunc, fetcher *fakeFetcher) *YouTubeSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	search := NewSearchResolver(srv.Client())
	search.BaseURL = srv.URL
	return &YouTubeSource{videos: fetcher, search: search}
}

func TestCleanVideoURL(t *testing.T) {
	tests := map[string]string{
		"https://youtu.be/dQw4w9WgXcQ?t=42":                         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123":    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://music.youtube.com/watch?v=dQw4w9WgXcQ&feature=abc": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":                "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://example.com/watch?v=dQw4w9WgXcQ":                   "https://example.com/watch?v=dQw4w9WgXcQ",
	}

	for in, want := range tests {
		if got := CleanVideoURL(in); got != want {
			t.Errorf("CleanVideoURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatch(t *testing.T) {
	src := &YouTubeSource{}
	if !src.Match("https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Error("expected youtube.com link to match")
	}
	if !src.Match("https://youtu.be/dQw4w9WgXcQ") {
		t.Error("expected youtu.be link to match")
	}
	if src.Match("https://soundcloud.com/artist/track") {
		t.Error("soundcloud link must not match")
	}
}

func TestResolve(t *testing.T) {
	video := &youtube.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Duration: 3*time.Minute + 33*time.Second,
		Thumbnails: youtube.Thumbnails{
			{URL: "small.jpg", Width: 120},
			{URL: "large.jpg", Width: 1280},
		},
	}

	t.Run("direct link skips search", func(t *testing.T) {
		var searched atomic.Bool
		fetcher := &fakeFetcher{video: video}
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			searched.Store(true)
		}, fetcher)

		tr, err := src.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if searched.Load() {
			t.Error("direct link must not hit search")
		}
		if tr.Title != video.Title || tr.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			t.Errorf("unexpected track %+v", tr)
		}
		if tr.Duration != "3:33" || tr.Thumbnail != "large.jpg" {
			t.Errorf("unexpected duration/thumbnail %q %q", tr.Duration, tr.Thumbnail)
		}
		if len(fetcher.deadlines) != 1 || !fetcher.deadlines[0] {
			t.Error("metadata lookup should carry a deadline")
		}
	})

	t.Run("free text uses first search result", func(t *testing.T) {
		fetcher := &fakeFetcher{video: video}
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("search_query"); got != "rick astley" {
				t.Errorf("unexpected query %q", got)
			}
			w.Write([]byte(`..."videoId":"dQw4w9WgXcQ"..."videoId":"aaaaaaaaaaa"...`))
		}, fetcher)

		if _, err := src.Resolve(context.Background(), "rick astley"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fetcher.urls) != 1 || !strings.HasSuffix(fetcher.urls[0], "v=dQw4w9WgXcQ") {
			t.Errorf("expected metadata lookup for first result, got %v", fetcher.urls)
		}
	})

	t.Run("no results is not found", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>nothing</html>"))
		}, &fakeFetcher{video: video})

		_, err := src.Resolve(context.Background(), "zzzz")
		if !errors.Is(err, sources.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("foreign link is not found", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {}, &fakeFetcher{video: video})

		_, err := src.Resolve(context.Background(), "https://example.com/song.mp3")
		if !errors.Is(err, sources.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("metadata failure is returned", func(t *testing.T) {
		boom := errors.New("boom")
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {}, &fakeFetcher{err: boom})

		_, err := src.Resolve(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped boom, got %v", err)
		}
	})
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`"videoId":"dQw4w9WgXcQ"`))
	}))
	defer srv.Close()

	search := NewSearchResolver(srv.Client())
	search.BaseURL = srv.URL

	got, err := search.SearchFirstVideoURL(context.Background(), "retry me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected url %s", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestNewHTTPClient(t *testing.T) {
	for _, proxy := range []string{"", "http://127.0.0.1:8080", "socks5://127.0.0.1:1080"} {
		c, err := NewHTTPClient(proxy)
		if err != nil {
			t.Errorf("proxy %q: %v", proxy, err)
			continue
		}
		// audio downloads share the client and run for the whole track
		if c.Timeout != 0 {
			t.Errorf("proxy %q: client timeout = %v, want none", proxy, c.Timeout)
		}
	}
	if _, err := NewHTTPClient("ftp://127.0.0.1"); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestSlowBodyIsNotCutOff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for range 5 {
			w.Write(make([]byte, 1024))
			flusher.Flush()
			time.Sleep(30 * time.Millisecond)
		}
	}))
	defer srv.Close()

	c, err := NewHTTPClient("")
	if err != nil {
		t.Fatal(err)
	}
	c.Transport = srv.Client().Transport

	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if n != 5*1024 {
		t.Errorf("read %d bytes, want %d", n, 5*1024)
	}
}

func TestSearchAttemptTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	search := NewSearchResolver(srv.Client())
	search.BaseURL = srv.URL
	search.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := search.searchOnce(context.Background(), "hangs")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Errorf("search took %v", took)
	}
}
