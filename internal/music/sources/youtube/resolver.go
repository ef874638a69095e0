package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"tunebot/pkg/retrylimit"
)

const searchAttempts = 3

var (
	videoPattern    = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
	ErrNoVideoMatch = errors.New("no video found for the given title")
)

// statusError lets retrylimit tell throttling and server failures apart.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("YouTube search failed with status code %d", e.code)
}

func (e *statusError) StatusCode() int { return e.code }

// SearchResolver finds videos by scraping the public results page.
type SearchResolver struct {
	BaseURL string
	Client  *http.Client
	// Timeout bounds each search attempt.
	Timeout time.Duration
	limiter *retrylimit.AdaptiveLimiter
}

func NewSearchResolver(client *http.Client) *SearchResolver {
	return &SearchResolver{
		BaseURL: "https://www.youtube.com",
		Client:  client,
		Timeout: RequestTimeout,
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

// SearchFirstVideoURL returns the watch URL of the first search result.
func (r *SearchResolver) SearchFirstVideoURL(ctx context.Context, query string) (string, error) {
	var videoURL string

	err := retrylimit.WithRetryMax(ctx, func() error {
		found, err := r.searchOnce(ctx, query)
		if errors.Is(err, ErrNoVideoMatch) {
			return &retrylimit.FatalError{Err: err}
		}
		videoURL = found
		return err
	}, r.limiter, searchAttempts)

	var fatal *retrylimit.FatalError
	if errors.As(err, &fatal) {
		return "", fatal.Err
	}
	return videoURL, err
}

func (r *SearchResolver) searchOnce(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.BaseURL, url.QueryEscape(query))

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	matches := videoPattern.FindSubmatch(body)
	if len(matches) < 2 {
		return "", ErrNoVideoMatch
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", matches[1]), nil
}
