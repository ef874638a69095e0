package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"

	"tunebot/internal/music/sources"
	"tunebot/internal/music/track"
)

const SourceYouTube string = sources.SourceYouTube

// videoFetcher is the part of the kkdai client used for metadata.
type videoFetcher interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
}

type YouTubeSource struct {
	videos videoFetcher
	search *SearchResolver
}

func New(httpClient *http.Client) *YouTubeSource {
	return &YouTubeSource{
		videos: &youtube.Client{HTTPClient: httpClient},
		search: NewSearchResolver(httpClient),
	}
}

func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) SourceName() string {
	return SourceYouTube
}

func (y *YouTubeSource) Searchable() bool {
	return true
}

// Resolve validates a direct video link, or searches by title and takes the
// first result, then loads the video metadata.
func (y *YouTubeSource) Resolve(ctx context.Context, input string) (track.Track, error) {
	input = strings.TrimSpace(input)

	var videoURL string
	switch {
	case isYouTubeVideoURL(input):
		videoURL = CleanVideoURL(input)
	case isURL(input):
		return track.Track{}, fmt.Errorf("invalid YouTube video link %q: %w", input, sources.ErrNotFound)
	default:
		found, err := y.search.SearchFirstVideoURL(ctx, input)
		if errors.Is(err, ErrNoVideoMatch) {
			return track.Track{}, fmt.Errorf("search %q: %w", input, sources.ErrNotFound)
		}
		if err != nil {
			return track.Track{}, fmt.Errorf("search %q: %w", input, err)
		}
		videoURL = found
	}

	videoCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	video, err := y.videos.GetVideoContext(videoCtx, videoURL)
	if err != nil {
		return track.Track{}, fmt.Errorf("load video %s: %w", videoURL, err)
	}

	return track.New(
		video.Title,
		fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID),
		video.Duration,
		bestThumbnail(video),
		"",
	), nil
}
