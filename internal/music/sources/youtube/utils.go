package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var (
	youtubeRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.|music\.|m\.)?(youtube\.com|youtu\.be)/\S+`)
	videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeURL(input string) bool {
	return youtubeRegex.MatchString(input)
}

// isYouTubeVideoURL reports whether input points at a single video with a
// well-formed id.
func isYouTubeVideoURL(input string) bool {
	if !isYouTubeURL(input) {
		return false
	}
	id, err := youtube.ExtractVideoID(input)
	return err == nil && videoIDRegex.MatchString(id)
}

// CleanVideoURL drops everything but the video id from a YouTube link.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	host := u.Hostname()

	switch host {
	case "youtu.be":
		vid := strings.Trim(u.Path, "/")
		if vid == "" {
			return raw
		}
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", vid)

	case "www.youtube.com", "youtube.com", "music.youtube.com", "m.youtube.com":
		if u.Path == "/watch" {
			if vid := u.Query().Get("v"); vid != "" {
				return fmt.Sprintf("https://www.youtube.com/watch?v=%s", vid)
			}
		}
		if strings.HasPrefix(u.Path, "/shorts/") {
			return fmt.Sprintf("https://www.youtube.com/watch?v=%s", strings.TrimPrefix(u.Path, "/shorts/"))
		}
		return raw

	default:
		return raw
	}
}

// bestThumbnail picks the widest thumbnail, falling back to the static
// hqdefault image.
func bestThumbnail(video *youtube.Video) string {
	var best youtube.Thumbnail
	for _, th := range video.Thumbnails {
		if th.Width >= best.Width {
			best = th
		}
	}
	if best.URL != "" {
		return best.URL
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", video.ID)
}
