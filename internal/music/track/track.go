// Package track holds the resolved description of one playable item.
package track

import (
	"time"

	"tunebot/pkg/util"
)

// Track is immutable once built by a resolver.
type Track struct {
	Title       string
	URL         string
	Duration    string
	Thumbnail   string
	RequestedBy string
}

// New builds a Track, formatting the length the way the chat shows it.
func New(title, url string, length time.Duration, thumbnail, requestedBy string) Track {
	return Track{
		Title:       title,
		URL:         url,
		Duration:    util.FormatClock(length),
		Thumbnail:   thumbnail,
		RequestedBy: requestedBy,
	}
}

// WithRequester returns a copy of t attributed to requestedBy.
func (t Track) WithRequester(requestedBy string) Track {
	t.RequestedBy = requestedBy
	return t
}
