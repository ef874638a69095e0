package sources

import "errors"

const (
	SourceYouTube = "youtube"
)

// ErrNotFound is returned when a query yields nothing playable.
var ErrNotFound = errors.New("nothing found for query")
