package sources

import (
	"context"

	"tunebot/internal/music/track"
)

type Source interface {
	// Match checks if this source can handle the given link
	Match(input string) bool

	// Resolve turns a link or a search phrase into a playable track
	Resolve(ctx context.Context, input string) (track.Track, error)

	// SourceName returns the string identifier ("youtube", ...)
	SourceName() string

	// Searchable reports whether free text queries are supported
	Searchable() bool
}
