package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tunebot/internal/music/sources"
	"tunebot/internal/music/track"
)

// SourceResolver picks the source for a query: links go to the source that
// recognizes them, free text goes to the search source.
type SourceResolver struct {
	sources []sources.Source
	search  sources.Source
}

// New builds a resolver. The first searchable source handles free text.
func New(srcs ...sources.Source) *SourceResolver {
	r := &SourceResolver{sources: srcs}
	for _, s := range srcs {
		if s.Searchable() {
			r.search = s
			break
		}
	}
	return r
}

// Resolve turns a link or a search phrase into a track. It returns an error
// wrapping sources.ErrNotFound when nothing matches.
func (r *SourceResolver) Resolve(ctx context.Context, input string) (track.Track, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return track.Track{}, errors.New("empty query")
	}

	if isURL(input) {
		for _, s := range r.sources {
			if s.Match(input) {
				return s.Resolve(ctx, input)
			}
		}
		return track.Track{}, fmt.Errorf("unsupported link %q: %w", input, sources.ErrNotFound)
	}

	if r.search == nil {
		return track.Track{}, fmt.Errorf("no source supports title search: %w", sources.ErrNotFound)
	}
	return r.search.Resolve(ctx, input)
}
