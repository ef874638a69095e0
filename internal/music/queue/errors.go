package queue

import (
	"errors"

	"tunebot/internal/music/sources"
)

var (
	ErrMissingArgument   = errors.New("missing query")
	ErrNotInVoice        = errors.New("requester is not in a voice channel")
	ErrNoPermission      = errors.New("no connect or speak permission in voice channel")
	ErrNotFound          = sources.ErrNotFound
	ErrConnectFailed     = errors.New("failed to connect to voice channel")
	ErrStreamAcquisition = errors.New("failed to acquire audio stream")
	ErrPlaybackFailed    = errors.New("playback failed")
	ErrUnhandled         = errors.New("unhandled error")
	ErrNoQueue           = errors.New("nothing is playing in this guild")
	ErrInvalidVolume     = errors.New("volume must be between 0 and 100")
)
