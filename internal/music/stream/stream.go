// /internal/music/stream/stream.go
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

const (
	ParserKkdaiPipe = "kkdai-pipe"
	ParserYTDLPPipe = "ytdlp-pipe"
)

var (
	// ErrNoAudio is returned when a video has no audio-only format.
	ErrNoAudio = errors.New("no audio formats found")
	// ErrEmptyStream is returned when the decoder exits without output.
	ErrEmptyStream = errors.New("decoder produced no audio")
)

// Streamer turns a track URL into raw 48kHz stereo s16le PCM.
type Streamer struct {
	HTTPClient *http.Client
	FFmpegPath string
	YTDLPPath  string
	// Parsers are tried in order until one opens.
	Parsers []string
}

func NewStreamer(httpClient *http.Client, ffmpegPath, ytdlpPath string) *Streamer {
	return &Streamer{
		HTTPClient: httpClient,
		FFmpegPath: ffmpegPath,
		YTDLPPath:  ytdlpPath,
		Parsers:    []string{ParserKkdaiPipe, ParserYTDLPPipe},
	}
}

// TrackStream is an open PCM stream. Close releases the decoder processes.
type TrackStream struct {
	io.Reader
	Parser string

	closeOnce sync.Once
	cleanup   func()
}

func (s *TrackStream) Close() error {
	s.closeOnce.Do(func() {
		if s.cleanup != nil {
			s.cleanup()
		}
	})
	return nil
}

// Open tries every configured parser for url and returns the first stream
// that starts. The combined error lists why each parser failed.
func (s *Streamer) Open(ctx context.Context, url string) (*TrackStream, error) {
	var errs []error

	for _, parser := range s.Parsers {
		var (
			r       io.Reader
			cleanup func()
			err     error
		)

		switch parser {
		case ParserKkdaiPipe:
			r, cleanup, err = s.kkdaiPipe(ctx, url)
		case ParserYTDLPPipe:
			r, cleanup, err = s.ytdlpPipe(ctx, url)
		default:
			err = fmt.Errorf("unknown parser %q", parser)
		}

		if err == nil {
			log.Debug().Str("component", "stream").Str("parser", parser).Str("url", url).Msg("Stream opened")
			return &TrackStream{Reader: r, Parser: parser, cleanup: cleanup}, nil
		}

		log.Warn().Str("component", "stream").Str("parser", parser).Str("url", url).Err(err).Msg("Parser failed, trying next")
		errs = append(errs, fmt.Errorf("%s: %w", parser, err))
	}

	return nil, fmt.Errorf("all parsers failed for %s: %w", url, errors.Join(errs...))
}

// ffmpegDecode builds an ffmpeg process reading encoded audio on stdin and
// writing PCM to stdout.
func (s *Streamer) ffmpegDecode(input io.Reader) (*proc, io.ReadCloser, error) {
	ffmpeg := exec.Command(s.FFmpegPath,
		"-i", "pipe:0",
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	ffmpeg.Stdin = input

	out, err := ffmpeg.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	return newProc("ffmpeg", ffmpeg), out, nil
}
