package stream

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

const metadataTimeout = 15 * time.Second

func (s *Streamer) kkdaiPipe(ctx context.Context, url string) (io.Reader, func(), error) {
	client := &youtube.Client{HTTPClient: s.HTTPClient}

	videoCtx, cancel := context.WithTimeout(ctx, metadataTimeout)
	video, err := client.GetVideoContext(videoCtx, url)
	cancel()
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client: %w", err)
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return nil, nil, ErrNoAudio
	}

	// the download outlives the request that started it
	body, _, err := client.GetStreamContext(context.WithoutCancel(ctx), video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("get stream: %w", err)
	}

	// an explicit pipe keeps ffmpeg's Wait independent of the download
	stdin, feed, err := os.Pipe()
	if err != nil {
		body.Close()
		return nil, nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}

	ffmpeg, out, err := s.ffmpegDecode(stdin)
	if err != nil {
		body.Close()
		stdin.Close()
		feed.Close()
		return nil, nil, err
	}
	if err := ffmpeg.cmd.Start(); err != nil {
		body.Close()
		stdin.Close()
		feed.Close()
		return nil, nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	stdin.Close()

	download := startCopier("download", body, feed)
	p := newPipeline(ffmpeg, download)
	pcm, err := startPCM(out, p)
	if err != nil {
		return nil, nil, err
	}
	return pcm, p.stop, nil
}

// bestAudioFormat prefers audio-only formats, highest bitrate first, and
// falls back to any format that carries audio.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best, fallback *youtube.Format

	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		if strings.HasPrefix(f.MimeType, "audio/") {
			if best == nil || f.Bitrate > best.Bitrate {
				best = f
			}
			continue
		}
		if fallback == nil || f.Bitrate > fallback.Bitrate {
			fallback = f
		}
	}

	if best != nil {
		return best
	}
	return fallback
}
