package stream

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

func (s *Streamer) ytdlpPipe(_ context.Context, url string) (io.Reader, func(), error) {
	ytdlp := exec.Command(s.YTDLPPath,
		"--quiet",
		"--no-playlist",
		"-f", "bestaudio",
		"-o", "-",
		url,
	)

	ytdlpOut, err := ytdlp.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("yt-dlp stdout pipe: %w", err)
	}
	download := newProc("yt-dlp", ytdlp)

	ffmpeg, out, err := s.ffmpegDecode(ytdlpOut)
	if err != nil {
		return nil, nil, err
	}

	if err := ytdlp.Start(); err != nil {
		ytdlpOut.Close()
		return nil, nil, fmt.Errorf("yt-dlp start: %w", err)
	}
	if err := ffmpeg.cmd.Start(); err != nil {
		download.stop()
		ytdlpOut.Close()
		return nil, nil, fmt.Errorf("ffmpeg start: %w", err)
	}
	// ffmpeg holds its own copy; yt-dlp must see a broken pipe once ffmpeg exits
	ytdlpOut.Close()

	p := newPipeline(ffmpeg, download)
	pcm, err := startPCM(out, p)
	if err != nil {
		return nil, nil, err
	}
	return pcm, p.stop, nil
}
