package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"layeh.com/gopus"
)

const maxOpusBytes = frameSize * channels * 2

// SendOpus reads PCM from pcm, applies the current volume to every frame,
// encodes it to opus and pushes packets into out. It returns nil when the
// stream ends and ctx.Err() when ctx is cancelled first.
func SendOpus(ctx context.Context, pcm io.Reader, out chan<- []byte, volume func() int) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("opus encoder: %w", err)
	}

	pcmBuf := make([]byte, frameSize*channels*2)
	samples := make([]int16, frameSize*channels)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := io.ReadFull(pcm, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read pcm: %w", err)
		}

		decodeFrame(pcmBuf, samples)
		applyVolume(samples, volume())

		packet, err := encoder.Encode(samples, frameSize, maxOpusBytes)
		if err != nil {
			return fmt.Errorf("opus encode: %w", err)
		}

		select {
		case out <- packet:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func decodeFrame(src []byte, dst []int16) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
}

// applyVolume scales samples in place. 50 is unity gain, 100 doubles the
// amplitude; results are clipped to the int16 range.
func applyVolume(samples []int16, volume int) {
	if volume == 50 {
		return
	}
	gain := float64(max(volume, 0)) / 50
	for i, s := range samples {
		v := math.Round(float64(s) * gain)
		samples[i] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
}
