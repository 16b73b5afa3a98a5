// Package audio provides WAV encode/decode and resampling helpers for the
// gateway. Engines return whole WAV files (or raw PCM for hosted engines);
// everything here operates on in-memory byte slices.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmBitDepth = 16

// Info describes the format of a WAV payload without decoding all samples.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Probe reads the WAV header and reports its format. It returns an error for
// anything that is not a well-formed WAV file.
func Probe(data []byte) (Info, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Info{}, fmt.Errorf("failed to read wav header: %w", err)
	}
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("not a valid wav file")
	}

	return Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}, nil
}

// Decode parses a WAV payload into an interleaved PCM buffer.
func Decode(data []byte) (*gaudio.IntBuffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("wav has no usable format information")
	}
	return buf, nil
}

// DurationMs returns the playback duration of a WAV payload in milliseconds.
func DurationMs(data []byte) (int64, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	dur, err := d.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to compute wav duration: %w", err)
	}
	return dur.Milliseconds(), nil
}

// Encode writes an interleaved PCM buffer as a 16-bit WAV file.
func Encode(buf *gaudio.IntBuffer) ([]byte, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("nil pcm buffer")
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, buf.Format.SampleRate, pcmBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close wav encoder: %w", err)
	}
	return out.data, nil
}

// EncodePCM16 wraps raw little-endian 16-bit PCM bytes in a WAV container.
// Used for engines that return bare PCM (Gemini returns 24 kHz mono PCM16).
func EncodePCM16(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm payload not 16-bit aligned")
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return Encode(&gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: pcmBitDepth,
		Data:           samples,
	})
}

// Resample converts a WAV payload to the target sample rate using linear
// interpolation, re-encoding at 16 bit. The input is returned unchanged when
// it is already at the target rate.
func Resample(data []byte, targetRate int) ([]byte, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("target sample rate must be positive, got %d", targetRate)
	}

	info, err := Probe(data)
	if err != nil {
		return nil, err
	}
	if info.SampleRate == targetRate {
		return data, nil
	}

	buf, err := Decode(data)
	if err != nil {
		return nil, err
	}

	channels := buf.Format.NumChannels
	srcFrames := len(buf.Data) / channels
	if srcFrames == 0 {
		return nil, fmt.Errorf("wav contains no audio frames")
	}

	ratio := float64(buf.Format.SampleRate) / float64(targetRate)
	dstFrames := int(math.Round(float64(srcFrames) * float64(targetRate) / float64(buf.Format.SampleRate)))
	if dstFrames < 1 {
		dstFrames = 1
	}

	resampled := make([]int, dstFrames*channels)
	for frame := 0; frame < dstFrames; frame++ {
		pos := float64(frame) * ratio
		i0 := int(pos)
		if i0 >= srcFrames-1 {
			i0 = srcFrames - 1
		}
		i1 := i0 + 1
		if i1 >= srcFrames {
			i1 = srcFrames - 1
		}
		frac := pos - float64(i0)

		for ch := 0; ch < channels; ch++ {
			s0 := float64(buf.Data[i0*channels+ch])
			s1 := float64(buf.Data[i1*channels+ch])
			resampled[frame*channels+ch] = int(math.Round(s0 + (s1-s0)*frac))
		}
	}

	return Encode(&gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: targetRate},
		SourceBitDepth: pcmBitDepth,
		Data:           resampled,
	})
}

// seekBuffer is a minimal in-memory io.WriteSeeker for the wav encoder, which
// needs to seek back and patch chunk sizes on Close.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(b.pos) + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek position %d", next)
	}
	b.pos = int(next)
	return next, nil
}
