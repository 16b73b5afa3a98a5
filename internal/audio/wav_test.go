package audio_test

import (
	"encoding/binary"
	"math"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanwoo-dev/melogate/internal/audio"
)

// sineWAV builds a small mono WAV fixture with a 440 Hz tone.
func sineWAV(t *testing.T, sampleRate int, frames int) []byte {
	t.Helper()

	data := make([]int, frames)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}

	wavData, err := audio.Encode(&gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           data,
	})
	require.NoError(t, err)
	return wavData
}

func TestEncodeProbeRoundtrip(t *testing.T) {
	t.Parallel()

	wavData := sineWAV(t, 22050, 2205)

	info, err := audio.Probe(wavData)
	require.NoError(t, err)
	assert.Equal(t, 22050, info.SampleRate)
	assert.Equal(t, 1, info.Channels)
	assert.Equal(t, 16, info.BitDepth)

	buf, err := audio.Decode(wavData)
	require.NoError(t, err)
	assert.Len(t, buf.Data, 2205)
}

func TestProbeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := audio.Probe([]byte("definitely not a wav file"))
	require.Error(t, err)
}

func TestEncodePCM16(t *testing.T) {
	t.Parallel()

	// 100 samples of raw little-endian PCM16
	pcm := make([]byte, 200)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(i*100)))
	}

	wavData, err := audio.EncodePCM16(pcm, 24000, 1)
	require.NoError(t, err)

	info, err := audio.Probe(wavData)
	require.NoError(t, err)
	assert.Equal(t, 24000, info.SampleRate)

	buf, err := audio.Decode(wavData)
	require.NoError(t, err)
	require.Len(t, buf.Data, 100)
	assert.Equal(t, 300, buf.Data[3])
}

func TestEncodePCM16RejectsOddLength(t *testing.T) {
	t.Parallel()

	_, err := audio.EncodePCM16([]byte{1, 2, 3}, 24000, 1)
	require.Error(t, err)
}

func TestResampleChangesRate(t *testing.T) {
	t.Parallel()

	wavData := sineWAV(t, 44100, 4410) // 100ms at 44.1kHz

	resampled, err := audio.Resample(wavData, 22050)
	require.NoError(t, err)

	info, err := audio.Probe(resampled)
	require.NoError(t, err)
	assert.Equal(t, 22050, info.SampleRate)

	// Halving the rate should halve the frame count, within rounding
	buf, err := audio.Decode(resampled)
	require.NoError(t, err)
	assert.InDelta(t, 2205, len(buf.Data), 2)
}

func TestResampleNoopAtSameRate(t *testing.T) {
	t.Parallel()

	wavData := sineWAV(t, 22050, 1000)

	out, err := audio.Resample(wavData, 22050)
	require.NoError(t, err)
	assert.Equal(t, wavData, out)
}

func TestResamplePreservesDuration(t *testing.T) {
	t.Parallel()

	wavData := sineWAV(t, 44100, 44100) // 1 second

	resampled, err := audio.Resample(wavData, 16000)
	require.NoError(t, err)

	ms, err := audio.DurationMs(resampled)
	require.NoError(t, err)
	assert.InDelta(t, 1000, ms, 5)
}

func TestDurationMs(t *testing.T) {
	t.Parallel()

	wavData := sineWAV(t, 22050, 11025) // 500ms

	ms, err := audio.DurationMs(wavData)
	require.NoError(t, err)
	assert.InDelta(t, 500, ms, 2)
}
