package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneWAVParses(t *testing.T) {
	format, pcm, err := parseWAV(ToneWAV())
	require.NoError(t, err)

	assert.Equal(t, wavFormat{SampleRate: 44100, Channels: 1, BitDepth: 16}, format)
	// three beeps, 300 ms apart, 2 bytes per sample
	assert.Len(t, pcm, 3*44100*300/1000*2)
}

func TestToneHasSilenceBetweenBeeps(t *testing.T) {
	_, pcm, err := parseWAV(ToneWAV())
	require.NoError(t, err)

	sample := func(ms int) int16 {
		i := 44100 * ms / 1000
		return int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	assert.NotZero(t, sample(10))
	assert.Zero(t, sample(250))
	assert.NotZero(t, sample(310))
	assert.Zero(t, sample(850))
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	_, _, err := parseWAV([]byte("hello"))
	assert.Error(t, err)

	_, _, err = parseWAV([]byte("RIFF\x00\x00\x00\x00WAVEjunk\x00\x00\x00\x00"))
	assert.Error(t, err)
}

func TestLooperStopWithoutStart(t *testing.T) {
	l := NewLooper(nil, nil)
	assert.NotPanics(t, l.Stop)
}
