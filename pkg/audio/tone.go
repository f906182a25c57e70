package audio

import (
	"bytes"
	"encoding/binary"
)

const (
	toneSampleRate = 44100
	toneFrequency  = 880
	toneAmplitude  = 0.3
	toneBeeps      = 3
	toneBeepMs     = 200
	toneSpacingMs  = 300
)

// ToneWAV synthesises the alarm tone: three 200 ms square-wave beeps at
// 880 Hz, one every 300 ms, as 16-bit mono PCM.
func ToneWAV() []byte {
	spacing := toneSampleRate * toneSpacingMs / 1000
	beep := toneSampleRate * toneBeepMs / 1000
	total := spacing * toneBeeps
	period := float64(toneSampleRate) / toneFrequency
	peak := int16(toneAmplitude * 32767)

	samples := make([]int16, total)
	for b := 0; b < toneBeeps; b++ {
		start := b * spacing
		for i := 0; i < beep; i++ {
			phase := float64(i) / period
			if phase-float64(int(phase)) < 0.5 {
				samples[start+i] = peak
			} else {
				samples[start+i] = -peak
			}
		}
	}

	dataSize := uint32(total * 2)
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Size          uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, 1, 1, toneSampleRate, toneSampleRate * 2, 2, 16})
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}
