// Package audio loops the alarm tone through the default output device
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// ErrNoDevice is returned when no output device could be opened
var ErrNoDevice = errors.New("audio: output device unavailable")

// oto allows a single context per process
var (
	ctxOnce sync.Once
	ctxErr  error
	otoCtx  *oto.Context
)

type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func openContext(format wavFormat) (*oto.Context, error) {
	ctxOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			ctxErr = fmt.Errorf("%w: %v", ErrNoDevice, err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, ctxErr
}

// Looper plays a WAV clip over and over until stopped. A Looper may be
// started again after Stop.
type Looper struct {
	wav    []byte
	logger *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewLooper prepares a looper for wav; nil selects the built-in tone
func NewLooper(wav []byte, logger *zap.Logger) *Looper {
	if wav == nil {
		wav = ToneWAV()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Looper{wav: wav, logger: logger}
}

// Start begins playback. Starting a running looper does nothing.
func (l *Looper) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		return nil
	}

	format, pcm, err := parseWAV(l.wav)
	if err != nil {
		return fmt.Errorf("parse alarm tone: %w", err)
	}
	ctx, err := openContext(format)
	if err != nil {
		return err
	}

	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.loop(ctx, pcm, l.stop, l.done)
	l.logger.Debug("Alarm tone started")
	return nil
}

// Stop halts playback and waits for the player to close
func (l *Looper) Stop() {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	l.logger.Debug("Alarm tone stopped")
}

func (l *Looper) loop(ctx *oto.Context, pcm []byte, stop, done chan struct{}) {
	defer close(done)
	for {
		p := ctx.NewPlayer(bytes.NewReader(pcm))
		p.Play()
		for p.IsPlaying() {
			select {
			case <-stop:
				p.Pause()
				_ = p.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		if err := p.Close(); err != nil {
			l.logger.Warn("Closing audio player failed", zap.Error(err))
		}

		select {
		case <-stop:
			return
		default:
		}
	}
}

// parseWAV reads the fmt and data chunks of a PCM WAV file
func parseWAV(data []byte) (wavFormat, []byte, error) {
	var format wavFormat
	r := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return format, nil, fmt.Errorf("read header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return format, nil, errors.New("not a RIFF/WAVE file")
	}

	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return format, nil, errors.New("missing data chunk")
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return format, nil, err
		}

		switch string(id[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return format, nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format = wavFormat{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.Channels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			if size > 16 {
				if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return format, nil, err
				}
			}
		case "data":
			if format.SampleRate == 0 {
				return format, nil, errors.New("data chunk before fmt chunk")
			}
			if format.BitDepth != 16 {
				return format, nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
			}
			pcm := make([]byte, size)
			n, err := io.ReadFull(r, pcm)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				return format, nil, err
			}
			return format, pcm[:n], nil
		default:
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return format, nil, err
			}
		}
	}
}
