// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/signspeak/internal/clock"
)

// ErrWAV is returned for sound files the speaker cannot play.
var ErrWAV = errors.New("speaker: unsupported WAV")

// pwmPin is the part of gpio.PinOut the speaker drives.
type pwmPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
	Out(l gpio.Level) error
}

// Speaker says each recognized gesture by playing <dir>/<label>.wav as a
// stream of PWM duty cycles on one pin.
type Speaker struct {
	pin     pwmPin
	dir     string
	carrier physic.Frequency
	clk     clock.Clock
	clips   map[string]clip
}

type clip struct {
	duty []gpio.Duty
	rate int
}

// OpenSpeaker claims the named PWM-capable pin (e.g. "P9_14").
func OpenSpeaker(pinName, dir string, carrierHz int) (*Speaker, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("speaker: periph host init: %w", err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("speaker: pin %q not found", pinName)
	}
	return newSpeaker(p, dir, physic.Frequency(carrierHz)*physic.Hertz, clock.Real()), nil
}

func newSpeaker(pin pwmPin, dir string, carrier physic.Frequency, clk clock.Clock) *Speaker {
	return &Speaker{pin: pin, dir: dir, carrier: carrier, clk: clk, clips: map[string]clip{}}
}

// Report plays the clip for gesture events and ignores faults. It returns
// once the clip has finished.
func (s *Speaker) Report(e Event) error {
	if e.Kind != KindGesture {
		return nil
	}
	c, err := s.load(e.Label)
	if err != nil {
		return err
	}
	return s.play(c)
}

func (s *Speaker) load(label string) (clip, error) {
	if c, ok := s.clips[label]; ok {
		return c, nil
	}
	path := filepath.Join(s.dir, filepath.Base(label)+".wav")
	f, err := os.Open(path)
	if err != nil {
		return clip{}, fmt.Errorf("speaker: %w", err)
	}
	defer f.Close()

	samples, rate, err := decodeWAV(f)
	if err != nil {
		return clip{}, fmt.Errorf("%s: %w", path, err)
	}
	c := clip{duty: dutyCycles(samples), rate: rate}
	s.clips[label] = c
	return c, nil
}

// play holds sample i until start + (i+1)/rate, then drives the pin low.
func (s *Speaker) play(c clip) (err error) {
	defer func() {
		if oerr := s.pin.Out(gpio.Low); oerr != nil && err == nil {
			err = fmt.Errorf("speaker: stop: %w", oerr)
		}
	}()

	frame := time.Second / time.Duration(c.rate)
	start := s.clk.Now()
	for i, d := range c.duty {
		if err := s.pin.PWM(d, s.carrier); err != nil {
			return fmt.Errorf("speaker: pwm: %w", err)
		}
		if wait := start.Add(time.Duration(i+1) * frame).Sub(s.clk.Now()); wait > 0 {
			s.clk.Sleep(wait)
		}
	}
	return nil
}

// dutyCycles stretches samples over the full duty range.
func dutyCycles(samples []int) []gpio.Duty {
	if len(samples) == 0 {
		return nil
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]gpio.Duty, len(samples))
	for i, v := range samples {
		if hi == lo {
			out[i] = gpio.DutyHalf
			continue
		}
		out[i] = gpio.Duty(int64(v-lo) * int64(gpio.DutyMax) / int64(hi-lo))
	}
	return out
}

// decodeWAV reads a mono 8 or 16 bit PCM RIFF file into signed samples.
func decodeWAV(r io.Reader) ([]int, int, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: short header", ErrWAV)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("%w: not RIFF/WAVE", ErrWAV)
	}

	var (
		format, channels, bits uint16
		rate                   uint32
		haveFmt                bool
	)
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return nil, 0, fmt.Errorf("%w: no data chunk", ErrWAV)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("%w: fmt chunk of %d bytes", ErrWAV, size)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("%w: truncated fmt chunk", ErrWAV)
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			rate = binary.LittleEndian.Uint32(body[4:8])
			bits = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, 0, fmt.Errorf("%w: data before fmt", ErrWAV)
			}
			if format != 1 || channels != 1 || rate == 0 {
				return nil, 0, fmt.Errorf("%w: format %d, %d channels, %d Hz (want mono PCM)", ErrWAV, format, channels, rate)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, 0, fmt.Errorf("%w: truncated data chunk", ErrWAV)
			}
			switch bits {
			case 8:
				out := make([]int, len(body))
				for i, b := range body {
					out[i] = int(b) - 128
				}
				return out, int(rate), nil
			case 16:
				out := make([]int, len(body)/2)
				for i := range out {
					out[i] = int(int16(binary.LittleEndian.Uint16(body[2*i:])))
				}
				return out, int(rate), nil
			}
			return nil, 0, fmt.Errorf("%w: %d-bit samples", ErrWAV, bits)

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, 0, fmt.Errorf("%w: truncated %q chunk", ErrWAV, id)
			}
		}
		// chunks are word aligned
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return nil, 0, fmt.Errorf("%w: truncated padding", ErrWAV)
			}
		}
	}
}
