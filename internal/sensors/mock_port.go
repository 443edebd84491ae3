// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/signspeak/internal/clock"
	"github.com/relabs-tech/signspeak/internal/imu"
)

// MockPort generates smooth synthetic readings without hardware.
type MockPort struct {
	clk       clock.Clock
	start     time.Time
	fullScale uint16
}

// NewMockPort returns a Port whose readings follow slow sine waves of the
// time reported by clk. Flex counts stay inside [fullScale/8, fullScale].
func NewMockPort(clk clock.Clock, fullScale uint16) *MockPort {
	return &MockPort{clk: clk, start: clk.Now(), fullScale: fullScale}
}

func (m *MockPort) elapsed() float64 {
	return m.clk.Now().Sub(m.start).Seconds()
}

func (m *MockPort) ReadInertial() ([]byte, error) {
	t := m.elapsed()
	raw := imu.IMURaw{
		Ax: int16(0.3 * 16384 * math.Sin(t)),
		Ay: int16(0.2 * 16384 * math.Cos(t*0.7)),
		Az: int16(16384 * math.Cos(0.3*math.Sin(t))),
		Gx: int16(131 * 40 * math.Cos(t)),
		Gy: int16(131 * -20 * math.Sin(t*0.7)),
		Gz: int16(131 * 5 * math.Sin(t*1.3)),
	}
	return imu.EncodeBurst(raw), nil
}

func (m *MockPort) ReadFlexRaw() (uint16, error) {
	t := m.elapsed()
	lo := float64(m.fullScale) / 8
	span := float64(m.fullScale) - lo
	return uint16(lo + span*(0.5+0.5*math.Sin(t*0.5))), nil
}
