// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// BurstLen is the size of one accel+gyro register burst.
const BurstLen = 12

// DataReg is the BMI270 register the default burst read starts at.
const DataReg byte = 0x12

// ErrShortBurst is returned when a register burst does not carry exactly
// BurstLen bytes.
var ErrShortBurst = errors.New("imu: malformed register burst")

// IMURaw represents a single raw accel+gyro sample in sensor counts.
type IMURaw struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// DecodeBurst interprets b as six big-endian two's-complement int16 values:
// accel X/Y/Z followed by gyro X/Y/Z.
func DecodeBurst(b []byte) (IMURaw, error) {
	if len(b) != BurstLen {
		return IMURaw{}, fmt.Errorf("%w: got %d bytes, want %d", ErrShortBurst, len(b), BurstLen)
	}
	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(b[i : i+2])) }
	return IMURaw{
		Ax: word(0),
		Ay: word(2),
		Az: word(4),
		Gx: word(6),
		Gy: word(8),
		Gz: word(10),
	}, nil
}

// EncodeBurst is the inverse of DecodeBurst. Synthetic sources use it to
// produce bytes in the same layout as the hardware.
func EncodeBurst(r IMURaw) []byte {
	b := make([]byte, BurstLen)
	for i, v := range []int16{r.Ax, r.Ay, r.Az, r.Gx, r.Gy, r.Gz} {
		binary.BigEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}
