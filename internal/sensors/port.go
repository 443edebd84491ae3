// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// Port is the raw sensor capability the pipeline samples from. Both reads
// block until the bus transaction completes.
type Port interface {
	// ReadInertial returns one accel+gyro register burst (imu.BurstLen
	// bytes, big-endian int16 triplets).
	ReadInertial() ([]byte, error)
	// ReadFlexRaw returns one flex-sensor ADC count.
	ReadFlexRaw() (uint16, error)
}
