// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package convert turns raw sensor counts into physical units.
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/relabs-tech/signspeak/internal/imu"
	"github.com/relabs-tech/signspeak/internal/window"
)

// ErrSensorFault marks a reading that could not be converted faithfully.
// The accompanying value is a substituted boundary, never NaN or Inf.
var ErrSensorFault = errors.New("sensor fault")

// Calibration holds every constant the conversions depend on.
type Calibration struct {
	// AccelLSBPerG is counts per g (16384 at ±2g full scale).
	AccelLSBPerG float64
	// GyroLSBPerDPS is counts per deg/s (131 at ±250 deg/s full scale).
	GyroLSBPerDPS float64

	// SupplyVoltage drives the flex voltage divider.
	SupplyVoltage float64
	// ADCReferenceVoltage is the voltage at ADCFullScaleCounts. Zero means
	// the ADC is referenced to SupplyVoltage.
	ADCReferenceVoltage float64
	// ADCFullScaleCounts is 2^bits - 1 for the flex ADC.
	ADCFullScaleCounts float64

	DividerOhms float64 // fixed resistor of the divider
	FlexMinOhms float64 // resistance at MinAngle
	FlexMaxOhms float64 // resistance at MaxAngle
	MinAngle    float64 // degrees
	MaxAngle    float64 // degrees
}

// DefaultCalibration is the canonical 12-bit, 3.3 V calibration.
func DefaultCalibration() Calibration {
	return Calibration{
		AccelLSBPerG:       16384.0,
		GyroLSBPerDPS:      131.0,
		SupplyVoltage:      3.3,
		ADCFullScaleCounts: 4095,
		DividerOhms:        10000.0,
		FlexMinOhms:        25000.0,
		FlexMaxOhms:        100000.0,
		MinAngle:           0.0,
		MaxAngle:           90.0,
	}
}

// Validate rejects calibrations that would divide by zero.
func (c Calibration) Validate() error {
	switch {
	case c.AccelLSBPerG == 0:
		return fmt.Errorf("calibration: accel sensitivity must be non-zero")
	case c.GyroLSBPerDPS == 0:
		return fmt.Errorf("calibration: gyro sensitivity must be non-zero")
	case c.SupplyVoltage <= 0:
		return fmt.Errorf("calibration: supply voltage must be positive, got %v", c.SupplyVoltage)
	case c.ADCReferenceVoltage < 0:
		return fmt.Errorf("calibration: ADC reference voltage must not be negative, got %v", c.ADCReferenceVoltage)
	case c.ADCFullScaleCounts <= 0:
		return fmt.Errorf("calibration: ADC full scale must be positive, got %v", c.ADCFullScaleCounts)
	case c.DividerOhms <= 0:
		return fmt.Errorf("calibration: divider resistance must be positive, got %v", c.DividerOhms)
	case c.FlexMinOhms == c.FlexMaxOhms:
		return fmt.Errorf("calibration: flex min and max resistance must differ")
	case c.MinAngle == c.MaxAngle:
		return fmt.Errorf("calibration: min and max angle must differ")
	}
	return nil
}

func (c Calibration) reference() float64 {
	if c.ADCReferenceVoltage == 0 {
		return c.SupplyVoltage
	}
	return c.ADCReferenceVoltage
}

// LinearMap maps x from [inMin, inMax] onto [outMin, outMax]. The
// endpoints map exactly; inMin must differ from inMax.
func LinearMap(x, inMin, inMax, outMin, outMax float64) float64 {
	switch x {
	case inMin:
		return outMin
	case inMax:
		return outMax
	}
	return outMin + (x-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Clamp limits x to [lo, hi]. NaN clamps to lo.
func Clamp(x, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if x > hi {
		return hi
	}
	if x >= lo {
		return x
	}
	return lo
}

// Converter applies one Calibration.
type Converter struct {
	cal Calibration
}

// New validates cal and returns a Converter for it.
func New(cal Calibration) (*Converter, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &Converter{cal: cal}, nil
}

// Calibration returns the calibration in use.
func (c *Converter) Calibration() Calibration { return c.cal }

// Inertial converts raw counts into g and deg/s.
func (c *Converter) Inertial(raw imu.IMURaw) (accel, gyro [3]float32) {
	a, g := c.cal.AccelLSBPerG, c.cal.GyroLSBPerDPS
	accel = [3]float32{
		float32(float64(raw.Ax) / a),
		float32(float64(raw.Ay) / a),
		float32(float64(raw.Az) / a),
	}
	gyro = [3]float32{
		float32(float64(raw.Gx) / g),
		float32(float64(raw.Gy) / g),
		float32(float64(raw.Gz) / g),
	}
	return accel, gyro
}

// openCircuitAngle is the clamped angle that resistance -> +Inf approaches.
func (c *Converter) openCircuitAngle() float64 {
	slope := (c.cal.MaxAngle - c.cal.MinAngle) / (c.cal.FlexMaxOhms - c.cal.FlexMinOhms)
	if slope > 0 {
		return math.Max(c.cal.MinAngle, c.cal.MaxAngle)
	}
	return math.Min(c.cal.MinAngle, c.cal.MaxAngle)
}

// FlexAngle converts one ADC count into a bend angle in degrees. The result
// is always finite and inside [MinAngle, MaxAngle]. When the reading cannot
// be converted (zero voltage, count above full scale) the open-circuit
// boundary angle is returned together with an ErrSensorFault.
func (c *Converter) FlexAngle(raw uint16) (float32, error) {
	cal := c.cal
	if float64(raw) > cal.ADCFullScaleCounts {
		return float32(c.openCircuitAngle()),
			fmt.Errorf("%w: flex ADC count %d above full scale %v", ErrSensorFault, raw, cal.ADCFullScaleCounts)
	}

	voltage := float64(raw) * (cal.reference() / cal.ADCFullScaleCounts)
	if voltage == 0 {
		return float32(c.openCircuitAngle()),
			fmt.Errorf("%w: flex divider voltage is zero", ErrSensorFault)
	}

	resistance := cal.DividerOhms * (cal.SupplyVoltage/voltage - 1.0)
	angle := LinearMap(resistance, cal.FlexMinOhms, cal.FlexMaxOhms, cal.MinAngle, cal.MaxAngle)
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return float32(c.openCircuitAngle()),
			fmt.Errorf("%w: flex angle not finite (resistance %v ohm)", ErrSensorFault, resistance)
	}
	return float32(Clamp(angle, cal.MinAngle, cal.MaxAngle)), nil
}

// Sample converts one register burst and one flex count into a Sample.
// On error the returned Sample still carries finite values, but it must not
// be fed into a window.
func (c *Converter) Sample(burst []byte, flexRaw uint16) (window.Sample, error) {
	var s window.Sample

	angle, flexErr := c.FlexAngle(flexRaw)
	s.FlexAngle = angle

	raw, err := imu.DecodeBurst(burst)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrSensorFault, err)
	}
	s.Accel, s.Gyro = c.Inertial(raw)

	if flexErr != nil {
		return s, flexErr
	}
	return s, nil
}
