// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// BMI270 register addresses used directly by this package.
const (
	RegChipID    byte = 0x00
	BMI270ChipID byte = 0x24
)

// BitField describes part of a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is metadata for one BMI270 register.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// Readable reports whether the register may be read without side effects.
func (r RegisterInfo) Readable() bool { return r.Access != "W" }

// BMI270RegisterMap returns the registers the probe tool reports on.
func BMI270RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: 0x00, Name: "CHIP_ID", Description: "Chip identification (0x24)", Access: "R"},
		{Address: 0x02, Name: "ERR_REG", Description: "Sensor error flags", Access: "R",
			BitFields: []BitField{
				{Bits: "0", Name: "fatal_err", Description: "Fatal error, chip not operable"},
				{Bits: "4:1", Name: "internal_err", Description: "Internal error code"},
				{Bits: "6", Name: "fifo_err", Description: "FIFO configuration error"},
				{Bits: "7", Name: "aux_err", Description: "Auxiliary interface error"},
			}},
		{Address: 0x03, Name: "STATUS", Description: "Data ready and busy flags", Access: "R",
			BitFields: []BitField{
				{Bits: "6", Name: "drdy_gyr", Description: "Gyroscope data ready"},
				{Bits: "7", Name: "drdy_acc", Description: "Accelerometer data ready"},
			}},

		// Sensor data
		{Address: 0x0C, Name: "ACC_X_LSB", Description: "Accelerometer X low byte", Access: "R"},
		{Address: 0x0D, Name: "ACC_X_MSB", Description: "Accelerometer X high byte", Access: "R"},
		{Address: 0x0E, Name: "ACC_Y_LSB", Description: "Accelerometer Y low byte", Access: "R"},
		{Address: 0x0F, Name: "ACC_Y_MSB", Description: "Accelerometer Y high byte", Access: "R"},
		{Address: 0x10, Name: "ACC_Z_LSB", Description: "Accelerometer Z low byte", Access: "R"},
		{Address: 0x11, Name: "ACC_Z_MSB", Description: "Accelerometer Z high byte", Access: "R"},
		{Address: 0x12, Name: "GYR_X_LSB", Description: "Gyroscope X low byte", Access: "R"},
		{Address: 0x13, Name: "GYR_X_MSB", Description: "Gyroscope X high byte", Access: "R"},
		{Address: 0x14, Name: "GYR_Y_LSB", Description: "Gyroscope Y low byte", Access: "R"},
		{Address: 0x15, Name: "GYR_Y_MSB", Description: "Gyroscope Y high byte", Access: "R"},
		{Address: 0x16, Name: "GYR_Z_LSB", Description: "Gyroscope Z low byte", Access: "R"},
		{Address: 0x17, Name: "GYR_Z_MSB", Description: "Gyroscope Z high byte", Access: "R"},
		{Address: 0x21, Name: "INTERNAL_STATUS", Description: "Initialisation status", Access: "R",
			BitFields: []BitField{
				{Bits: "3:0", Name: "message", Description: "Init state", Values: "0=not_init, 1=init_ok, 2=init_err"},
			}},

		// Configuration
		{Address: 0x40, Name: "ACC_CONF", Description: "Accelerometer ODR and bandwidth", Access: "RW",
			BitFields: []BitField{
				{Bits: "3:0", Name: "acc_odr", Description: "Output data rate", Values: "0x08=100Hz, 0x0C=1600Hz"},
				{Bits: "6:4", Name: "acc_bwp", Description: "Bandwidth / averaging"},
				{Bits: "7", Name: "acc_filter_perf", Description: "Filter performance mode"},
			}},
		{Address: 0x41, Name: "ACC_RANGE", Description: "Accelerometer full scale", Access: "RW",
			BitFields: []BitField{
				{Bits: "1:0", Name: "acc_range", Description: "Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: 0x42, Name: "GYR_CONF", Description: "Gyroscope ODR and bandwidth", Access: "RW"},
		{Address: 0x43, Name: "GYR_RANGE", Description: "Gyroscope full scale", Access: "RW",
			BitFields: []BitField{
				{Bits: "2:0", Name: "gyr_range", Description: "Range", Values: "0=±2000°/s, 1=±1000°/s, 2=±500°/s, 3=±250°/s, 4=±125°/s"},
			}},
		{Address: 0x7C, Name: "PWR_CONF", Description: "Power mode configuration", Access: "RW"},
		{Address: 0x7D, Name: "PWR_CTRL", Description: "Sensor enable", Access: "RW",
			BitFields: []BitField{
				{Bits: "1", Name: "gyr_en", Description: "Gyroscope enable"},
				{Bits: "2", Name: "acc_en", Description: "Accelerometer enable"},
			}},
		{Address: 0x7E, Name: "CMD", Description: "Command register", Access: "W"},
	}
}

// RegisterValue is one register read back from the device.
type RegisterValue struct {
	RegisterInfo
	Value byte `json:"value"`
}

// DumpRegisters reads every readable register in regs, one transaction
// each. It stops at the first bus error.
func DumpRegisters(dev txer, regs []RegisterInfo) ([]RegisterValue, error) {
	out := make([]RegisterValue, 0, len(regs))
	for _, r := range regs {
		if !r.Readable() {
			continue
		}
		var v [1]byte
		if err := dev.Tx([]byte{r.Address}, v[:]); err != nil {
			return out, fmt.Errorf("read %s (0x%02X): %w", r.Name, r.Address, err)
		}
		out = append(out, RegisterValue{RegisterInfo: r, Value: v[0]})
	}
	return out, nil
}
