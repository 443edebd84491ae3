// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/signspeak/internal/decision"
	"github.com/relabs-tech/signspeak/internal/imu"
)

// Config holds all application configuration values.
type Config struct {
	// I2C Hardware
	I2CBus     string // "" picks the first bus
	IMUI2CAddr uint16
	IMUDataReg byte
	ADCI2CAddr uint16
	ADCChannel int

	// Calibration
	AccelLSBPerG        float64
	GyroLSBPerDPS       float64
	FlexSupplyVoltage   float64
	ADCReferenceVoltage float64 // 0 means same as FlexSupplyVoltage
	ADCFullScaleCounts  float64
	FlexDividerOhms     float64
	FlexMinOhms         float64
	FlexMaxOhms         float64
	FlexMinAngle        float64
	FlexMaxAngle        float64

	// Timing
	SampleInterval int // milliseconds
	SettleInterval int // milliseconds

	// Model
	ModelPath            string
	ClassifierArenaBytes int    // 0 sizes the arena from the model
	GestureLabels        string // comma separated, training order

	// MQTT (on-board broker only)
	MQTTBroker           string
	MQTTClientIDPipeline string
	MQTTClientIDConsole  string
	TopicGesture         string

	// Display
	DisplayEnabled bool
	DisplayI2CBus  string

	// Button trigger and audio
	ButtonPin        string // "" runs cycles back to back
	CountdownSeconds int
	AudioPWMPin      string // "" disables playback
	AudioDir         string
	AudioCarrierHz   int

	// Console UART
	ConsoleSerialPort string
	ConsoleBaudRate   int

	// Logging
	LogLevel string
}

// globalConfig is only reachable through InitGlobal and Get. configOnce makes
// InitGlobal idempotent; configMu lets many readers call Get concurrently.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the glove's canonical configuration. A config file only
// needs to list the keys it changes.
func Default() *Config {
	return &Config{
		IMUI2CAddr: 0x68,
		IMUDataReg: imu.DataReg,
		ADCI2CAddr: 0x48,
		ADCChannel: 0,

		AccelLSBPerG:       16384,
		GyroLSBPerDPS:      131,
		FlexSupplyVoltage:  3.3,
		ADCFullScaleCounts: 4095,
		FlexDividerOhms:    10000,
		FlexMinOhms:        25000,
		FlexMaxOhms:        100000,
		FlexMinAngle:       0,
		FlexMaxAngle:       90,

		SampleInterval: 250,
		SettleInterval: 2000,

		GestureLabels: decision.DefaultLabels.String(),

		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDPipeline: "signspeak-pipeline",
		MQTTClientIDConsole:  "signspeak-console",
		TopicGesture:         "signspeak/gesture",

		CountdownSeconds: 3,
		AudioDir:         "./sounds",
		AudioCarrierHz:   44000,

		ConsoleBaudRate: 115200,

		LogLevel: "info",
	}
}

// Load reads the configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if addr > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, addr)
	}
	return uint16(addr), nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func parseMillis(key, value string) (int, error) {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %d", key, ms)
	}
	return ms, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// I2C Hardware
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_I2C_ADDR":
		c.IMUI2CAddr, err = parseAddr(key, value)
	case "IMU_DATA_REG":
		reg, perr := strconv.ParseUint(value, 0, 8)
		if perr != nil {
			return fmt.Errorf("invalid IMU_DATA_REG %q: %w", value, perr)
		}
		c.IMUDataReg = byte(reg)
	case "ADC_I2C_ADDR":
		c.ADCI2CAddr, err = parseAddr(key, value)
	case "ADC_CHANNEL":
		ch, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid ADC_CHANNEL %q: %w", value, perr)
		}
		if ch < 0 || ch > 3 {
			return fmt.Errorf("ADC_CHANNEL must be 0-3, got %d", ch)
		}
		c.ADCChannel = ch

	// Calibration
	case "ACCEL_LSB_PER_G":
		c.AccelLSBPerG, err = parseFloat(key, value)
	case "GYRO_LSB_PER_DPS":
		c.GyroLSBPerDPS, err = parseFloat(key, value)
	case "FLEX_SUPPLY_VOLTAGE":
		c.FlexSupplyVoltage, err = parseFloat(key, value)
	case "ADC_REFERENCE_VOLTAGE":
		c.ADCReferenceVoltage, err = parseFloat(key, value)
	case "ADC_FULL_SCALE_COUNTS":
		c.ADCFullScaleCounts, err = parseFloat(key, value)
	case "FLEX_DIVIDER_OHMS":
		c.FlexDividerOhms, err = parseFloat(key, value)
	case "FLEX_MIN_OHMS":
		c.FlexMinOhms, err = parseFloat(key, value)
	case "FLEX_MAX_OHMS":
		c.FlexMaxOhms, err = parseFloat(key, value)
	case "FLEX_MIN_ANGLE":
		c.FlexMinAngle, err = parseFloat(key, value)
	case "FLEX_MAX_ANGLE":
		c.FlexMaxAngle, err = parseFloat(key, value)

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parseMillis(key, value)
	case "SETTLE_INTERVAL":
		c.SettleInterval, err = parseMillis(key, value)

	// Model
	case "MODEL_PATH":
		c.ModelPath = value
	case "CLASSIFIER_ARENA_BYTES":
		n, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid CLASSIFIER_ARENA_BYTES %q: %w", value, perr)
		}
		if n < 0 {
			return fmt.Errorf("CLASSIFIER_ARENA_BYTES must be >= 0, got %d", n)
		}
		c.ClassifierArenaBytes = n
	case "GESTURE_LABELS":
		c.GestureLabels = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PIPELINE":
		c.MQTTClientIDPipeline = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_GESTURE":
		c.TopicGesture = value

	// Display
	case "DISPLAY_ENABLED":
		on, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, perr)
		}
		c.DisplayEnabled = on
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	// Button trigger and audio
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "COUNTDOWN_SECONDS":
		n, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid COUNTDOWN_SECONDS %q: %w", value, perr)
		}
		if n < 0 {
			return fmt.Errorf("COUNTDOWN_SECONDS must be >= 0, got %d", n)
		}
		c.CountdownSeconds = n
	case "AUDIO_PWM_PIN":
		c.AudioPWMPin = value
	case "AUDIO_DIR":
		c.AudioDir = value
	case "AUDIO_CARRIER_HZ":
		hz, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid AUDIO_CARRIER_HZ %q: %w", value, perr)
		}
		c.AudioCarrierHz = hz

	// Console UART
	case "CONSOLE_SERIAL_PORT":
		c.ConsoleSerialPort = value
	case "CONSOLE_BAUD_RATE":
		rate, perr := strconv.Atoi(value)
		if perr != nil {
			return fmt.Errorf("invalid CONSOLE_BAUD_RATE %q: %w", value, perr)
		}
		c.ConsoleBaudRate = rate

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that the combined values are usable.
func (c *Config) validate() error {
	if c.AccelLSBPerG <= 0 {
		return fmt.Errorf("ACCEL_LSB_PER_G must be > 0")
	}
	if c.GyroLSBPerDPS <= 0 {
		return fmt.Errorf("GYRO_LSB_PER_DPS must be > 0")
	}
	if c.FlexSupplyVoltage <= 0 {
		return fmt.Errorf("FLEX_SUPPLY_VOLTAGE must be > 0")
	}
	if c.ADCReferenceVoltage < 0 {
		return fmt.Errorf("ADC_REFERENCE_VOLTAGE must be >= 0")
	}
	if c.ADCFullScaleCounts <= 0 || c.ADCFullScaleCounts > math.MaxUint16 || c.ADCFullScaleCounts != math.Trunc(c.ADCFullScaleCounts) {
		return fmt.Errorf("ADC_FULL_SCALE_COUNTS must be a whole count in 1-65535")
	}
	if c.FlexMinOhms == c.FlexMaxOhms {
		return fmt.Errorf("FLEX_MIN_OHMS and FLEX_MAX_OHMS must differ")
	}
	if c.GestureLabels == "" && c.ModelPath == "" {
		return fmt.Errorf("GESTURE_LABELS is required when MODEL_PATH is unset")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGesture == "" {
		return fmt.Errorf("TOPIC_GESTURE is required")
	}
	if c.AudioPWMPin != "" && c.AudioCarrierHz <= 0 {
		return fmt.Errorf("AUDIO_CARRIER_HZ must be > 0 with AUDIO_PWM_PIN")
	}
	if c.ConsoleSerialPort != "" && c.ConsoleBaudRate <= 0 {
		return fmt.Errorf("CONSOLE_BAUD_RATE is required with CONSOLE_SERIAL_PORT")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads; later calls return nil without reading.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
