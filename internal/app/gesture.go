// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/signspeak/internal/classifier"
	"github.com/relabs-tech/signspeak/internal/clock"
	"github.com/relabs-tech/signspeak/internal/config"
	"github.com/relabs-tech/signspeak/internal/convert"
	"github.com/relabs-tech/signspeak/internal/decision"
	"github.com/relabs-tech/signspeak/internal/pipeline"
	"github.com/relabs-tech/signspeak/internal/report"
	"github.com/relabs-tech/signspeak/internal/sensors"
	"github.com/relabs-tech/signspeak/internal/window"
)

// RunGesturePipeline runs the glove pipeline on the real I²C bus until
// SIGINT/SIGTERM.
func RunGesturePipeline() error {
	cfg := config.Get()
	setupLogging(cfg.LogLevel)
	log.Info().Msg("starting signspeak gesture pipeline (glove → gesture)")

	if cfg.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required for the hardware pipeline")
	}

	port, err := sensors.NewBusPortFromConfig()
	if err != nil {
		return err
	}
	defer port.Close()

	return runPipeline(cfg, port, clock.Real())
}

// RunMockPipeline runs the pipeline on synthetic sensor data. Without
// MODEL_PATH it classifies with fixed scores.
func RunMockPipeline() error {
	cfg := config.Get()
	setupLogging(cfg.LogLevel)
	log.Info().Msg("starting signspeak mock pipeline (synthetic glove → gesture)")

	clk := clock.Real()
	port := sensors.NewMockPort(clk, uint16(cfg.ADCFullScaleCounts))
	return runPipeline(cfg, port, clk)
}

func runPipeline(cfg *config.Config, port sensors.Port, clk clock.Clock) error {
	conv, err := convert.New(calibrationFromConfig(cfg))
	if err != nil {
		return err
	}

	cls, labels, err := buildClassifier(cfg)
	if err != nil {
		return err
	}

	trigger, err := buildTrigger(cfg)
	if err != nil {
		return err
	}

	reporter, prompter, closers := buildReporters(cfg)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	loop, err := pipeline.New(pipeline.Options{
		Port:           port,
		Converter:      conv,
		Classifier:     cls,
		Labels:         labels,
		Reporter:       reporter,
		Clock:          clk,
		SampleInterval: time.Duration(cfg.SampleInterval) * time.Millisecond,
		SettleInterval: time.Duration(cfg.SettleInterval) * time.Millisecond,
		Trigger:        trigger,
		Countdown:      cfg.CountdownSeconds,
		Prompter:       prompter,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("pipeline: shut down")
	return nil
}

func calibrationFromConfig(cfg *config.Config) convert.Calibration {
	return convert.Calibration{
		AccelLSBPerG:        cfg.AccelLSBPerG,
		GyroLSBPerDPS:       cfg.GyroLSBPerDPS,
		SupplyVoltage:       cfg.FlexSupplyVoltage,
		ADCReferenceVoltage: cfg.ADCReferenceVoltage,
		ADCFullScaleCounts:  cfg.ADCFullScaleCounts,
		DividerOhms:         cfg.FlexDividerOhms,
		FlexMinOhms:         cfg.FlexMinOhms,
		FlexMaxOhms:         cfg.FlexMaxOhms,
		MinAngle:            cfg.FlexMinAngle,
		MaxAngle:            cfg.FlexMaxAngle,
	}
}

// buildClassifier loads MODEL_PATH, or falls back to fixed scores when it is
// unset. Configured labels win over labels stored in the model file.
func buildClassifier(cfg *config.Config) (classifier.Classifier, decision.LabelTable, error) {
	if cfg.ModelPath == "" {
		labels, err := decision.ParseLabels(cfg.GestureLabels)
		if err != nil {
			return nil, nil, err
		}
		log.Warn().Msg("classifier: MODEL_PATH unset, using fixed scores")
		return classifier.NewStatic(window.FeatureLen, fixedScores(len(labels))...), labels, nil
	}

	m, err := classifier.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	arena := cfg.ClassifierArenaBytes
	if arena == 0 {
		arena = classifier.ArenaBytes(m)
	}
	mlp, err := classifier.NewMLP(m, arena)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("model", m.Name).
		Int("inputs", mlp.InputLen()).
		Int("outputs", mlp.OutputLen()).
		Int("arena_bytes", arena).
		Msg("classifier: model loaded")

	labels, err := resolveLabels(cfg.GestureLabels, mlp.Labels())
	if err != nil {
		return nil, nil, err
	}
	return mlp, labels, nil
}

func resolveLabels(configured string, fromModel []string) (decision.LabelTable, error) {
	if configured == "" {
		if len(fromModel) == 0 {
			return nil, fmt.Errorf("no gesture labels: set GESTURE_LABELS or add labels to the model")
		}
		return decision.LabelTable(fromModel), nil
	}

	labels, err := decision.ParseLabels(configured)
	if err != nil {
		return nil, err
	}
	if len(fromModel) > 0 && !slices.Equal([]string(labels), fromModel) {
		log.Warn().
			Str("config", labels.String()).
			Str("model", decision.LabelTable(fromModel).String()).
			Msg("classifier: GESTURE_LABELS differs from model labels, using config order")
	}
	return labels, nil
}

// fixedScores favours the first label and decreases from there.
func fixedScores(n int) []float32 {
	scores := make([]float32, n)
	for i := range scores {
		scores[i] = 1 / float32(i+1)
	}
	return scores
}

// buildTrigger opens BUTTON_PIN. Without one, cycles run back to back.
func buildTrigger(cfg *config.Config) (pipeline.Trigger, error) {
	if cfg.ButtonPin == "" {
		return nil, nil
	}
	b, err := sensors.OpenButton(cfg.ButtonPin)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// buildReporters always includes stdout. UART, MQTT, OLED and the speaker
// are added when configured; one that cannot be opened is logged and
// skipped. The text outputs also carry the button prompts.
func buildReporters(cfg *config.Config) (report.Fanout, report.Prompts, []io.Closer) {
	stdout := report.NewConsole(os.Stdout)
	reporters := report.Fanout{stdout}
	prompters := report.Prompts{stdout}
	var closers []io.Closer

	if cfg.ConsoleSerialPort != "" {
		c, port, err := report.OpenSerialConsole(cfg.ConsoleSerialPort, cfg.ConsoleBaudRate)
		if err != nil {
			log.Warn().Err(err).Msg("report: serial console disabled")
		} else {
			log.Info().Str("port", cfg.ConsoleSerialPort).Int("baud", cfg.ConsoleBaudRate).Msg("report: serial console ready")
			reporters = append(reporters, c)
			prompters = append(prompters, c)
			closers = append(closers, port)
		}
	}

	if cfg.MQTTBroker != "" {
		m, client, err := report.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDPipeline, cfg.TopicGesture)
		if err != nil {
			log.Warn().Err(err).Msg("report: MQTT disabled")
		} else {
			log.Info().Str("broker", cfg.MQTTBroker).Str("topic", cfg.TopicGesture).Msg("report: connected to MQTT broker")
			reporters = append(reporters, m)
			closers = append(closers, closerFunc(func() error {
				client.Disconnect(250)
				return nil
			}))
		}
	}

	if cfg.DisplayEnabled {
		d, bus, err := report.OpenDisplay(cfg.DisplayI2CBus)
		if err != nil {
			log.Warn().Err(err).Msg("report: display disabled")
		} else {
			log.Info().Msg("report: display initialized")
			reporters = append(reporters, d)
			prompters = append(prompters, d)
			closers = append(closers, bus)
		}
	}

	if cfg.AudioPWMPin != "" {
		s, err := report.OpenSpeaker(cfg.AudioPWMPin, cfg.AudioDir, cfg.AudioCarrierHz)
		if err != nil {
			log.Warn().Err(err).Msg("report: audio disabled")
		} else {
			log.Info().Str("pin", cfg.AudioPWMPin).Str("dir", cfg.AudioDir).Msg("report: speaker ready")
			reporters = append(reporters, s)
		}
	}
	return reporters, prompters, closers
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
