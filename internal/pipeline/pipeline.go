// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pipeline drives the sample → window → classify → report cycle.
//
// A Loop owns its port, converter and classifier for the life of the
// process and is driven from a single goroutine. The only suspension points
// are the inter-sample and settle sleeps on the injected clock and, when a
// trigger is wired, the wait for a button press and the countdown.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/signspeak/internal/classifier"
	"github.com/relabs-tech/signspeak/internal/clock"
	"github.com/relabs-tech/signspeak/internal/convert"
	"github.com/relabs-tech/signspeak/internal/decision"
	"github.com/relabs-tech/signspeak/internal/numeric"
	"github.com/relabs-tech/signspeak/internal/report"
	"github.com/relabs-tech/signspeak/internal/sensors"
	"github.com/relabs-tech/signspeak/internal/window"
)

// ErrConfig is returned by New when the collaborators do not fit together.
var ErrConfig = errors.New("pipeline: invalid configuration")

// Stage is the coarse position of a Loop in its cycle.
type Stage int

const (
	Sampling Stage = iota
	Inferring
	Reporting
	Waiting // for the trigger
)

// triggerPoll bounds one wait for the trigger so Run can notice a cancelled
// context.
const triggerPoll = 300 * time.Millisecond

// Trigger gates the start of a cycle.
type Trigger interface {
	// Await blocks up to timeout and reports whether a press happened.
	Await(timeout time.Duration) bool
}

func (s Stage) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Inferring:
		return "inferring"
	case Reporting:
		return "reporting"
	case Waiting:
		return "waiting"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// State is a Stage plus, while sampling, the index of the sample being read.
type State struct {
	Stage  Stage
	Sample int
}

func (s State) String() string {
	if s.Stage == Sampling {
		return fmt.Sprintf("sampling(%d)", s.Sample)
	}
	return s.Stage.String()
}

// Options wires a Loop. Port, Converter, Classifier and Labels are required.
type Options struct {
	Port       sensors.Port
	Converter  *convert.Converter
	Classifier classifier.Classifier
	Labels     decision.LabelTable

	// Reporter receives one event per cycle. Nil drops events.
	Reporter report.Reporter
	// Clock defaults to clock.Real().
	Clock clock.Clock

	// SampleInterval is slept after every sample, SettleInterval after every
	// cycle. Zero skips the sleep.
	SampleInterval time.Duration
	SettleInterval time.Duration

	// Trigger, if set, makes Run wait for a press and then count down
	// Countdown seconds before every cycle. Prompter shows the button and
	// countdown messages. RunCycle ignores all three.
	Trigger   Trigger
	Countdown int
	Prompter  report.Prompter

	// OnState, if set, is called on every state transition.
	OnState func(State)

	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Outcome summarizes one finished cycle.
type Outcome struct {
	Kind    report.Kind
	Gesture decision.Gesture // valid when Kind == report.KindGesture
	Err     error

	Collect time.Duration
	Infer   time.Duration
}

// Loop is the gesture state machine.
type Loop struct {
	port     sensors.Port
	conv     *convert.Converter
	cls      classifier.Classifier
	labels   decision.LabelTable
	reporter report.Reporter
	clk      clock.Clock
	logger   zerolog.Logger

	sampleInterval time.Duration
	settleInterval time.Duration
	trigger        Trigger
	countdown      int
	prompter       report.Prompter
	onState        func(State)

	win   window.Builder
	state State
}

// New checks that the classifier's shape matches the feature vector and the
// label table.
func New(opts Options) (*Loop, error) {
	if opts.Port == nil {
		return nil, fmt.Errorf("%w: no sensor port", ErrConfig)
	}
	if opts.Converter == nil {
		return nil, fmt.Errorf("%w: no unit converter", ErrConfig)
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("%w: no classifier", ErrConfig)
	}
	if len(opts.Labels) == 0 {
		return nil, fmt.Errorf("%w: empty label table", ErrConfig)
	}
	if n := opts.Classifier.InputLen(); n != window.FeatureLen {
		return nil, fmt.Errorf("%w: classifier takes %d inputs, feature vector has %d", ErrConfig, n, window.FeatureLen)
	}
	if n := opts.Classifier.OutputLen(); n != len(opts.Labels) {
		return nil, fmt.Errorf("%w: classifier has %d outputs, label table has %d (%s)", ErrConfig, n, len(opts.Labels), opts.Labels)
	}
	if opts.SampleInterval < 0 || opts.SettleInterval < 0 {
		return nil, fmt.Errorf("%w: negative interval", ErrConfig)
	}
	if opts.Countdown < 0 {
		return nil, fmt.Errorf("%w: negative countdown", ErrConfig)
	}

	l := &Loop{
		port:           opts.Port,
		conv:           opts.Converter,
		cls:            opts.Classifier,
		labels:         opts.Labels,
		reporter:       opts.Reporter,
		clk:            opts.Clock,
		sampleInterval: opts.SampleInterval,
		settleInterval: opts.SettleInterval,
		trigger:        opts.Trigger,
		countdown:      opts.Countdown,
		prompter:       opts.Prompter,
		onState:        opts.OnState,
	}
	if l.reporter == nil {
		l.reporter = report.Fanout(nil)
	}
	if l.prompter == nil {
		l.prompter = report.Prompts(nil)
	}
	if l.clk == nil {
		l.clk = clock.Real()
	}
	if opts.Logger != nil {
		l.logger = *opts.Logger
	} else {
		l.logger = log.Logger
	}
	return l, nil
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

func (l *Loop) enter(s State) {
	l.state = s
	if l.onState != nil {
		l.onState(s)
	}
}

// Run repeats cycles until ctx is done. ctx is checked only between cycles
// and between trigger polls; a started cycle always runs to completion.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info().
		Str("labels", l.labels.String()).
		Dur("sample_interval", l.sampleInterval).
		Dur("settle_interval", l.settleInterval).
		Bool("triggered", l.trigger != nil).
		Msg("pipeline: starting")
	for {
		if err := ctx.Err(); err != nil {
			l.logger.Info().Msg("pipeline: stopping")
			return err
		}
		if l.trigger != nil && !l.arm() {
			continue
		}
		l.RunCycle()
	}
}

// arm waits one poll interval for the trigger. After a press it counts
// down and returns true.
func (l *Loop) arm() bool {
	if l.state.Stage != Waiting {
		l.enter(State{Stage: Waiting})
		l.prompt("Press button to start...")
	}
	if !l.trigger.Await(triggerPoll) {
		return false
	}

	l.logger.Info().Int("countdown_s", l.countdown).Msg("pipeline: button pressed")
	for n := l.countdown; n > 0; n-- {
		l.prompt(fmt.Sprintf("Starting in %d seconds...", n))
		l.clk.Sleep(time.Second)
	}
	l.prompt("Perform Gesture")
	return true
}

func (l *Loop) prompt(msg string) {
	if err := l.prompter.Prompt(msg); err != nil {
		l.logger.Warn().Err(err).Str("prompt", msg).Msg("pipeline: prompt failed")
	}
}

// RunCycle samples a full window, classifies it, reports the result and
// waits out the settle interval. Faults end the cycle early but still settle.
func (l *Loop) RunCycle() Outcome {
	out := l.cycle()
	l.publish(out)
	l.sleep(l.settleInterval)
	return out
}

func (l *Loop) cycle() Outcome {
	l.win.Reset()
	start := l.clk.Now()

	for i := 0; i < window.Samples; i++ {
		l.enter(State{Stage: Sampling, Sample: i})
		if err := l.sampleOnce(i); err != nil {
			l.win.Reset()
			return Outcome{Kind: report.KindSensorFault, Err: err, Collect: l.clk.Now().Sub(start)}
		}
		l.sleep(l.sampleInterval)
	}
	collect := l.clk.Now().Sub(start)

	l.enter(State{Stage: Inferring})
	vec, err := l.win.Vector()
	if err != nil {
		// a short window is never classified
		return Outcome{Kind: report.KindSensorFault, Err: err, Collect: collect}
	}

	scores := make([]float32, l.cls.OutputLen())
	inferStart := l.clk.Now()
	err = l.cls.Invoke(vec[:], scores)
	infer := l.clk.Now().Sub(inferStart)
	if err != nil {
		l.logger.Error().Err(err).Msg("pipeline: classifier invoke failed, skipping label")
		return Outcome{Kind: report.KindClassifierFault, Err: err, Collect: collect, Infer: infer}
	}

	g, err := decision.Decide(scores, l.labels)
	if err != nil {
		l.logger.Error().Err(err).Msg("pipeline: no decision")
		return Outcome{Kind: report.KindClassifierFault, Err: err, Collect: collect, Infer: infer}
	}

	l.logger.Debug().
		Str("gesture", g.Label).
		Int("index", g.Index).
		Float32("score", g.Score).
		Float64("accel_g", meanAccelNorm(vec)).
		Int64("collect_ms", collect.Milliseconds()).
		Int64("infer_ms", infer.Milliseconds()).
		Msg("pipeline: cycle complete")
	return Outcome{Kind: report.KindGesture, Gesture: g, Collect: collect, Infer: infer}
}

// sampleOnce reads, converts and appends one sample. A bus error aborts the
// cycle the same way a conversion fault does.
func (l *Loop) sampleOnce(i int) error {
	burst, err := l.port.ReadInertial()
	if err != nil {
		l.logger.Warn().Err(err).Int("sample", i).Msg("pipeline: inertial read failed, window discarded")
		return fmt.Errorf("%w: %w", convert.ErrSensorFault, err)
	}
	flexRaw, err := l.port.ReadFlexRaw()
	if err != nil {
		l.logger.Warn().Err(err).Int("sample", i).Msg("pipeline: flex read failed, window discarded")
		return fmt.Errorf("%w: %w", convert.ErrSensorFault, err)
	}

	s, err := l.conv.Sample(burst, flexRaw)
	if err != nil {
		l.logger.Warn().Err(err).
			Int("sample", i).
			Uint16("flex_raw", flexRaw).
			Float32("substituted_angle", s.FlexAngle).
			Bool("substituted", true).
			Msg("pipeline: sensor fault, window discarded")
		return err
	}
	return l.win.Add(s)
}

// meanAccelNorm is the average accel magnitude over the window in g. It
// sits near 1 when the glove is still and the accel scale is right.
func meanAccelNorm(v window.FeatureVector) float64 {
	var sum float64
	a := make([]float64, 3)
	for i := 0; i < window.Samples; i++ {
		off := i * window.FieldsPerSample
		for j := range a {
			a[j] = float64(v[off+j])
		}
		sum += numeric.EuclideanNorm(a)
	}
	return sum / window.Samples
}

func (l *Loop) publish(out Outcome) {
	l.enter(State{Stage: Reporting})

	e := report.Event{Kind: out.Kind, Time: l.clk.Now()}
	if out.Kind == report.KindGesture {
		e.Label = out.Gesture.Label
		e.Index = out.Gesture.Index
		e.Score = out.Gesture.Score
	} else if out.Err != nil {
		e.Reason = out.Err.Error()
	}

	if err := l.reporter.Report(e); err != nil {
		l.logger.Warn().Err(err).Str("kind", string(e.Kind)).Msg("pipeline: report failed")
	}
}

func (l *Loop) sleep(d time.Duration) {
	if d > 0 {
		l.clk.Sleep(d)
	}
}
