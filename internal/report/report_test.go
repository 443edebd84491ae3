// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

var errSink = errors.New("sink failed")

type fakeToken struct {
	err     error
	pending bool
}

func (t *fakeToken) Wait() bool                     { return !t.pending }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if !t.pending {
		close(ch)
	}
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakePublisher struct {
	token *fakeToken
	got   []published
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.got = append(p.got, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return p.token
}

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Report(e Event) error {
	r.events = append(r.events, e)
	return r.err
}

type fakeScreen struct {
	frames []image.Image
	err    error
}

func (s *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (s *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	s.frames = append(s.frames, src)
	return s.err
}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestEventLine(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Kind: KindGesture, Label: "left"}, "Predicted gesture: left"},
		{Event{Kind: KindSensorFault, Reason: "flex voltage is zero"}, "Sensor fault: flex voltage is zero"},
		{Event{Kind: KindClassifierFault, Reason: "non-finite output"}, "Classifier fault: non-finite output"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.event.Line())
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	require.NoError(t, c.Report(Event{Kind: KindGesture, Label: "left"}))
	require.NoError(t, c.Report(Event{Kind: KindSensorFault, Reason: "adc"}))
	assert.Equal(t, "Predicted gesture: left\nSensor fault: adc\n", buf.String())
}

func TestMQTTPublishesJSON(t *testing.T) {
	pub := &fakePublisher{token: &fakeToken{}}
	m := NewMQTT(pub, "signspeak/gesture")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.Report(Event{Kind: KindGesture, Time: at, Label: "up", Index: 2, Score: 0.75}))

	require.Len(t, pub.got, 1)
	assert.Equal(t, "signspeak/gesture", pub.got[0].topic)
	assert.False(t, pub.got[0].retained)

	var got Event
	require.NoError(t, json.Unmarshal(pub.got[0].payload, &got))
	assert.Equal(t, KindGesture, got.Kind)
	assert.Equal(t, "up", got.Label)
	assert.Equal(t, 2, got.Index)
	assert.True(t, at.Equal(got.Time))
}

func TestMQTTErrors(t *testing.T) {
	m := NewMQTT(&fakePublisher{token: &fakeToken{err: errSink}}, "t")
	err := m.Report(Event{Kind: KindGesture})
	require.ErrorIs(t, err, errSink)

	m = NewMQTT(&fakePublisher{token: &fakeToken{pending: true}}, "t")
	err = m.Report(Event{Kind: KindGesture})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestFanoutReachesAllReporters(t *testing.T) {
	a := &recorder{err: errSink}
	b := &recorder{}
	f := Fanout{a, b}

	err := f.Report(Event{Kind: KindGesture, Label: "down"})
	require.ErrorIs(t, err, errSink)
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "down", b.events[0].Label)

	a.err = nil
	assert.NoError(t, f.Report(Event{Kind: KindGesture}))
	assert.NoError(t, Fanout(nil).Report(Event{}))
}

func TestDisplayDrawsText(t *testing.T) {
	s := &fakeScreen{}
	d := newDisplay(s)

	require.NoError(t, d.Splash())
	require.NoError(t, d.Report(Event{Kind: KindGesture, Label: "right", Score: 0.9}))
	require.NoError(t, d.Report(Event{Kind: KindSensorFault}))

	require.Len(t, s.frames, 3)
	for _, f := range s.frames {
		assert.Equal(t, image.Rect(0, 0, 128, 64), f.Bounds())
		assert.Positive(t, litPixels(f))
	}
	// three lines of text light more pixels than one
	assert.Greater(t, litPixels(s.frames[1]), litPixels(s.frames[2]))
}

func TestDisplayDrawError(t *testing.T) {
	d := newDisplay(&fakeScreen{err: errSink})
	err := d.Report(Event{Kind: KindGesture, Label: "up"})
	require.ErrorIs(t, err, errSink)
}

func TestConsolePrompt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Prompt("Starting in 3 seconds..."))
	assert.Equal(t, "Starting in 3 seconds...\n", buf.String())
}

type promptRecorder struct {
	msgs []string
	err  error
}

func (p *promptRecorder) Prompt(msg string) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestPromptsReachAllPrompters(t *testing.T) {
	a := &promptRecorder{err: errSink}
	b := &promptRecorder{}

	err := Prompts{a, b}.Prompt("Perform Gesture")
	require.ErrorIs(t, err, errSink)
	assert.Equal(t, []string{"Perform Gesture"}, b.msgs)
	assert.NoError(t, Prompts(nil).Prompt("x"))
}

func TestWrapWords(t *testing.T) {
	assert.Equal(t, []string{"Starting in 3", "seconds..."}, wrapWords("Starting in 3 seconds...", 18))
	assert.Equal(t, []string{"Perform Gesture"}, wrapWords("Perform Gesture", 18))
	assert.Equal(t, []string{"abcdefghij", "xy"}, wrapWords("abcdefghij xy", 4))
	assert.Empty(t, wrapWords("   ", 18))
}

func TestDisplayPromptWraps(t *testing.T) {
	s := &fakeScreen{}
	d := newDisplay(s)

	require.NoError(t, d.Prompt("Perform Gesture"))
	require.NoError(t, d.Prompt("Press button to start..."))
	require.Len(t, s.frames, 2)
	for _, f := range s.frames {
		assert.Positive(t, litPixels(f))
	}
}

func TestRenderLinesBlankWhenEmpty(t *testing.T) {
	img := renderLines(image.Rect(0, 0, 128, 64))
	assert.Zero(t, litPixels(img))
}
