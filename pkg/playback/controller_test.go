package playback

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"advisor-chat-be/pkg/audio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVoice struct {
	once    sync.Once
	done    chan struct{}
	stopped bool
	out     *fakeOutput
}

func (v *fakeVoice) Stop() {
	v.once.Do(func() {
		v.out.mu.Lock()
		v.stopped = true
		v.out.active--
		v.out.mu.Unlock()
		close(v.done)
	})
}

// finish simulates the output reaching its natural end.
func (v *fakeVoice) finish() {
	v.once.Do(func() {
		v.out.mu.Lock()
		v.out.active--
		v.out.mu.Unlock()
		close(v.done)
	})
}

func (v *fakeVoice) Done() <-chan struct{} { return v.done }

type fakeOutput struct {
	mu        sync.Mutex
	active    int
	maxActive int
	voices    map[string]*fakeVoice
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{voices: make(map[string]*fakeVoice)}
}

func (o *fakeOutput) Play(messageID string, buf *audio.Buffer) (Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v := &fakeVoice{done: make(chan struct{}), out: o}
	o.voices[messageID] = v
	o.active++
	if o.active > o.maxActive {
		o.maxActive = o.active
	}
	return v, nil
}

func (o *fakeOutput) voice(id string) *fakeVoice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.voices[id]
}

func (o *fakeOutput) activeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

type fakeSynth struct {
	payloads map[string]string
	gate     map[string]chan struct{}
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) (string, bool) {
	if g, ok := s.gate[text]; ok {
		select {
		case <-g:
		case <-ctx.Done():
			return "", false
		}
	}
	p, ok := s.payloads[text]
	return p, ok
}

var pcmPayload = base64.StdEncoding.EncodeToString([]byte{0x00, 0x10, 0x00, 0xf0})

func newTestController() (*Controller, *fakeOutput, *fakeSynth) {
	out := newFakeOutput()
	synth := &fakeSynth{
		payloads: map[string]string{
			"hello": pcmPayload,
			"world": pcmPayload,
		},
		gate: map[string]chan struct{}{},
	}
	return NewController(synth, out), out, synth
}

func TestToggleStartsPlayback(t *testing.T) {
	c, out, _ := newTestController()

	st := c.Toggle(context.Background(), "m1", "hello")

	assert.Equal(t, Status{State: StatePlaying, MessageID: "m1"}, st)
	assert.Equal(t, 1, out.activeCount())
}

func TestToggleTwiceSameMessageEndsIdle(t *testing.T) {
	c, out, _ := newTestController()

	c.Toggle(context.Background(), "m1", "hello")
	st := c.Toggle(context.Background(), "m1", "hello")

	assert.Equal(t, StateIdle, st.State)
	assert.Empty(t, st.MessageID)
	assert.Equal(t, 0, out.activeCount())
	assert.True(t, out.voice("m1").stopped)
}

func TestToggleOtherMessageStopsPrevious(t *testing.T) {
	c, out, _ := newTestController()

	c.Toggle(context.Background(), "a", "hello")
	st := c.Toggle(context.Background(), "b", "world")

	assert.Equal(t, Status{State: StatePlaying, MessageID: "b"}, st)
	assert.True(t, out.voice("a").stopped)
	assert.False(t, out.voice("b").stopped)
	assert.Equal(t, 1, out.activeCount())
	assert.Equal(t, 1, out.maxActive)
}

func TestToggleOtherMessageWithFailedSynthesis(t *testing.T) {
	c, out, _ := newTestController()

	c.Toggle(context.Background(), "a", "hello")
	st := c.Toggle(context.Background(), "b", "no audio for this")

	assert.Equal(t, StateIdle, st.State)
	assert.True(t, out.voice("a").stopped)
	assert.Nil(t, out.voice("b"))
	assert.Equal(t, 0, out.activeCount())
}

func TestToggleDecodeFailureReturnsIdle(t *testing.T) {
	c, out, synth := newTestController()
	synth.payloads["broken"] = "@@@"

	st := c.Toggle(context.Background(), "m1", "broken")

	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 0, out.activeCount())
}

func TestToggleEmptyAudioReturnsIdle(t *testing.T) {
	c, out, synth := newTestController()
	synth.payloads["silence"] = base64.StdEncoding.EncodeToString(nil)

	st := c.Toggle(context.Background(), "m1", "silence")

	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 0, out.activeCount())
}

func TestNaturalEndReturnsIdle(t *testing.T) {
	c, out, _ := newTestController()

	var mu sync.Mutex
	var seen []Status
	c.OnChange(func(s Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	c.Toggle(context.Background(), "m1", "hello")
	out.voice("m1").finish()

	assert.Eventually(t, func() bool {
		return c.Status().State == StateIdle
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.Status().MessageID)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, StatePreparing, seen[0].State)
	assert.Equal(t, StatePlaying, seen[1].State)
	assert.Equal(t, StateIdle, seen[2].State)
}

func TestSupersededPreparationIsDiscarded(t *testing.T) {
	c, out, synth := newTestController()
	gate := make(chan struct{})
	synth.gate["hello"] = gate

	first := make(chan Status, 1)
	go func() {
		first <- c.Toggle(context.Background(), "a", "hello")
	}()

	require.Eventually(t, func() bool {
		return c.Status() == Status{State: StatePreparing, MessageID: "a"}
	}, time.Second, 5*time.Millisecond)

	st := c.Toggle(context.Background(), "b", "world")
	require.Equal(t, Status{State: StatePlaying, MessageID: "b"}, st)

	close(gate)
	<-first

	assert.Nil(t, out.voice("a"))
	assert.Equal(t, Status{State: StatePlaying, MessageID: "b"}, c.Status())
	assert.Equal(t, 1, out.maxActive)
}

func TestStop(t *testing.T) {
	c, out, _ := newTestController()

	c.Toggle(context.Background(), "m1", "hello")
	st := c.Stop()

	assert.Equal(t, StateIdle, st.State)
	assert.True(t, out.voice("m1").stopped)

	// Stopping an idle controller is a no-op.
	assert.Equal(t, StateIdle, c.Stop().State)
}

func TestListenersSeeTransitionsInOrder(t *testing.T) {
	c, _, _ := newTestController()

	var mu sync.Mutex
	var seen []Status
	c.OnChange(func(st Status) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})

	c.Toggle(context.Background(), "a", "hello")
	c.Toggle(context.Background(), "b", "world")
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{
		{State: StatePreparing, MessageID: "a"},
		{State: StatePlaying, MessageID: "a"},
		{State: StatePreparing, MessageID: "b"},
		{State: StatePlaying, MessageID: "b"},
		{State: StateIdle},
	}, seen)
}

func TestStaleTransitionIsNotDelivered(t *testing.T) {
	c, _, _ := newTestController()

	var seen []Status
	c.OnChange(func(st Status) { seen = append(seen, st) })

	// A late "preparing a" must not overwrite the newer "preparing b".
	c.notify(Status{State: StatePreparing, MessageID: "b"}, 2)
	c.notify(Status{State: StatePreparing, MessageID: "a"}, 1)

	assert.Equal(t, []Status{{State: StatePreparing, MessageID: "b"}}, seen)
}
