package playback

import (
	"context"
	"sync"

	"advisor-chat-be/pkg/audio"
)

type State string

const (
	StateIdle      State = "idle"
	StatePreparing State = "preparing"
	StatePlaying   State = "playing"
)

// Status is a point-in-time view of the controller.
type Status struct {
	State     State  `json:"state"`
	MessageID string `json:"message_id,omitempty"`
}

// Synthesizer turns finished assistant text into an encoded audio payload.
// ok=false means no audio is available; the reason is the synthesizer's business.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (payload string, ok bool)
}

// Voice is one buffer being played. Done is closed when output ends,
// either naturally or because Stop was called.
type Voice interface {
	Stop()
	Done() <-chan struct{}
}

// Output is the single audio channel the controller owns.
type Output interface {
	Play(messageID string, buf *audio.Buffer) (Voice, error)
}

type Decoder func(payload string) (*audio.Buffer, error)

// Controller keeps at most one voice alive at a time.
type Controller struct {
	mu         sync.Mutex
	state      State
	current    string
	voice      Voice
	cancelPrep context.CancelFunc
	gen        uint64

	synth  Synthesizer
	output Output
	decode Decoder

	listenersMu sync.RWMutex
	listeners   []func(Status)

	// seq numbers transitions under mu; notify drops anything older than notified.
	seq      uint64
	notifyMu sync.Mutex
	notified uint64
}

func NewController(synth Synthesizer, output Output) *Controller {
	return &Controller{
		state:  StateIdle,
		synth:  synth,
		output: output,
		decode: audio.Decode,
	}
}

// WithDecoder swaps the payload decoder, mostly for tests.
func (c *Controller) WithDecoder(d Decoder) *Controller {
	c.decode = d
	return c
}

// OnChange registers a listener called after every state transition.
func (c *Controller) OnChange(fn func(Status)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Stop cancels any preparation or output and returns to idle.
func (c *Controller) Stop() Status {
	c.mu.Lock()
	changed := c.state != StateIdle
	c.stopLocked()
	st, seq := c.transitionLocked()
	c.mu.Unlock()

	if changed {
		c.notify(st, seq)
	}
	return st
}

// Toggle stops the message if it is the one being prepared or played. Otherwise it
// stops whatever is current, synthesizes the text and starts playing it. Blocks until
// the controller is playing the message or back to idle.
func (c *Controller) Toggle(ctx context.Context, messageID, text string) Status {
	c.mu.Lock()
	if c.current == messageID && c.state != StateIdle {
		c.stopLocked()
		st, seq := c.transitionLocked()
		c.mu.Unlock()
		c.notify(st, seq)
		return st
	}

	c.stopLocked()
	c.gen++
	gen := c.gen
	prepCtx, cancel := context.WithCancel(ctx)
	c.cancelPrep = cancel
	c.state = StatePreparing
	c.current = messageID
	st, seq := c.transitionLocked()
	c.mu.Unlock()
	c.notify(st, seq)

	buf := c.prepare(prepCtx, text)
	cancel()

	c.mu.Lock()
	if gen != c.gen {
		// Superseded by another toggle or a stop while synthesizing.
		st := c.statusLocked()
		c.mu.Unlock()
		return st
	}
	c.cancelPrep = nil

	if buf == nil || buf.Frames() == 0 {
		c.resetLocked()
		st, seq := c.transitionLocked()
		c.mu.Unlock()
		c.notify(st, seq)
		return st
	}

	voice, err := c.output.Play(messageID, buf)
	if err != nil {
		c.resetLocked()
		st, seq := c.transitionLocked()
		c.mu.Unlock()
		c.notify(st, seq)
		return st
	}

	c.voice = voice
	c.state = StatePlaying
	st, seq = c.transitionLocked()
	c.mu.Unlock()
	c.notify(st, seq)

	go c.watch(gen, voice)

	return st
}

func (c *Controller) prepare(ctx context.Context, text string) *audio.Buffer {
	payload, ok := c.synth.Synthesize(ctx, text)
	if !ok || payload == "" {
		return nil
	}
	buf, err := c.decode(payload)
	if err != nil {
		return nil
	}
	return buf
}

func (c *Controller) watch(gen uint64, voice Voice) {
	<-voice.Done()

	c.mu.Lock()
	if gen != c.gen || c.voice != voice {
		c.mu.Unlock()
		return
	}
	c.voice = nil
	c.resetLocked()
	st, seq := c.transitionLocked()
	c.mu.Unlock()

	c.notify(st, seq)
}

func (c *Controller) stopLocked() {
	if c.cancelPrep != nil {
		c.cancelPrep()
		c.cancelPrep = nil
	}
	if c.voice != nil {
		c.voice.Stop()
		c.voice = nil
	}
	c.gen++
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.state = StateIdle
	c.current = ""
}

func (c *Controller) statusLocked() Status {
	return Status{State: c.state, MessageID: c.current}
}

// transitionLocked stamps the current status with the next sequence number.
func (c *Controller) transitionLocked() (Status, uint64) {
	c.seq++
	return c.statusLocked(), c.seq
}

// notify delivers transitions one at a time and in order; a transition that
// arrives after a newer one has been delivered is stale and dropped.
func (c *Controller) notify(st Status, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.notified {
		return
	}
	c.notified = seq

	c.listenersMu.RLock()
	listeners := append([]func(Status){}, c.listeners...)
	c.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(st)
	}
}
