package websocket

import (
	"encoding/base64"
	"sync"
	"time"

	"advisor-chat-be/pkg/audio"
	"advisor-chat-be/pkg/playback"
)

type AudioPlayPayload struct {
	MessageID  string `json:"message_id"`
	MimeType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	DurationMs int64  `json:"duration_ms"`
	Data       string `json:"data"`
}

type AudioStopPayload struct {
	MessageID string `json:"message_id"`
}

// AudioOutput plays buffers by shipping them to every connected client as WAV.
// The voice ends on its own once the buffer's duration has elapsed.
type AudioOutput struct {
	broadcaster Broadcaster
}

var _ playback.Output = (*AudioOutput)(nil)

func NewAudioOutput(b Broadcaster) *AudioOutput {
	return &AudioOutput{broadcaster: b}
}

func (o *AudioOutput) Play(messageID string, buf *audio.Buffer) (playback.Voice, error) {
	wav := audio.EncodeWAV(buf)

	o.broadcaster.Broadcast(EventAudioPlay, AudioPlayPayload{
		MessageID:  messageID,
		MimeType:   "audio/wav",
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
		DurationMs: buf.Duration().Milliseconds(),
		Data:       base64.StdEncoding.EncodeToString(wav),
	})

	v := &voice{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(v.done)
		timer := time.NewTimer(buf.Duration())
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-v.stop:
			o.broadcaster.Broadcast(EventAudioStop, AudioStopPayload{MessageID: messageID})
		}
	}()

	return v, nil
}

type voice struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func (v *voice) Stop() {
	v.once.Do(func() { close(v.stop) })
}

func (v *voice) Done() <-chan struct{} {
	return v.done
}
