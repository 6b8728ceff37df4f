package speech

import "context"

// SpeechProvider turns finished text into an audio payload.
// The payload is base64-encoded raw little-endian PCM16 at 24 kHz mono.
type SpeechProvider interface {
	Synthesize(ctx context.Context, text string) (string, error)
}
