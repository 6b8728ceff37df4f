package llm

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// MaxEventSize bounds a single SSE data payload.
const MaxEventSize = 1024 * 1024

// ErrStopEvents can be returned by an SSE handler to end reading early without an error.
var ErrStopEvents = errors.New("stop reading events")

// ReadSSE reads Server-Sent Events from r and calls fn with the data of each event.
// Multi-line data fields are joined with '\n'. Comments and other fields are ignored.
func ReadSSE(r io.Reader, fn func(data []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxEventSize)

	var data [][]byte
	flush := func() error {
		if len(data) == 0 {
			return nil
		}
		payload := bytes.Join(data, []byte("\n"))
		data = data[:0]
		return fn(payload)
	}

	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")

		if len(line) == 0 {
			if err := flush(); err != nil {
				return stopOrErr(err)
			}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		data = append(data, append([]byte(nil), value...))
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return stopOrErr(flush())
}

func stopOrErr(err error) error {
	if errors.Is(err, ErrStopEvents) {
		return nil
	}
	return err
}
