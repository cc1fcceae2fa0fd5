package sse

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// DefaultEventType is assigned to events whose stream frame carries no
// event: line.
const DefaultEventType = "message"

// Event is one decoded server-sent event.
type Event struct {
	// Type is the value of the frame's event: line, or DefaultEventType.
	Type string

	// Data is the frame's payload. Payloads that are not JSON objects are
	// wrapped as {"value": <raw text>}.
	Data map[string]any
}

// Decoder incrementally parses a server-sent-event stream into discrete
// events. It owns the underlying reader: the stream is closed when the
// decoder reaches end of input, hits a read error, or is closed explicitly.
// Callers abandoning a stream early must call Close.
type Decoder struct {
	scanner *bufio.Scanner
	closer  io.Closer
	closed  bool

	eventType string
	data      []string
}

// NewDecoder creates a Decoder reading from rc.
func NewDecoder(rc io.ReadCloser) *Decoder {
	return &Decoder{
		scanner:   bufio.NewScanner(rc),
		closer:    rc,
		eventType: DefaultEventType,
	}
}

// Next returns the next event in the stream. It returns io.EOF once the
// stream is exhausted, after which the underlying reader is closed.
func (d *Decoder) Next() (Event, error) {
	if d.closed {
		return Event{}, io.EOF
	}

	for d.scanner.Scan() {
		line := d.scanner.Text()
		switch {
		case line == "":
			if len(d.data) == 0 {
				continue
			}
			return d.flush(), nil
		case strings.HasPrefix(line, "event:"):
			eventType := strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			if eventType == "" {
				eventType = DefaultEventType
			}
			d.eventType = eventType
		case strings.HasPrefix(line, "data:"):
			d.data = append(d.data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
		// Unknown fields and comment lines are ignored per the SSE format.
	}

	err := d.scanner.Err()
	_ = d.Close()
	if err != nil {
		return Event{}, err
	}

	// Flush a trailing frame that was not terminated by a blank line.
	if len(d.data) > 0 {
		return d.flush(), nil
	}
	return Event{}, io.EOF
}

// flush assembles the buffered frame into an Event and resets decoder state.
func (d *Decoder) flush() Event {
	raw := strings.Join(d.data, "\n")
	event := Event{Type: d.eventType, Data: parseData(raw)}
	d.data = nil
	d.eventType = DefaultEventType
	return event
}

// Close releases the underlying stream. Safe to call multiple times.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.closer.Close()
}

// parseData decodes raw as a JSON object, wrapping anything else (invalid
// JSON, arrays, scalars) as {"value": raw}.
func parseData(raw string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]any{"value": raw}
	}
	return obj
}
