package sse

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingReader wraps a reader and records whether Close was called.
type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func newTestDecoder(lines ...string) (*Decoder, *trackingReader) {
	rc := &trackingReader{Reader: strings.NewReader(strings.Join(lines, "\n"))}
	return NewDecoder(rc), rc
}

func collect(t *testing.T, d *Decoder) []Event {
	t.Helper()
	var events []Event
	for {
		event, err := d.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, event)
	}
}

func TestDecoderTypedAndDefaultEvents(t *testing.T) {
	decoder, rc := newTestDecoder(
		"event: progress",
		`data: {"pct": 10}`,
		"",
		"data: plain text",
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 2)
	assert.Equal(t, "progress", events[0].Type)
	assert.Equal(t, map[string]any{"pct": float64(10)}, events[0].Data)
	assert.Equal(t, "message", events[1].Type)
	assert.Equal(t, map[string]any{"value": "plain text"}, events[1].Data)
	assert.True(t, rc.closed)
}

func TestDecoderEventTypeResetsBetweenFrames(t *testing.T) {
	decoder, _ := newTestDecoder(
		"event: chunk",
		`data: {"sequence": 1}`,
		"",
		`data: {"sequence": 2}`,
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 2)
	assert.Equal(t, "chunk", events[0].Type)
	assert.Equal(t, "message", events[1].Type)
}

func TestDecoderFlushesTrailingFrameAtEOF(t *testing.T) {
	decoder, rc := newTestDecoder(
		"event: complete",
		`data: {"done": true}`,
	)

	events := collect(t, decoder)

	require.Len(t, events, 1)
	assert.Equal(t, "complete", events[0].Type)
	assert.Equal(t, map[string]any{"done": true}, events[0].Data)
	assert.True(t, rc.closed)
}

func TestDecoderJoinsMultilineData(t *testing.T) {
	decoder, _ := newTestDecoder(
		"data: first",
		"data: second",
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"value": "first\nsecond"}, events[0].Data)
}

func TestDecoderWrapsNonObjectJSON(t *testing.T) {
	decoder, _ := newTestDecoder(
		"data: [1, 2, 3]",
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"value": "[1, 2, 3]"}, events[0].Data)
}

func TestDecoderEmptyEventTypeDefaults(t *testing.T) {
	decoder, _ := newTestDecoder(
		"event: ",
		"data: hello",
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].Type)
}

func TestDecoderSkipsLeadingBlankLines(t *testing.T) {
	decoder, _ := newTestDecoder(
		"",
		"",
		"data: hello",
		"",
	)

	events := collect(t, decoder)

	require.Len(t, events, 1)
}

func TestDecoderCloseReleasesStreamEarly(t *testing.T) {
	decoder, rc := newTestDecoder(
		"data: one",
		"",
		"data: two",
		"",
	)

	_, err := decoder.Next()
	require.NoError(t, err)
	require.NoError(t, decoder.Close())

	assert.True(t, rc.closed)

	_, err = decoder.Next()
	assert.ErrorIs(t, err, io.EOF)
}
