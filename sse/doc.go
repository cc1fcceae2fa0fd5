// Package sse decodes server-sent-event streams into discrete typed events.
//
// The decoder consumes the standard line-oriented framing: optional event:
// lines select the event type, one or more data: lines accumulate the
// payload, and a blank line terminates the frame. Frame payloads are decoded
// as JSON objects where possible.
package sse
