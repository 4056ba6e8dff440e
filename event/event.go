// Package event exposes the engine's progress as a typed event enum over
// asaskevich/EventBus: HeaderParsed, BrokenHeaders, BadUnicode,
// ReceivedParsed and HeadersHashReady, published as ProcessHeaders runs.
package event

import (
	evbus "github.com/asaskevich/EventBus"
)

type Event int

const (
	// HeaderParsed fires after every header is inserted into the Table.
	// Payload: *header.Header
	HeaderParsed Event = iota
	// BrokenHeaders fires the first time the BROKEN_HEADERS flag is raised.
	// Payload: none
	BrokenHeaders
	// BadUnicode fires the first time the BAD_UNICODE flag is raised.
	// Payload: none
	BadUnicode
	// ReceivedParsed fires after a Received: header is successfully parsed
	// by the trace-part parser. Payload: *received.Header
	ReceivedParsed
	// HeadersHashReady fires once the final headers hash is computed.
	// Payload: string (hex-encoded hash)
	HeadersHashReady
)

var eventList = [...]string{
	"header:parsed",
	"header:broken_headers",
	"header:bad_unicode",
	"received:parsed",
	"header:hash_ready",
}

func (e Event) String() string {
	return eventList[e]
}

// Handler wraps an evbus.Bus, lazily created on first Subscribe.
type Handler struct {
	evbus.Bus
}

func (h *Handler) Subscribe(topic Event, fn interface{}) error {
	if h.Bus == nil {
		h.Bus = evbus.New()
	}
	return h.Bus.Subscribe(topic.String(), fn)
}

// Publish is a no-op when nothing has subscribed yet.
func (h *Handler) Publish(topic Event, args ...interface{}) {
	if h.Bus == nil {
		return
	}
	h.Bus.Publish(topic.String(), args...)
}

func (h *Handler) Unsubscribe(topic Event, handler interface{}) error {
	if h.Bus == nil {
		return nil
	}
	return h.Bus.Unsubscribe(topic.String(), handler)
}
