// Package component runs UI components as explicit message-driven tasks.
//
// A component is constructed, mounted (its first render), then resumed
// with one message at a time. Every resume yields the events the component
// emitted since the previous one. Components render through Views, find
// their child components by scanning the patched host tree for slot
// markers, forward state to children with explicit messages and read the
// children's events back from those sends.
//
// All methods must be called from the goroutine driving the event loop.
package component

import (
	"errors"
	"fmt"
)

// Message is an inbound message. Each component accepts a closed set of
// concrete types and returns ErrUnknownMessage for anything else.
type Message any

// Poll asks a component to collect events produced by input callbacks since
// the last message. Components that hold children forward it.
type Poll struct{}

// Event is an outbound notification bubbling towards the root.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Source  string `json:"source,omitempty"`
}

func (e Event) String() string {
	if e.Payload == nil {
		return e.Type
	}
	return fmt.Sprintf("%s(%v)", e.Type, e.Payload)
}

// Component is the application side of a task.
type Component interface {
	// Mount sets up views and state. The task renders every attached view
	// once Mount returns.
	Mount(ctx *Context) error

	// Update handles one message. Returning ErrUnknownMessage marks the
	// message as not understood; returning ErrDone ends the task.
	Update(ctx *Context, msg Message) error

	// Unmount runs once when the task closes, before its views are released.
	Unmount(ctx *Context)
}

// Sentinel errors.
var (
	// ErrUnknownMessage is returned by Update for messages outside the
	// component's message set.
	ErrUnknownMessage = errors.New("component: unknown message")

	// ErrDone is returned by Update when the component has concluded.
	ErrDone = errors.New("component: done")

	// ErrClosed is returned when starting a task that has already closed.
	ErrClosed = errors.New("component: task closed")

	// ErrInvalidEnv is returned when an Env lacks a reconciler or a loop.
	ErrInvalidEnv = errors.New("component: env needs a reconciler and a loop")

	// ErrNotFactory is returned when a slot's factory is not a Factory.
	ErrNotFactory = errors.New("component: slot factory is not a component.Factory")
)

// UnknownMessage wraps ErrUnknownMessage with the offending message type.
func UnknownMessage(msg Message) error {
	return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
}

// Dispatch reinterprets events bubbling up from children. Events whose type
// has a handler are replaced by whatever the handler returns (nil consumes
// the event); other events pass through unchanged.
func Dispatch(events []Event, handlers map[string]func(Event) []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if h, ok := handlers[e.Type]; ok {
			out = append(out, h(e)...)
			continue
		}
		out = append(out, e)
	}
	return out
}
