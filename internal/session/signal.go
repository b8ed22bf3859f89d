package session

import "strings"

// Signal is a client-side interaction that counts as activity.
type Signal string

const (
	SignalMouseDown  Signal = "mousedown"
	SignalMouseMove  Signal = "mousemove"
	SignalKeyPress   Signal = "keypress"
	SignalScroll     Signal = "scroll"
	SignalTouchStart Signal = "touchstart"
)

var signals = map[Signal]struct{}{
	SignalMouseDown:  {},
	SignalMouseMove:  {},
	SignalKeyPress:   {},
	SignalScroll:     {},
	SignalTouchStart: {},
}

func ParseSignal(raw string) (Signal, bool) {
	s := Signal(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := signals[s]
	return s, ok
}
