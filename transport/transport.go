// Package transport holds the per-link bindings the session layer drives:
// a pub/sub stream link over MQTT, a wide-area radio link and an
// uplink-only narrowband link.
package transport

import "errors"

// Kind identifies a link type.
type Kind int

const (
	KindStream Kind = iota
	KindRadioWide
	KindNarrowband
)

func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindRadioWide:
		return "radio-wide"
	case KindNarrowband:
		return "narrowband"
	default:
		return "unknown"
	}
}

var (
	// ErrJoinTimeout is returned when a link does not come up within the
	// caller's deadline.
	ErrJoinTimeout = errors.New("transport: join timed out")

	// ErrAuthFailure is returned when the remote end rejects the
	// credentials during connect/join.
	ErrAuthFailure = errors.New("transport: authentication failed")
)

// StreamConn is an established pub/sub stream link. Inbound messages on
// the subscribed downlink topic are queued internally; Poll drains them
// one at a time without blocking.
type StreamConn interface {
	Publish(topic string, payload []byte) error
	Poll() ([]byte, bool)
	Disconnect()
}
