package agent

import (
	"time"

	"github.com/google/uuid"
)

// Direction of a tapped message.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Event describes one message crossing the session, for local
// introspection (the web tap). It carries no message contents.
type Event struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Direction Direction `json:"direction"`
	// Detail is the message type name for inbound events and the
	// destination for outbound events.
	Detail string `json:"detail"`
	Size   int    `json:"size"`
}

// SetTap installs an observer invoked for every message the session
// receives or sends. The tap must not block.
func (s *Session) SetTap(fn func(Event)) {
	s.tapMu.Lock()
	s.tap = fn
	s.tapMu.Unlock()
}

func (s *Session) emit(ev Event) {
	s.tapMu.Lock()
	tap := s.tap
	s.tapMu.Unlock()
	if tap == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Time = time.Now()
	tap(ev)
}
