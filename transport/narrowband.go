package transport

// MaxNarrowbandPayload is the hard uplink payload ceiling of the
// narrowband link. Exceeding it is a send failure, never truncation.
const MaxNarrowbandPayload = 12

// NarrowRadio is the hardware binding for the ultra-narrowband radio.
// The link is uplink-only; implementations configure the modem with the
// receive path disabled when opening the socket.
type NarrowRadio interface {
	Open() (NarrowbandConn, error)
}

// NarrowbandConn is an open narrowband socket.
type NarrowbandConn interface {
	Send(data []byte) error
	Close() error
}
