package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Bus is a replica's handle onto the shared local datagram bus. Per
// SPEC_FULL.md §A this is two distinct addresses: `conn` is the replica's
// own listening socket (where it receives), and `busAddr` is the shared
// bus address named by the CLI's `port` (where every `Send` goes). The
// external bus (out of scope per spec.md §1/§6) reads `src`/`dst` out of
// each JSON envelope and forwards to the addressed replica's own listening
// socket, which it learns from the source address of that replica's own
// sends (starting with its `hello`). Bus never inspects Dst itself;
// routing by id is the bus's job, not this replica's.
type Bus struct {
	conn      *net.UDPConn
	busAddr   *net.UDPAddr
	recvBuf   []byte
	recvExtra time.Duration
}

// NewBus opens a UDP socket on localPort (0 for an OS-assigned ephemeral
// port, the normal case: a replica's own socket need not be the well-known
// bus port) for receiving, and addresses all sends at busPort, the shared
// bus every replica in the cluster sends to. recvTimeout bounds Recv so the
// caller's event loop can still check timers during prolonged silence
// (spec.md §5, SHOULD).
func NewBus(localPort, busPort int, recvTimeout time.Duration) (*Bus, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("transport: listen on port %d: %w", localPort, err)
	}
	busAddr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: busPort}
	return &Bus{
		conn:      conn,
		busAddr:   busAddr,
		recvBuf:   make([]byte, MaxPayloadBytes),
		recvExtra: recvTimeout,
	}, nil
}

// Send marshals msg as JSON and writes it to the bus address. A send
// failure is logged by the caller and otherwise ignored: the bus is
// best-effort and the replication/election modules already tolerate loss.
func (b *Bus) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transport: marshal: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return fmt.Errorf("transport: payload of %d bytes exceeds %d byte ceiling", len(data), MaxPayloadBytes)
	}
	_, err = b.conn.WriteToUDP(data, b.busAddr)
	return err
}

// ErrTimeout is returned by Recv when no datagram arrived within the bound
// receive timeout; the caller should fall through to its timer checks.
var ErrTimeout = fmt.Errorf("transport: receive timed out")

// Recv blocks for at most the configured receive timeout waiting for one
// datagram, decodes it, and returns it. Malformed payloads are dropped
// (spec.md §7: "Malformed message / decode failure: implementation MAY
// drop") and Recv loops internally rather than surfacing the decode error,
// so callers only ever see a real message or ErrTimeout.
func (b *Bus) Recv() (Message, error) {
	for {
		if b.recvExtra > 0 {
			if err := b.conn.SetReadDeadline(time.Now().Add(b.recvExtra)); err != nil {
				return Message{}, err
			}
		}
		n, _, err := b.conn.ReadFromUDP(b.recvBuf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return Message{}, ErrTimeout
			}
			return Message{}, err
		}

		var msg Message
		if err := json.Unmarshal(b.recvBuf[:n], &msg); err != nil {
			continue // malformed datagram: drop and keep waiting
		}
		return msg, nil
	}
}

// Close releases the underlying socket.
func (b *Bus) Close() error {
	return b.conn.Close()
}
