// Package client is a small library speaking the same UDP/JSON wire
// protocol the replicas speak (spec.md §4.1/§6), for integration tests and
// the cmd/raftkv-client REPL. It is not a production client: spec.md §1
// scopes retry policy and MID generation out of the core, and this keeps
// that scope. A caller picks its own MID and decides whether to retry.
package client

import (
	"errors"
	"fmt"
	"time"

	"raftkv/transport"
)

// ErrTimeout is returned when no reply with a matching MID arrives within
// the deadline passed to Put/Get.
var ErrTimeout = errors.New("client: no reply received")

// Client is a thin UDP/JSON handle onto the replica bus. It tracks which
// replica it believes is the current leader, following redirects as
// spec.md §4.5 describes, but does not retry on its own.
type Client struct {
	id       string
	bus      *transport.Bus
	leaderID string
}

// New opens a client bound to localPort that sends every message to the
// shared bus address busPort, first contacting firstID until a leader is
// found via redirect.
func New(id string, localPort, busPort int, firstID string) (*Client, error) {
	bus, err := transport.NewBus(localPort, busPort, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("client: open bus: %w", err)
	}
	return &Client{id: id, bus: bus, leaderID: firstID}, nil
}

// Close releases the underlying socket.
func (c *Client) Close() error {
	return c.bus.Close()
}

// Put sends a put and waits up to timeout for the matching ok/redirect.
// Each redirect updates the leader the client addresses and resends the
// put, waiting up to timeout again; the number of redirect hops is not
// limited.
func (c *Client) Put(key, value, mid string, timeout time.Duration) error {
	msg := transport.Envelope(c.id, c.leaderID, "", transport.TypePut)
	msg.Key, msg.Value, msg.MID = key, value, mid

	reply, err := c.roundTrip(msg, mid, timeout)
	if err != nil {
		return err
	}
	if reply.Type == transport.TypeRedirect {
		c.leaderID = reply.Leader
		return c.Put(key, value, mid, timeout)
	}
	return nil
}

// Get sends a get and waits up to timeout for the matching ok/redirect.
func (c *Client) Get(key, mid string, timeout time.Duration) (string, bool, error) {
	msg := transport.Envelope(c.id, c.leaderID, "", transport.TypeGet)
	msg.Key, msg.MID = key, mid

	reply, err := c.roundTrip(msg, mid, timeout)
	if err != nil {
		return "", false, err
	}
	if reply.Type == transport.TypeRedirect {
		c.leaderID = reply.Leader
		return c.Get(key, mid, timeout)
	}
	return reply.Value, reply.Value != "", nil
}

// roundTrip sends msg and reads replies until one with a matching MID
// arrives or timeout elapses.
func (c *Client) roundTrip(msg transport.Message, mid string, timeout time.Duration) (transport.Message, error) {
	if err := c.bus.Send(msg); err != nil {
		return transport.Message{}, fmt.Errorf("client: send: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		reply, err := c.bus.Recv()
		if err != nil {
			if err == transport.ErrTimeout {
				continue
			}
			return transport.Message{}, err
		}
		if reply.MID == mid {
			return reply, nil
		}
	}
	return transport.Message{}, ErrTimeout
}
