// Package network provides the TCP transport nodes use to exchange
// transactions and blocks.
package network

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrRegistryClosed is returned when a connection is added after CloseAll.
var ErrRegistryClosed = errors.New("registry is closed")

// Conn is a registered connection. Writes are serialized so a broadcast
// and a reply can't interleave on the wire.
type Conn struct {
	net.Conn
	mu sync.Mutex
}

// Write sends the data on the connection.
func (c *Conn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Conn.Write(data)
}

// Addr returns the remote address the connection is registered under.
func (c *Conn) Addr() string {
	return c.RemoteAddr().String()
}

// =============================================================================

// Registry maintains the set of connected peers.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Conn
	closed bool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
	}
}

// Add registers the connection under its remote address. The registered
// connection is returned for writing. Once CloseAll has been called the
// connection is closed instead and ErrRegistryClosed is returned.
func (r *Registry) Add(conn net.Conn) (*Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		conn.Close()
		return nil, ErrRegistryClosed
	}

	c := Conn{Conn: conn}
	r.conns[c.Addr()] = &c

	return &c, nil
}

// Remove unregisters the connection for the address. It does not close it.
func (r *Registry) Remove(addr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[addr]; !exists {
		return false
	}

	delete(r.conns, addr)
	return true
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// Addrs returns the sorted set of registered addresses.
func (r *Registry) Addrs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addrs := make([]string, 0, len(r.conns))
	for addr := range r.conns {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	return addrs
}

// Broadcast writes the data to every registered connection except the one
// registered under the except address. Writes happen concurrently. All
// connections are tried and the first error is returned.
func (r *Registry) Broadcast(data []byte, except string) error {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.conns))
	for addr, c := range r.conns {
		if addr == except {
			continue
		}
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	var g errgroup.Group
	for _, c := range conns {
		c := c
		g.Go(func() error {
			if _, err := c.Write(data); err != nil {
				return fmt.Errorf("write to %s: %w", c.Addr(), err)
			}
			return nil
		})
	}

	return g.Wait()
}

// CloseAll closes and unregisters every connection. No connection can be
// added afterwards.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	for addr, c := range r.conns {
		c.Close()
		delete(r.conns, addr)
	}
}
