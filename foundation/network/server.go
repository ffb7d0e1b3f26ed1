package network

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// maxLineSize is the largest single line a connection will accept. A block
// with many transactions is the largest message.
const maxLineSize = 16 * 1024 * 1024

// EventHandler defines a function that is called when events
// occur in the processing of connections.
type EventHandler func(v string, args ...any)

// Handler is called for every line received on a connection. Replies are
// written to the connection.
type Handler func(conn *Conn, line []byte)

// Config represents the configuration for the server.
type Config struct {
	Host        string
	DialTimeout time.Duration
	Handler     Handler
	EvHandler   EventHandler
}

// Server accepts peer connections and dials known peers. Every connection,
// inbound or outbound, is registered and read in its own goroutine.
type Server struct {
	host        string
	dialTimeout time.Duration
	handler     Handler
	evHandler   EventHandler
	registry    *Registry

	listener net.Listener
	wg       sync.WaitGroup
	shut     chan struct{}
}

// NewServer constructs a server that is not yet listening.
func NewServer(cfg Config) *Server {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	handler := cfg.Handler
	if handler == nil {
		handler = func(conn *Conn, line []byte) {
			ev("network: line from %s: %s", conn.Addr(), line)
		}
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 5 * time.Second
	}

	return &Server{
		host:        cfg.Host,
		dialTimeout: dialTimeout,
		handler:     handler,
		evHandler:   ev,
		registry:    NewRegistry(),
		shut:        make(chan struct{}),
	}
}

// Listen binds the host and starts accepting connections.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.host)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.host, err)
	}
	s.listener = listener

	s.evHandler("network: listening: %s", listener.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptConnections()
	}()

	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.host
	}
	return s.listener.Addr().String()
}

// Registry returns the set of connected peers.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Connect dials a known peer and registers the connection.
func (s *Server) Connect(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, s.dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	if err := s.serve(conn); err != nil {
		return fmt.Errorf("register %s: %w", addr, err)
	}
	s.evHandler("network: connected: %s", addr)

	return nil
}

// Broadcast sends the message to every peer except the one at the except
// address. Pass an empty string to send to all.
func (s *Server) Broadcast(m Message, except string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	return s.registry.Broadcast(data, except)
}

// BroadcastTx announces a transaction to every peer.
func (s *Server) BroadcastTx(tx database.Tx) error {
	return s.Broadcast(NewTxMessage(tx), "")
}

// BroadcastBlock announces a block to every peer.
func (s *Server) BroadcastBlock(block database.Block) error {
	return s.Broadcast(NewBlockMessage(block), "")
}

// Shutdown stops accepting connections, closes every registered connection
// and waits for the reading goroutines to finish.
func (s *Server) Shutdown() error {
	s.evHandler("network: shutdown: started")
	defer s.evHandler("network: shutdown: completed")

	close(s.shut)

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.registry.CloseAll()
	s.wg.Wait()

	return err
}

// =============================================================================

// acceptConnections registers every inbound connection until the listener
// is closed.
func (s *Server) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isShutdown() {
				return
			}
			s.evHandler("network: accept: ERROR: %s", err)
			continue
		}

		addr := conn.RemoteAddr()
		if err := s.serve(conn); err != nil {
			s.evHandler("network: accept %s: %s", addr, err)
			continue
		}
		s.evHandler("network: accepted: %s", addr)
	}
}

// serve registers the connection and reads it in a new goroutine. A
// connection that shows up once shutdown has closed the registry is closed
// and never read.
func (s *Server) serve(conn net.Conn) error {
	s.wg.Add(1)

	c, err := s.registry.Add(conn)
	if err != nil {
		s.wg.Done()
		return err
	}

	go func() {
		defer s.wg.Done()
		s.readLines(c)
	}()

	return nil
}

// readLines hands every received line to the handler. The connection is
// unregistered and closed when the peer goes away.
func (s *Server) readLines(c *Conn) {
	addr := c.Addr()

	defer func() {
		s.registry.Remove(addr)
		c.Close()
		s.evHandler("network: disconnected: %s", addr)
	}()

	scanner := bufio.NewScanner(c.Conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// The scanner reuses its buffer on the next call.
		cpy := make([]byte, len(line))
		copy(cpy, line)

		s.handler(c, cpy)
	}

	if err := scanner.Err(); err != nil && !s.isShutdown() {
		s.evHandler("network: read %s: ERROR: %s", addr, err)
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (s *Server) isShutdown() bool {
	select {
	case <-s.shut:
		return true
	default:
		return false
	}
}
