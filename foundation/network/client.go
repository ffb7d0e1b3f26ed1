package network

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"
)

// Client is a single outbound connection used by tooling to talk to a node.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the node at the address.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := Client{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 64*1024),
	}

	return &c, nil
}

// Send writes the raw bytes to the node.
func (c *Client) Send(data []byte) error {
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// SendMessage writes the encoded message to the node.
func (c *Client) SendMessage(m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	return c.Send(data)
}

// ReadMessage waits up to the timeout for the next message from the node.
func (c *Client) ReadMessage(timeout time.Duration) (Message, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return Message{}, fmt.Errorf("set deadline: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return Message{}, fmt.Errorf("read: %w", err)
	}

	return Decode(line)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the local address of the connection. This is the
// address the node registers the connection under.
func (c *Client) LocalAddr() string {
	return c.conn.LocalAddr().String()
}
