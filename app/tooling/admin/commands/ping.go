package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/minichain/foundation/network"
)

// Ping sends a ping to the peer transport of a node and waits for the pong.
func Ping(w io.Writer, host string, timeout time.Duration) error {
	c, err := network.Dial(host, timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	start := time.Now()
	if err := c.SendMessage(network.NewPing()); err != nil {
		return err
	}

	m, err := c.ReadMessage(timeout)
	if err != nil {
		return err
	}

	if m.Type != network.TypePong {
		return fmt.Errorf("expected %s, got %s", network.TypePong, m.Type)
	}

	fmt.Fprintf(w, "%s from %s in %v\n", m.Type, host, time.Since(start))
	return nil
}
