package network

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// Set of message types that can be exchanged between nodes.
const (
	TypePing  = "ping"
	TypePong  = "pong"
	TypeTx    = "tx"
	TypeBlock = "block"
)

// ErrUnknownType is returned when a line decodes but the type is not one
// this package understands.
var ErrUnknownType = errors.New("unknown message type")

// Message is the envelope for everything sent between nodes. It is encoded
// as a single line of JSON.
type Message struct {
	Type  string          `json:"type"`
	Tx    *database.Tx    `json:"tx,omitempty"`
	Block *database.Block `json:"block,omitempty"`
}

// NewPing constructs a ping message.
func NewPing() Message {
	return Message{Type: TypePing}
}

// NewPong constructs a pong message.
func NewPong() Message {
	return Message{Type: TypePong}
}

// NewTxMessage constructs a transaction announcement.
func NewTxMessage(tx database.Tx) Message {
	return Message{Type: TypeTx, Tx: &tx}
}

// NewBlockMessage constructs a block announcement.
func NewBlockMessage(block database.Block) Message {
	return Message{Type: TypeBlock, Block: &block}
}

// Encode returns the message as a newline terminated line.
func (m Message) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	return append(data, '\n'), nil
}

// Decode parses a single line into a message. A line that is not JSON, has
// an unknown type or is missing its payload is an error.
func Decode(line []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(bytes.TrimSpace(line), &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}

	switch m.Type {
	case TypePing, TypePong:
	case TypeTx:
		if m.Tx == nil {
			return Message{}, fmt.Errorf("decode message: %s: missing tx", m.Type)
		}
	case TypeBlock:
		if m.Block == nil {
			return Message{}, fmt.Errorf("decode message: %s: missing block", m.Type)
		}
	default:
		return Message{}, fmt.Errorf("decode message: %q: %w", m.Type, ErrUnknownType)
	}

	return m, nil
}
