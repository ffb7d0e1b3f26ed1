package database

import (
	"fmt"
)

// Tx is the transactional information between two parties.
//
// There is no nonce, fee or signature. The same transaction can be submitted
// twice and both copies will be applied.
type Tx struct {
	From  PublicKey `json:"from"`  // Account sending the value.
	To    PublicKey `json:"to"`    // Account receiving the value.
	Value uint64    `json:"value"` // Monetary value moved by this transaction.
}

// NewTx constructs a new transaction. No validation is performed, the value
// can be zero and the sender can be the recipient.
func NewTx(from PublicKey, to PublicKey, value uint64) Tx {
	return Tx{
		From:  from,
		To:    to,
		Value: value,
	}
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.From, tx.To, tx.Value)
}
