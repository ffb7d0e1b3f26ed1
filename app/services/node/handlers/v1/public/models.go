package public

import (
	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

type balance struct {
	Account database.PublicKey `json:"account"`
	Name    string             `json:"name"`
	Balance int64              `json:"balance"`
}

type balances struct {
	LatestBlock database.Hash `json:"latest_block"`
	Uncommitted int           `json:"uncommitted"`
	Balances    []balance     `json:"balances"`
}

type tx struct {
	From     database.PublicKey `json:"from"`
	FromName string             `json:"from_name"`
	To       database.PublicKey `json:"to"`
	ToName   string             `json:"to_name"`
	Value    uint64             `json:"value"`
}

type block struct {
	Number        uint64        `json:"number"`
	Hash          database.Hash `json:"hash"`
	PrevBlockHash database.Hash `json:"prev_block_hash"`
	ContentDigest database.Hash `json:"content_digest"`
	TimeStamp     uint64        `json:"timestamp"`
	Nonce         uint64        `json:"nonce"`
	Transactions  []tx          `json:"trans"`
}

// =============================================================================

// submitTx is the payload a wallet posts to transfer value.
type submitTx struct {
	From  string `json:"from" validate:"required,pubkey"`
	To    string `json:"to" validate:"required,pubkey"`
	Value uint64 `json:"value"`
}

// Validate checks the data in the model is considered clean.
func (stx submitTx) Validate() error {
	return validate.Check(stx)
}

// toDBTx converts a validated payload into a transaction.
func (stx submitTx) toDBTx() (database.Tx, error) {
	from, err := database.ToPublicKey(stx.From)
	if err != nil {
		return database.Tx{}, err
	}

	to, err := database.ToPublicKey(stx.To)
	if err != nil {
		return database.Tx{}, err
	}

	return database.NewTx(from, to, stx.Value), nil
}
