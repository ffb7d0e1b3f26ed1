package private

import "github.com/ardanlabs/minichain/foundation/blockchain/database"

type status struct {
	LatestBlockHash   database.Hash `json:"latest_block_hash"`
	LatestBlockNumber uint64        `json:"latest_block_number"`
	Difficulty        uint          `json:"difficulty"`
	Uncommitted       int           `json:"uncommitted"`
	Peers             []string      `json:"peers"`
}
