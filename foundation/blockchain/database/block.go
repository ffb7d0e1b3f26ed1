package database

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrChainMoved is returned when a block does not extend the current tip of
// the chain, either by number or by previous block hash.
var ErrChainMoved = errors.New("block does not extend the current tip")

// ErrUnsolved is returned when a block hash does not satisfy the difficulty.
var ErrUnsolved = errors.New("block hash does not satisfy the difficulty")

// =============================================================================

// HashLength is the size of a block hash and of the content digest.
const HashLength = 32

// MaxDifficulty is the largest difficulty that can ever be solved, one 0 for
// every hex character of the hash.
const MaxDifficulty = HashLength * 2

// Hash represents a SHA-256 digest.
type Hash [HashLength]byte

// ZeroHash represents a hash code of zeros.
var ZeroHash Hash

// Hex returns the hex encoding of the hash without a 0x prefix.
func (h Hash) Hex() string {
	return common.Bytes2Hex(h[:])
}

// String implements the fmt.Stringer interface.
func (h Hash) String() string {
	return h.Hex()
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(text []byte) error {
	b := common.FromHex(string(text))
	if len(b) != HashLength {
		return errors.New("invalid hash format")
	}

	copy(h[:], b)
	return nil
}

// =============================================================================

// SeedSize is the size of the buffer the content digest is computed over.
const SeedSize = 1024

// ContentSeed is the opaque buffer a block's content digest is computed from.
type ContentSeed [SeedSize]byte

// PlaceholderSeed is the zero-filled seed used for every mined block. The
// resulting digest is the same for all of them and says nothing about the
// transactions in the block.
var PlaceholderSeed ContentSeed

// =============================================================================

// BlockHeader represents the fields that make up the identity of a block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Height of the block, genesis is 0.
	TimeStamp     uint64 `json:"timestamp"`       // Unix seconds when the block was constructed.
	PrevBlockHash Hash   `json:"prev_block_hash"` // Hash of the previous block in the chain.
	ContentDigest Hash   `json:"content_digest"`  // Digest of the content seed, stands in for a merkle root.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader `json:"header"`
	Trans  []Tx        `json:"trans"`
}

// NewGenesisBlock constructs the first block of every chain, stamped with
// the current time.
func NewGenesisBlock() Block {
	return NewGenesisBlockAt(uint64(time.Now().UTC().Unix()))
}

// NewGenesisBlockAt constructs a genesis block with a fixed timestamp. Nodes
// that exchange blocks must start from the same genesis.
func NewGenesisBlockAt(timeStamp uint64) Block {
	return Block{
		Header: BlockHeader{
			Number:    0,
			TimeStamp: timeStamp,
		},
	}
}

// NewBlock constructs a block with no transactions and a nonce of 0. The
// content digest is computed here once and never again, adding transactions
// later does not change it.
func NewBlock(number uint64, prevBlockHash Hash, seed ContentSeed) Block {
	return Block{
		Header: BlockHeader{
			Number:        number,
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			PrevBlockHash: prevBlockHash,
			ContentDigest: sha256.Sum256(seed[:]),
		},
	}
}

// Hash returns the unique hash for the Block.
//
// Only the header fields are hashed, little endian for the integers and in
// field order. The transactions are not part of the identity of a block.
func (b Block) Hash() Hash {
	data := make([]byte, 0, 8+8+HashLength+HashLength+8)
	data = binary.LittleEndian.AppendUint64(data, b.Header.Number)
	data = binary.LittleEndian.AppendUint64(data, b.Header.TimeStamp)
	data = append(data, b.Header.PrevBlockHash[:]...)
	data = append(data, b.Header.ContentDigest[:]...)
	data = binary.LittleEndian.AppendUint64(data, b.Header.Nonce)

	return sha256.Sum256(data)
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Block #%d\n", b.Header.Number)
	fmt.Fprintf(&sb, "  Timestamp:        %d\n", b.Header.TimeStamp)
	fmt.Fprintf(&sb, "  Prev Hash:        %s\n", b.Header.PrevBlockHash)
	fmt.Fprintf(&sb, "  Content Digest:   %s\n", b.Header.ContentDigest)
	fmt.Fprintf(&sb, "  Nonce:            %d\n", b.Header.Nonce)
	fmt.Fprintf(&sb, "  Num Transactions: %d\n", len(b.Trans))

	return sb.String()
}

// PerformPOW does the work of mining to find a valid hash for the block.
// The nonce is incremented by 1 from its current value until the hash
// satisfies the difficulty or the context is cancelled. Pointer semantics are
// being used since a nonce is being discovered. It returns the number of
// hashes computed.
func (b *Block) PerformPOW(ctx context.Context, difficulty uint, ev func(v string, args ...any)) (uint64, error) {
	ev("database: PerformPOW: MINING: started: blk[%d]: difficulty[%d]", b.Header.Number, difficulty)
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Header.Number)

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED: attempts[%d]", attempts)
			return attempts, ctx.Err()
		}

		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if !IsHashSolved(difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return attempts, nil
	}
}

// ValidateBlock takes a block and validates it can be the next block after
// the specified previous block. The same predicate used for mining is used
// here so any block this node mines passes.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint, ev func(v string, args ...any)) error {
	ev("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return fmt.Errorf("%w: this block is not the next number, got %d, exp %d", ErrChainMoved, b.Header.Number, nextNumber)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrChainMoved, b.Header.PrevBlockHash, previousBlock.Hash())
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	hash := b.Hash()
	if !IsHashSolved(difficulty, hash) {
		return fmt.Errorf("%w: %s, difficulty %d", ErrUnsolved, hash, difficulty)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block's timestamp is not before parent block's timestamp", b.Header.Number)

	if b.Header.TimeStamp < previousBlock.Header.TimeStamp {
		parentTime := time.Unix(int64(previousBlock.Header.TimeStamp), 0)
		blockTime := time.Unix(int64(b.Header.TimeStamp), 0)
		return fmt.Errorf("block timestamp is before parent block, parent %s, block %s", parentTime, blockTime)
	}

	return nil
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// The hex encoding of the hash needs to start with difficulty number of 0's.
func IsHashSolved(difficulty uint, hash Hash) bool {
	const match = "0000000000000000000000000000000000000000000000000000000000000000"

	if difficulty > MaxDifficulty {
		return false
	}

	return hash.Hex()[:difficulty] == match[:difficulty]
}
