package database

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PublicKeyLength is the size of a compressed secp256k1 public key.
const PublicKeyLength = 33

// PublicKey represents the compressed public key that identifies an account
// on the blockchain. It is the key used for the balances.
type PublicKey [PublicKeyLength]byte

// ToPublicKey converts a hex-encoded string to a public key and validates the
// bytes represent a point on the secp256k1 curve. The 0x prefix is optional.
func ToPublicKey(hex string) (PublicKey, error) {
	b := common.FromHex(hex)
	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("invalid public key length, got %d, exp %d", len(b), PublicKeyLength)
	}

	if _, err := secp256k1.ParsePubKey(b); err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key: %w", err)
	}

	var pk PublicKey
	copy(pk[:], b)

	return pk, nil
}

// PublicKeyFromECDSA converts the ecdsa public key into its compressed form.
func PublicKeyFromECDSA(pub ecdsa.PublicKey) PublicKey {
	var pk PublicKey
	copy(pk[:], crypto.CompressPubkey(&pub))

	return pk
}

// Hex returns the hex encoding of the public key without a 0x prefix.
func (pk PublicKey) Hex() string {
	return common.Bytes2Hex(pk[:])
}

// String implements the fmt.Stringer interface.
func (pk PublicKey) String() string {
	return pk.Hex()
}

// Compare orders two public keys byte-wise.
func (pk PublicKey) Compare(other PublicKey) int {
	return bytes.Compare(pk[:], other[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface. Only the
// length is checked here so any 33 bytes can travel through the API.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	b := common.FromHex(string(text))
	if len(b) != PublicKeyLength {
		return errors.New("invalid public key format")
	}

	copy(pk[:], b)
	return nil
}
