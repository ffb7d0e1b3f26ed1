// Package account generates and stores the key pairs that identify accounts
// on the blockchain.
package account

import (
	"crypto/ecdsa"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyExtension is the file extension used for stored private keys.
const KeyExtension = ".ecdsa"

// SecretKeyLength is the size of a secp256k1 private key.
const SecretKeyLength = 32

// Account represents a named key pair. The name is a label only, more than
// one account can share it. The secret key must never be logged or sent to
// another node, String and JSON leave it out.
type Account struct {
	Name      string                `json:"name"`
	SecretKey [SecretKeyLength]byte `json:"-"`
	PublicKey database.PublicKey    `json:"public_key"`
}

// New generates a fresh key pair from the crypto/rand source. An error means
// the randomness source is unavailable and should be treated as fatal.
func New(name string) (Account, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Account{}, fmt.Errorf("generating key: %w", err)
	}

	return FromECDSA(name, privateKey), nil
}

// FromECDSA constructs an account from an existing private key.
func FromECDSA(name string, privateKey *ecdsa.PrivateKey) Account {
	a := Account{
		Name:      name,
		PublicKey: database.PublicKeyFromECDSA(privateKey.PublicKey),
	}
	copy(a.SecretKey[:], crypto.FromECDSA(privateKey))

	return a
}

// Load reads the private key stored at the path. The account name is the
// file name without the extension.
func Load(path string) (Account, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return Account{}, fmt.Errorf("loading key %q: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), KeyExtension)

	return FromECDSA(name, privateKey), nil
}

// Save writes the private key into the folder using the account name as the
// file name and returns the path of the file.
func (a Account) Save(folder string) (string, error) {
	privateKey, err := a.PrivateKey()
	if err != nil {
		return "", err
	}

	path := filepath.Join(folder, a.Name+KeyExtension)
	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		return "", fmt.Errorf("saving key %q: %w", path, err)
	}

	return path, nil
}

// PrivateKey converts the secret key into an ecdsa private key.
func (a Account) PrivateKey() (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(a.SecretKey[:])
}

// String implements the fmt.Stringer interface. The secret key is not part
// of the output.
func (a Account) String() string {
	return fmt.Sprintf("Account: %s\n  Public:  %s\n", a.Name, a.PublicKey)
}
