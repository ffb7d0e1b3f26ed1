// Package nameservice reads a folder of account keys and creates a name
// service lookup for the public keys.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[database.PublicKey]string
}

// New constructs a name service with the accounts found under the root
// folder. A missing folder produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[database.PublicKey]string),
	}

	if root == "" {
		return &ns, nil
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != account.KeyExtension {
			return nil
		}

		a, err := account.Load(fileName)
		if err != nil {
			return err
		}
		ns.accounts[a.PublicKey] = a.Name

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ns, nil
		}
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key. An unknown key
// returns its hex form.
func (ns *NameService) Lookup(pk database.PublicKey) string {
	name, exists := ns.accounts[pk]
	if !exists {
		return pk.Hex()
	}
	return name
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[database.PublicKey]string {
	cpy := make(map[database.PublicKey]string, len(ns.accounts))
	for pk, name := range ns.accounts {
		cpy[pk] = name
	}
	return cpy
}
