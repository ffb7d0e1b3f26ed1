package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
)

// GenKey creates a key file for each name in the folder. The node's name
// service reads this folder.
func GenKey(w io.Writer, folder string, names ...string) error {
	if err := os.MkdirAll(folder, 0700); err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}

	for _, name := range names {
		a, err := account.New(name)
		if err != nil {
			return err
		}

		path, err := a.Save(folder)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s: %s\n", path, a.PublicKey)
	}

	return nil
}
