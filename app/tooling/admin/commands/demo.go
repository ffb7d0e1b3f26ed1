// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
)

// Demo runs an in memory ledger through two mined blocks. A transfer of 100
// from justin to aj goes into the first block, the second block is empty.
func Demo(w io.Writer, difficulty uint, ev state.EventHandler) error {
	st, err := state.New(state.Config{
		Difficulty: difficulty,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	aj, err := account.New("aj")
	if err != nil {
		return err
	}
	justin, err := account.New("justin")
	if err != nil {
		return err
	}

	fmt.Fprint(w, aj)
	fmt.Fprint(w, justin)
	fmt.Fprintln(w)

	fmt.Fprint(w, st.RetrieveLatestBlock())

	st.SubmitTransaction(database.NewTx(justin.PublicKey, aj.PublicKey, 100))

	ctx := context.Background()

	fmt.Fprintln(w, "Mining...")
	if _, err := st.MineNewBlock(ctx); err != nil {
		return err
	}
	fmt.Fprint(w, st.RetrieveLatestBlock())

	fmt.Fprintf(w, "AJ Balance: %d\n", st.BalanceOf(aj.PublicKey))

	fmt.Fprintln(w, "Mining...")
	if _, err := st.MineNewBlock(ctx); err != nil {
		return err
	}
	fmt.Fprint(w, st.RetrieveLatestBlock())

	return nil
}
