package cmd

import (
	"fmt"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/spf13/cobra"
)

type balances struct {
	LatestBlock string `json:"latest_block"`
	Uncommitted int    `json:"uncommitted"`
	Balances    []struct {
		Account string `json:"account"`
		Name    string `json:"name"`
		Balance int64  `json:"balance"`
	} `json:"balances"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	RunE:  balanceRun,
}

func balanceRun(cmd *cobra.Command, args []string) error {
	a, err := loadAccount()
	if err != nil {
		return err
	}

	var bals balances
	resp, err := client().R().
		SetResult(&bals).
		SetError(&errs.Response{}).
		Get("/v1/balances/list/" + a.PublicKey.Hex())
	if err := checkResponse(resp, err); err != nil {
		return err
	}

	var balance int64
	if len(bals.Balances) > 0 {
		balance = bals.Balances[0].Balance
	}

	fmt.Fprintf(cmd.OutOrStdout(), "For Account: %s\n%d\n", a.PublicKey, balance)
	return nil
}
