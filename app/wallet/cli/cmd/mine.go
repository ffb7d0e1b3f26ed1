package cmd

import (
	"fmt"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine the next block and wait for it",
	RunE:  mineRun,
}

func mineRun(cmd *cobra.Command, args []string) error {
	var blk struct {
		Number uint64 `json:"number"`
		Hash   string `json:"hash"`
		Trans  []any  `json:"trans"`
	}

	resp, err := client().R().
		SetResult(&blk).
		SetError(&errs.Response{}).
		Post("/v1/mining/mine")
	if err := checkResponse(resp, err); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Mined block %d: %s: txs[%d]\n", blk.Number, blk.Hash, len(blk.Trans))
	return nil
}
