package cmd

import (
	"fmt"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to another account",
	RunE:  sendRun,
}

func init() {
	sendCmd.Flags().StringP("to", "t", "", "Public key of the recipient.")
	sendCmd.Flags().Uint64P("value", "v", 0, "Value to send.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	a, err := loadAccount()
	if err != nil {
		return err
	}

	toHex, _ := cmd.Flags().GetString("to")
	value, _ := cmd.Flags().GetUint64("value")

	to, err := database.ToPublicKey(toHex)
	if err != nil {
		return fmt.Errorf("recipient: %w", err)
	}

	tx := struct {
		From  string `json:"from"`
		To    string `json:"to"`
		Value uint64 `json:"value"`
	}{
		From:  a.PublicKey.Hex(),
		To:    to.Hex(),
		Value: value,
	}

	var status struct {
		Status string `json:"status"`
	}

	resp, err := client().R().
		SetBody(tx).
		SetResult(&status).
		SetError(&errs.Response{}).
		Post("/v1/tx/submit")
	if err := checkResponse(resp, err); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), status.Status)
	return nil
}
