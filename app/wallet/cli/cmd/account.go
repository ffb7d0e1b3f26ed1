package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the public key for the account",
	RunE:  accountRun,
}

func accountRun(cmd *cobra.Command, args []string) error {
	a, err := loadAccount()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), a.PublicKey)
	return nil
}
