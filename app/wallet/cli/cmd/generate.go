package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair for the account",
	RunE:  generateRun,
}

func generateRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(keyPath()); err == nil {
		return fmt.Errorf("account key %q already exists", keyPath())
	}

	a, err := account.New(viper.GetString("account"))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(viper.GetString("account-path"), 0700); err != nil {
		return fmt.Errorf("creating account path: %w", err)
	}

	path, err := a.Save(viper.GetString("account-path"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", path, a)
	return nil
}
