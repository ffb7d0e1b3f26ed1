// Package cmd contains the wallet app.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/foundation/blockchain/account"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd is the wallet command every other command hangs off.
var RootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
	Long:  `wallet manages account keys and talks to a node to send value, mine and check balances.`,
}

func init() {
	RootCmd.PersistentFlags().StringP("account", "a", "private", "Name of the account key file.")
	RootCmd.PersistentFlags().StringP("account-path", "p", "zblock/accounts/", "Path to the directory with the account keys.")
	RootCmd.PersistentFlags().StringP("url", "u", "http://localhost:8080", "Url of the node.")
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "binding flags:", err)
	}

	RootCmd.SilenceUsage = true

	viper.SetConfigName("wallet")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.wallet")

	viper.SetEnvPrefix("wallet")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(generateCmd, accountCmd, sendCmd, balanceCmd, mineCmd)
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

func keyPath() string {
	name := viper.GetString("account")
	if !strings.HasSuffix(name, account.KeyExtension) {
		name += account.KeyExtension
	}

	return filepath.Join(viper.GetString("account-path"), name)
}

func loadAccount() (account.Account, error) {
	return account.Load(keyPath())
}

func client() *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(viper.GetString("url"), "/")).
		SetHeader("Accept", "application/json")
}

// checkResponse turns a failed call into an error carrying the node's
// message.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}

	if resp.IsError() {
		if er, ok := resp.Error().(*errs.Response); ok && er.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status(), er.Error)
		}
		return fmt.Errorf("%s", resp.Status())
	}

	return nil
}
