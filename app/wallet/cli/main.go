package main

import "github.com/ardanlabs/minichain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
