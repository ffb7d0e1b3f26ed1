// This program performs administrative tasks for the ledger.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ardanlabs/minichain/app/tooling/admin/commands"
	"github.com/ardanlabs/minichain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("startup", "version", build)

	return processCommands(os.Args, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, log *zap.SugaredLogger) error {
	if len(args) < 2 {
		return errors.New("usage: admin demo [difficulty] | genkey <folder> <name>... | ping <host>")
	}

	switch args[1] {
	case "demo":
		difficulty := uint(4)
		if len(args) > 2 {
			d, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("parsing difficulty: %w", err)
			}
			difficulty = uint(d)
		}

		ev := func(v string, args ...any) {
			log.Debugw(fmt.Sprintf(v, args...))
		}
		if err := commands.Demo(os.Stdout, difficulty, ev); err != nil {
			return fmt.Errorf("running demo: %w", err)
		}

	case "genkey":
		if len(args) < 4 {
			return errors.New("usage: admin genkey <folder> <name>...")
		}
		if err := commands.GenKey(os.Stdout, args[2], args[3:]...); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

	case "ping":
		if len(args) < 3 {
			return errors.New("usage: admin ping <host>")
		}
		if err := commands.Ping(os.Stdout, args[2], 5*time.Second); err != nil {
			return fmt.Errorf("pinging node: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
