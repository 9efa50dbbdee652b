// This program provides command line access to a running ledger node.
package main

import (
	"os"

	"github.com/ardanlabs/powledger/app/tooling/cli/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
