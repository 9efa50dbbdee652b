// Package cmd contains the ledger cli commands.
package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs the command named in args.
func Execute(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err)
		return err
	}

	return nil
}

func newRootCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "ledger",
		Short:         "Command line access to a proof of work ledger node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Time to wait for the node to respond.")

	cln := func() *client {
		return newClient(url, timeout)
	}

	rootCmd.AddCommand(
		submitCmd(cln),
		mineCmd(cln),
		signalCmd(cln),
		blocksCmd(cln),
		pendingCmd(cln),
		statusCmd(cln),
	)

	return rootCmd
}
