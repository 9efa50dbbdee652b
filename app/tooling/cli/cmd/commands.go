package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func submitCmd(cln func() *client) *cobra.Command {
	var (
		from  string
		to    string
		value int64
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a transaction to the pending pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := newTx{From: from, To: to, Value: value}

			var resp struct {
				Status  string `json:"status"`
				Pending int    `json:"pending"`
			}
			if err := cln().post(cmd.Context(), "/v1/tx/submit", body, &resp); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("%s: %d pending", resp.Status, resp.Pending))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Sender of the transaction.")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Recipient of the transaction.")
	cmd.Flags().Int64VarP(&value, "value", "v", 0, "Value to send.")

	return cmd
}

func mineCmd(cln func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Mine the pending transactions and wait for the block",
		RunE: func(cmd *cobra.Command, args []string) error {
			var blk block
			if err := cln().post(cmd.Context(), "/v1/mining/mine", nil, &blk); err != nil {
				return err
			}

			return render(cmd, blockTable([]block{blk}))
		},
	}
}

func signalCmd(cln func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "signal",
		Short: "Ask the node to mine the pending transactions in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cln().post(cmd.Context(), "/v1/mining/signal", nil, nil); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint("mining signalled"))
			return nil
		},
	}
}

func blocksCmd(cln func() *client) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "blocks [number]",
		Short: "List the blocks in the chain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var blocks []block

			switch len(args) {
			case 0:
				if err := cln().get(cmd.Context(), "/v1/blocks/list", &blocks); err != nil {
					return err
				}

			default:
				if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
					return fmt.Errorf("invalid block number %q", args[0])
				}

				var blk block
				if err := cln().get(cmd.Context(), "/v1/blocks/"+args[0], &blk); err != nil {
					return err
				}
				blocks = append(blocks, blk)
			}

			if err := render(cmd, blockTable(blocks)); err != nil {
				return err
			}

			if !validate {
				return nil
			}

			var val validation
			if err := cln().get(cmd.Context(), "/v1/blocks/validate", &val); err != nil {
				return err
			}

			if !val.Valid {
				return fmt.Errorf("chain invalid: %s", val.Error)
			}

			fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("chain of %d blocks is valid", val.Height))
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the chain after listing.")

	return cmd
}

func pendingCmd(cln func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List the transactions waiting to be mined",
		RunE: func(cmd *cobra.Command, args []string) error {
			var trans []tx
			if err := cln().get(cmd.Context(), "/v1/tx/pending", &trans); err != nil {
				return err
			}

			return render(cmd, txTable(trans))
		},
	}
}

func statusCmd(cln func() *client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of the node",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st status
			if err := cln().get(cmd.Context(), "/v1/status", &st); err != nil {
				return err
			}

			return render(cmd, statusTable(st))
		},
	}
}
