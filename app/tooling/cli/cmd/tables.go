package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func render(cmd *cobra.Command, data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func blockTable(blocks []block) pterm.TableData {
	data := pterm.TableData{
		{"Number", "Hash", "Prev", "Nonce", "Time", "Txs"},
	}

	for _, blk := range blocks {
		data = append(data, []string{
			strconv.FormatUint(blk.Number, 10),
			short(blk.Hash),
			short(blk.PrevBlockHash),
			strconv.FormatUint(blk.Nonce, 10),
			time.UnixMilli(int64(blk.TimeStamp)).UTC().Format(time.RFC3339),
			strconv.Itoa(len(blk.Transactions)),
		})

		for _, tx := range blk.Transactions {
			data = append(data, []string{"", "", "", "", "", tx.Summary})
		}
	}

	return data
}

func txTable(trans []tx) pterm.TableData {
	data := pterm.TableData{
		{"#", "From", "To", "Value"},
	}

	for i, tx := range trans {
		data = append(data, []string{
			strconv.Itoa(i),
			tx.From,
			tx.To,
			strconv.FormatInt(tx.Value, 10),
		})
	}

	return data
}

func statusTable(st status) pterm.TableData {
	return pterm.TableData{
		{"Status", "Height", "Pending", "Difficulty", "Latest"},
		{st.Status, strconv.Itoa(st.Height), strconv.Itoa(st.Pending), strconv.Itoa(int(st.Difficulty)), short(st.LatestHash)},
	}
}

// short trims a hash down to something that fits in a table cell.
func short(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-6:]
}
