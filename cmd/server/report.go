// cmd/server/report.go

// report 子命令：載入最近一次快照，輸出排序後的利息報表，不啟動伺服器。

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rubank/internal/bank"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the sorted interest report from the latest snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStore()

		b := bank.NewBank(bank.WithLogger(discard()))
		if err := restore(cmd.Context(), store, b); err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), b)
	},
}

// printReport 輸出利息報表；資料庫為空時只輸出提示訊息。
func printReport(w io.Writer, b *bank.Bank) error {
	lines, err := b.InterestInfo(true)
	if errors.Is(err, bank.ErrNoAccounts) {
		_, err = fmt.Fprintln(w, "Account Database is empty!")
		return err
	}
	if err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
