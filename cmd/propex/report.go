package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/disinfowatch/propextract/internal/report"
)

var (
	reportOut  string
	reportHTML bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a digest of the collection",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the digest to a file instead of stdout")
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "Render HTML instead of markdown")
}

func runReport(cmd *cobra.Command, args []string) error {
	col, _, err := loadCollection()
	if err != nil {
		return err
	}

	var out []byte
	if reportHTML {
		out, err = report.HTML(col)
		if err != nil {
			return err
		}
	} else {
		out = []byte(report.Markdown(col) + "\n")
	}

	if reportOut == "" {
		fmt.Print(string(out))
		return nil
	}
	if err := os.WriteFile(reportOut, out, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Wrote digest for %d entries to %s\n", len(col.Entries), reportOut)
	return nil
}
