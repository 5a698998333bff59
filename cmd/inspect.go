package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geocoder/internal/table"
)

var (
	inspectInput    string
	inspectRows     int
	inspectEncoding string
	inspectSheet    string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the columns and first rows of an input file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := table.ReadFile(inspectInput, table.ReadOptions{
			Encoding:  inspectEncoding,
			Sheet:     inspectSheet,
			TrimSpace: true,
		})
		if err != nil {
			return eris.Wrap(err, "inspect: read input")
		}
		return printTable(cmd.OutOrStdout(), inspectInput, t, inspectRows)
	},
}

// printTable writes the shape, column names and head of t.
func printTable(w io.Writer, name string, t *table.Table, rows int) error {
	cols := t.Columns()
	fmt.Fprintf(w, "%s: %d rows x %d columns\n\n", name, t.Len(), len(cols)) //nolint:errcheck

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t")) //nolint:errcheck
	head := t.Head(rows)
	for i := 0; i < head.Len(); i++ {
		row := head.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")) //nolint:errcheck
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "inspect: write table")
	}
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectInput, "input", "", "CSV or XLSX file (required)")
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 5, "number of rows to show")
	inspectCmd.Flags().StringVar(&inspectEncoding, "encoding", "", "CSV character encoding (default UTF-8)")
	inspectCmd.Flags().StringVar(&inspectSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	_ = inspectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(inspectCmd)
}
