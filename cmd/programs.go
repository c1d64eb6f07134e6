package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taitdna2/cholimex-display-checker/internal/report"
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List configured display programs and their thresholds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		codes := make([]string, 0, len(cfg.BaseMinimums))
		for code := range cfg.BaseMinimums {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tMIN/SLOT (VND)\tNAME")
		for _, code := range codes {
			fmt.Fprintf(w, "%s\t%s\t%s\n", code, report.FormatMoney(cfg.BaseMinimums[code]), cfg.ProgramNames[code])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(programsCmd)
}
