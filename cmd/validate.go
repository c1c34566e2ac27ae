package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newValidateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input]",
		Short: "Load, check and clean the input table without running analyses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, *cfgFile, args)
			if err != nil {
				return err
			}
			p := &pipeline{cfg: cfg, logger: logger, stdout: cmd.OutOrStdout()}
			table, stats, err := p.prepare()
			if err != nil {
				return err
			}

			pr := message.NewPrinter(language.English)
			w := cmd.OutOrStdout()
			pr.Fprintf(w, "\n  %s: %d rows in, %d rows out\n", cfg.InputPath, stats.RowsIn, stats.RowsOut)
			pr.Fprintf(w, "  columns           : %s\n", strings.Join(table.ColumnNames(), ", "))
			pr.Fprintf(w, "  repaired counts   : %d\n", stats.RepairedReviews)
			if stats.OnlineOrderFilled {
				pr.Fprintf(w, "  online_order      : absent, every row false\n")
			}

			cols := make([]string, 0, len(stats.MissingByColumn))
			for col := range stats.MissingByColumn {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			for _, col := range cols {
				if n := stats.MissingByColumn[col]; n > 0 {
					pr.Fprintf(w, "  missing %-10s: %d\n", col, n)
				}
			}
			pr.Fprintln(w)
			return nil
		},
	}
}
