package cmd

import (
	"github.com/spf13/cobra"

	"restaurant-insights/config"
)

func newRunCmd(cfgFile *string) *cobra.Command {
	c := &cobra.Command{
		Use:   "run [input]",
		Short: "Clean the input table and run every analysis",
		Example: `  restaurant-insights run data/restaurants.csv
  restaurant-insights run data/restaurants.tsv --top-n 5 --report --out results
  RESTAURANT_STORE=sqlite restaurant-insights run data/restaurants.csv --parallel`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, *cfgFile, args)
			if err != nil {
				return err
			}
			p := &pipeline{cfg: cfg, logger: logger, stdout: cmd.OutOrStdout()}
			_, err = p.run(cmd.Context())
			return err
		},
	}

	f := c.Flags()
	f.Int("top-n", 10, "rows per category in top_n_per_category (at least 1)")
	f.Int("bins", 20, "histogram buckets for review_count_distribution")
	f.Bool("report", false, "assemble report.html and report.pdf")
	f.String("out", "./output", "output directory")
	f.Bool("parallel", false, "run the analyses on a worker pool")
	f.Int("workers", 4, "worker count for parallel analyses and chart rendering")
	f.String("store", config.StoreNone, "persist the cleaned table: none, postgres or sqlite")
	f.String("sqlite-path", "./output/restaurants.db", "SQLite database file for --store sqlite")
	return c
}
