package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"restaurant-insights/config"
	"restaurant-insights/utils"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "restaurant-insights",
		Short: "Clean restaurant listings and compute review insights",
		Long: `restaurant-insights loads a CSV or TSV of restaurant listings, repairs the
raw fields into a canonical table and runs a fixed catalog of review analyses,
writing cleaned data, charts, a run manifest and optionally an HTML/PDF report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./restaurant-insights.yaml if present)")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newRunCmd(&cfgFile), newValidateCmd(&cfgFile))
	return root
}

// Execute is the entry point called by main.main().
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the run configuration for cmd and builds the logger.
func loadConfig(cmd *cobra.Command, cfgFile string, args []string) (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
	if cfg.InputPath == "" {
		return nil, nil, fmt.Errorf("%w: no input path given", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := utils.NewLoggerTo(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Verbose)
	return cfg, logger, nil
}
