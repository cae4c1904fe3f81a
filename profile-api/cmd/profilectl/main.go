package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "profilectl",
		Short:         "Summarize digital profile datasets from local record files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(datasetsCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets that can be summarized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDatasets(cmd.OutOrStdout())
		},
	}
}

func summarizeCmd() *cobra.Command {
	var opts summarizeOptions

	cmd := &cobra.Command{
		Use:   "summarize [records-file]",
		Short: "Run the summary pipeline over a YAML or JSON record file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.path = args[0]
			return runSummarize(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dataset, "dataset", "d", "", "dataset name (defaults to the file's dataset key)")
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "output locale (ne, en)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json, jsonld")
	cmd.Flags().StringVar(&opts.labels, "labels", "", "YAML file merged over the built-in labels")
	return cmd
}

func validateCmd() *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "validate [records-file]",
		Short: "Check a record file for missing units and data quality issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0], dataset)
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset name (defaults to the file's dataset key)")
	return cmd
}
