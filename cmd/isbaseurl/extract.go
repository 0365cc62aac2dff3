package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/isbaseurl/internal/discover"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.html|->",
	Short: "Rank the links of a local HTML document",
	Long:  "Collects every absolute link and inline code URL from an HTML file (or stdin) and lists those scoring at least --min-score, best first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractBase     string
	extractMinScore float64
	extractNoCheck  bool
	extractWeights  string
	extractJSON     bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractBase, "base", "b", "", "Base URL for resolving relative links")
	extractCmd.Flags().Float64Var(&extractMinScore, "min-score", 0, "Only list links scoring at least this much")
	extractCmd.Flags().BoolVar(&extractNoCheck, "no-check", false, "Skip URL syntax validation")
	extractCmd.Flags().StringVarP(&extractWeights, "weights", "w", "", "Path to a YAML file with weight overrides")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print results as a JSON array")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	weights, err := loadWeights(extractWeights)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		in = f
	}

	logger := newLogger(cmd.ErrOrStderr(), "text", "warn")
	sc := scoring.NewScorer(weights, !extractNoCheck, logger)
	ranked, err := extractRanked(cmd.Context(), in, sc, extractBase, extractMinScore)
	if err != nil {
		return err
	}
	return printRanked(cmd.OutOrStdout(), ranked, extractJSON)
}

func extractRanked(ctx context.Context, in io.Reader, sc *scoring.Scorer, base string, minScore float64) ([]discover.Ranked, error) {
	links, err := discover.Links(in, base)
	if err != nil {
		return nil, err
	}
	return discover.Rank(ctx, sc, links, scoring.Overrides{}, minScore)
}

func printRanked(w io.Writer, ranked []discover.Ranked, asJSON bool) error {
	if asJSON {
		if ranked == nil {
			ranked = []discover.Ranked{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tSOURCE\tURL")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%.4f\t%s\t%s\n", r.Score, r.Source, r.URL)
	}
	return tw.Flush()
}
