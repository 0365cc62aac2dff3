package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [url...]",
	Short: "Score candidate base URLs",
	Long:  "Scores each URL argument, or each line of stdin when no arguments are given. URLs that fail validation are reported as n/a.",
	RunE:  runScore,
}

var (
	scoreNoCheck bool
	scoreWeights string
	scoreJSON    bool
	scoreExplain bool
)

func init() {
	scoreCmd.Flags().BoolVar(&scoreNoCheck, "no-check", false, "Skip URL syntax validation")
	scoreCmd.Flags().StringVarP(&scoreWeights, "weights", "w", "", "Path to a YAML file with weight overrides")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print one JSON result per line")
	scoreCmd.Flags().BoolVar(&scoreExplain, "explain", false, "Print every feature's contribution")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	weights, err := loadWeights(scoreWeights)
	if err != nil {
		return err
	}

	urls := args
	if len(urls) == 0 {
		urls, err = readLines(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read urls from stdin: %w", err)
		}
	}

	opts := scoring.Options{SkipURLCheck: scoreNoCheck, Weights: weights}
	return scoreURLs(cmd.OutOrStdout(), urls, opts, scoreJSON, scoreExplain)
}

// loadWeights reads a weights file and merges it over the defaults. An empty
// path yields the defaults.
func loadWeights(path string) (scoring.Weights, error) {
	w := scoring.DefaultWeights()
	if path == "" {
		return w, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read weights file: %w", err)
	}
	var override scoring.Weights
	if err := yaml.Unmarshal(data, &override); err != nil {
		return w, fmt.Errorf("failed to parse weights file: %w", err)
	}
	if err := override.Validate(); err != nil {
		return w, err
	}
	return w.Merge(override), nil
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

type scoreLine struct {
	scoring.Result
	Applicable bool                   `json:"applicable"`
	Signals    []scoring.SignalResult `json:"signals,omitempty"`
}

func scoreURLs(w io.Writer, urls []string, opts scoring.Options, asJSON, explain bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, u := range urls {
			res, ok := scoring.IsBaseURL(u, opts)
			line := scoreLine{Result: res, Applicable: ok}
			if !ok {
				line.CandidateURL = u
			} else if explain {
				line.Signals = scoring.Breakdown(res.Features, opts.Weights)
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, u := range urls {
		res, ok := scoring.IsBaseURL(u, opts)
		if !ok {
			fmt.Fprintf(tw, "n/a\t%s\n", u)
			continue
		}
		fmt.Fprintf(tw, "%.4f\t%s\n", res.Score, u)
		if explain {
			for _, sr := range scoring.Breakdown(res.Features, opts.Weights) {
				if sr.Present {
					fmt.Fprintf(tw, "\t  %s\t%+.4f\n", sr.Name, sr.Contribution)
				}
			}
		}
	}
	return tw.Flush()
}
