package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/covid-timeseries-etl/internal/adapter/web"
	"github.com/couchcryptid/covid-timeseries-etl/internal/domain"
)

// extraction is the printed result for one input.
type extraction struct {
	Input     string           `json:"input"`
	Published *time.Time       `json:"published,omitempty"`
	Fact      domain.DailyFact `json:"fact"`
	Matches   []domain.Match   `json:"matches"`
}

func newExtractCmd() *cobra.Command {
	var text bool
	var patterns string

	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Print the facts extracted from release pages",
		Long: `Runs the pattern table over saved release pages and prints the extracted
fact and the patterns that fired as JSON. Use "-" to read standard input and
--text for plain prose instead of HTML.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadPatterns(patterns)
			if err != nil {
				return err
			}
			ex := domain.NewExtractor(table)

			out := make([]extraction, 0, len(args))
			for _, name := range args {
				data, err := readInput(cmd.InOrStdin(), name)
				if err != nil {
					return err
				}
				res, err := extractOne(ex, name, data, text)
				if err != nil {
					return err
				}
				out = append(out, res)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "inputs are plain text, not release HTML")
	cmd.Flags().StringVar(&patterns, "patterns", sharedcfg.EnvOrDefault("PATTERNS_FILE", ""), "pattern table YAML (default embedded)")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func extractOne(ex *domain.Extractor, name string, data []byte, text bool) (extraction, error) {
	res := extraction{Input: name}
	body := string(data)
	if !text {
		published, b, err := web.ParseRelease(data)
		if err != nil {
			return res, fmt.Errorf("%s: %w", name, err)
		}
		res.Published = &published
		body = b
	}

	fact, matches, err := ex.Extract(body)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	res.Fact = fact
	res.Matches = matches
	if res.Matches == nil {
		res.Matches = []domain.Match{}
	}
	return res, nil
}
