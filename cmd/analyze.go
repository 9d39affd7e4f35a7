package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/triage/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/session"
	"github.com/jonesrussell/north-cloud/triage/internal/toxicity"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

type analyzeOptions struct {
	neighborhood string
	toxicity     float64
	explain      bool
}

type analysisOutput struct {
	Neighborhood   string              `json:"neighborhood,omitempty"`
	LocationWeight int                 `json:"location_weight"`
	Result         domain.TriageResult `json:"result"`
	Notice         string              `json:"notice,omitempty"`
	Breakdown      *triage.Breakdown   `json:"breakdown,omitempty"`
}

var errEmptyComplaint = errors.New("complaint text is empty")

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [text|-]",
		Short: "Triage one complaint and print the result as JSON",
		Long: `Triage one complaint. The text is read from the argument, or from stdin
when the argument is "-" or missing. --toxicity skips the model service and
uses the given score instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := complaintText(cmd, args)
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := root.cliLogger(cfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			var oracle triage.Oracle
			if cmd.Flags().Changed("toxicity") {
				if opts.toxicity < 0 || opts.toxicity > 1 {
					return fmt.Errorf("--toxicity must be within [0, 1], got %v", opts.toxicity)
				}
				oracle = toxicity.Static{Value: opts.toxicity}
			} else {
				oracle = toxicity.NewClient(cfg.Toxicity, log, nil)
			}

			core, err := bootstrap.NewCore(cfg, oracle, log, nil)
			if err != nil {
				return err
			}

			snap, includeThreats := core.Settings.View()
			weight := snap.NeighborhoodWeight(opts.neighborhood)
			result, err := core.Analyzer.Analyze(cmd.Context(), snap, text, weight)
			if err != nil {
				return err
			}

			out := analysisOutput{
				Neighborhood:   opts.neighborhood,
				LocationWeight: weight,
				Result:         result,
				Notice:         session.Notice(result, includeThreats),
			}
			if opts.explain {
				b := snap.Explain(result.ToxicityScore, result.Category, result.MatchedKeywords, text, weight)
				out.Breakdown = &b
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&opts.neighborhood, "neighborhood", "n", "", "neighborhood the complaint concerns")
	cmd.Flags().Float64Var(&opts.toxicity, "toxicity", 0, "fixed toxicity score instead of calling the model service")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "include the per-term score breakdown")

	return cmd
}

func complaintText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errEmptyComplaint
	}
	return text, nil
}
