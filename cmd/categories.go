package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/triage/internal/settings"
)

const keywordPreview = 5

func newCategoriesCommand(root *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the configured categories and their keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := loadStore(root)
			if err != nil {
				return err
			}
			snap := store.Snapshot()

			high := make(map[string]bool)
			for _, name := range snap.HighPriority() {
				high[name] = true
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Category", "High Priority", "Keywords", "Examples"})

			for _, cat := range snap.Categories() {
				examples := cat.Keywords
				if !all && len(examples) > keywordPreview {
					examples = examples[:keywordPreview]
				}
				name := cat.Name
				if name == snap.UnknownCategory() {
					name += " (fallback)"
				}
				t.AppendRow(table.Row{name, yesNo(high[cat.Name]), len(cat.Keywords), strings.Join(examples, ", ")})
			}
			t.Render()

			if ignored := snap.IgnoredHighPriority(); len(ignored) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Ignored high-priority entries: %s\n", strings.Join(ignored, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "show every keyword")
	return cmd
}

func newNeighborhoodsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "neighborhoods",
		Short: "List the neighborhoods and their priority weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := loadStore(root)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Neighborhood", "Weight"})
			for _, n := range store.Snapshot().Neighborhoods() {
				t.AppendRow(table.Row{n.Name, fmt.Sprintf("%+d", n.Weight)})
			}
			t.Render()
			return nil
		},
	}
}

func loadStore(root *rootOptions) (*settings.Store, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := root.cliLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return settings.NewStore(cfg.State(), log)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
