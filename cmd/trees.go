package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"lichee/lineage/internal/lineage"
)

var (
	treesInput string
	treesTop   int
	treesJSON  bool
	treesSave  bool
	treesStats bool
)

// treeSummary is the JSON form of one ranked tree
type treeSummary struct {
	Rank  int      `json:"rank"`
	Score float64  `json:"score"`
	Edges []string `json:"edges"`
}

// treesOutput is the JSON form of a trees run
type treesOutput struct {
	RunID         string             `json:"run_id,omitempty"`
	Nodes         int                `json:"nodes"`
	Edges         int                `json:"edges"`
	Enumerated    int                `json:"enumerated"`
	Admitted      int                `json:"admitted"`
	Rejected      int                `json:"rejected"`
	Calls         int                `json:"calls"`
	Truncated     bool               `json:"truncated"`
	RemovedGroups []string           `json:"removed_groups,omitempty"`
	Trees         []treeSummary      `json:"trees"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

var treesCmd = &cobra.Command{
	Use:   "trees",
	Short: "Enumerate and rank the lineage trees of a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runPipeline(treesInput)
		if err != nil {
			return err
		}

		top := appConfig.Output.Top
		if cmd.Flags().Changed("top") {
			top = treesTop
		}

		out := treesOutput{
			Nodes:      res.Network.NumNodes(),
			Edges:      res.Network.NumEdges(),
			Enumerated: res.Enumerated,
			Admitted:   len(res.Trees),
			Rejected:   res.Rejected,
			Calls:      res.Calls,
			Truncated:  res.Truncated,
		}
		for _, g := range res.Removed {
			out.RemovedGroups = append(out.RemovedGroups, g.Tag)
		}
		for i, t := range limitTrees(res.Trees, top) {
			out.Trees = append(out.Trees, summarizeTree(i+1, t))
		}

		if treesSave && len(res.Trees) > 0 {
			d, err := OpenDatabase()
			if err != nil {
				return err
			}
			defer d.Close()
			out.RunID, err = lineage.SaveResult(d, res, top)
			if err != nil {
				return err
			}
		}

		if treesStats {
			out.Metrics, err = collector.Snapshot()
			if err != nil {
				return fmt.Errorf("reading metrics: %w", err)
			}
		}

		if treesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
		} else {
			printTrees(out)
		}

		if len(res.Trees) == 0 {
			return lineage.ErrNoLineage
		}
		return nil
	},
}

func init() {
	treesCmd.Flags().StringVarP(&treesInput, "input", "i", "", "Dataset file (YAML or JSON)")
	treesCmd.Flags().IntVar(&treesTop, "top", 5, "Number of ranked trees to print and save (0 = all)")
	treesCmd.Flags().BoolVar(&treesJSON, "json", false, "Output as JSON")
	treesCmd.Flags().BoolVar(&treesSave, "save", false, "Store the run in the database")
	treesCmd.Flags().BoolVar(&treesStats, "stats", false, "Include search metrics")
	rootCmd.AddCommand(treesCmd)
}

func limitTrees(trees []*lineage.Tree, top int) []*lineage.Tree {
	if top > 0 && len(trees) > top {
		return trees[:top]
	}
	return trees
}

func summarizeTree(rank int, t *lineage.Tree) treeSummary {
	net := t.Network()
	s := treeSummary{Rank: rank, Score: t.ErrorScore()}
	for _, e := range t.Edges() {
		s.Edges = append(s.Edges, net.Node(e.From).Label()+" -> "+net.Node(e.To).Label())
	}
	return s
}

func printTrees(out treesOutput) {
	fmt.Printf("\n  Network: %d nodes, %d edges\n", out.Nodes, out.Edges)
	fmt.Printf("  Trees: %d enumerated, %d admitted, %d rejected (%d search steps)\n",
		out.Enumerated, out.Admitted, out.Rejected, out.Calls)
	if out.Truncated {
		fmt.Println("  Search stopped early: budget reached, results are partial")
	}
	if len(out.RemovedGroups) > 0 {
		fmt.Printf("  Removed groups: %s\n", strings.Join(out.RemovedGroups, ", "))
	}
	if out.RunID != "" {
		fmt.Printf("  Saved run: %s\n", out.RunID)
	}

	for _, t := range out.Trees {
		fmt.Printf("\n  #%d  error=%.4f\n", t.Rank, t.Score)
		for _, e := range t.Edges {
			fmt.Printf("    %s\n", e)
		}
	}

	if len(out.Metrics) > 0 {
		fmt.Println("\n  Metrics:")
		names := make([]string, 0, len(out.Metrics))
		for name := range out.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("    %-40s %g\n", name, out.Metrics[name])
		}
	}
	fmt.Println()
}
