package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lichee/lineage/internal/lineage"
)

var (
	buildInput string
	buildJSON  bool
	buildTopN  int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the constraint network and summarize its topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, groups, numSamples, err := loadInput(buildInput)
		if err != nil {
			return err
		}
		net, err := newPipeline(ds).BuildNetwork(groups, numSamples)
		if err != nil {
			return fmt.Errorf("building network: %w", err)
		}

		report := lineage.ComputeTopology(net, buildTopN)
		if buildJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printTopology(report)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "Dataset file (YAML or JSON)")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Output as JSON")
	buildCmd.Flags().IntVar(&buildTopN, "top-n", 10, "Number of hub nodes to show")
	rootCmd.AddCommand(buildCmd)
}

func printTopology(r *lineage.TopologyReport) {
	fmt.Println("\n  NETWORK")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Nodes: %d  Edges: %d  Samples: %d  Groups: %d\n", r.TotalNodes, r.TotalEdges, r.Samples, r.Groups)
	acyclic := "yes"
	if !r.Acyclic {
		acyclic = "NO"
	}
	fmt.Printf("  Components: %d  Acyclic: %s\n", r.NumComponents, acyclic)

	fmt.Println("\n  Nodes per level:")
	for _, l := range r.Levels {
		fmt.Printf("    %3d: %d\n", l.Level, l.Nodes)
	}

	if len(r.Orphans) > 0 {
		fmt.Printf("\n  Nodes without a parent: %s\n", strings.Join(r.Orphans, ", "))
	}

	fmt.Println("\n  Out-degree distribution:")
	for _, b := range r.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(r.Hubs) > 0 {
		fmt.Println("\n  Most branching nodes:")
		for _, h := range r.Hubs {
			fmt.Printf("    %-16s level=%d out=%d in=%d\n", h.Label, h.Level, h.OutDegree, h.InDegree)
		}
	}
	fmt.Println()
}
