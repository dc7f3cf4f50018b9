package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lichee/lineage/internal/db"
)

var (
	runsJSON bool
	showJSON bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		runs, err := d.ListRuns()
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		if runsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs")
			return nil
		}
		for _, r := range runs {
			best := "-"
			if r.BestScore != nil {
				best = fmt.Sprintf("%.4f", *r.BestScore)
			}
			fmt.Printf("  %s  %s  samples=%d trees=%d best=%s repairs=%d\n",
				r.ID, formatTime(r.CreatedAt), r.NumSamples, r.NumTrees, best, r.Repairs)
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.DeleteRun(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted run %s\n", args[0])
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored run with its ranked trees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		rec, err := d.LoadRun(args[0])
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printRun(rec)
		return nil
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
}

func formatTime(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04:05")
}

func printRun(rec *db.RunRecord) {
	r := rec.Run
	fmt.Printf("\n  Run %s  (%s)\n", r.ID, formatTime(r.CreatedAt))
	fmt.Printf("  Samples: %d", r.NumSamples)
	if len(r.SampleNames) > 0 {
		fmt.Printf("  [%s]", strings.Join(r.SampleNames, ", "))
	}
	fmt.Println()
	fmt.Printf("  Network: %d nodes, %d edges\n", len(rec.Nodes), len(rec.Edges))
	fmt.Printf("  Enumerated: %d  Repairs: %d  Truncated: %v\n", r.Enumerated, r.Repairs, r.Truncated)
	if len(r.RemovedGroups) > 0 {
		fmt.Printf("  Removed groups: %s\n", strings.Join(r.RemovedGroups, ", "))
	}

	labels := make(map[int]string, len(rec.Nodes))
	for _, n := range rec.Nodes {
		labels[n.ID] = n.Label
	}
	for _, t := range rec.Trees {
		fmt.Printf("\n  #%d  error=%.4f\n", t.Rank, t.Score)
		for _, e := range t.Edges {
			fmt.Printf("    %s -> %s\n", labels[e.From], labels[e.To])
		}
	}
	fmt.Println()
}
