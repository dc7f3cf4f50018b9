package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	lineageInput  string
	lineageSample string
	lineageRank   int
)

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Print the ancestry of one sample in a ranked tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		if lineageSample == "" {
			return fmt.Errorf("--sample is required")
		}
		res, err := runPipeline(lineageInput)
		if err != nil {
			return err
		}
		tree, err := pickTree(res, lineageRank)
		if err != nil {
			return err
		}

		s, ok := res.Network.SampleByName(lineageSample)
		if !ok {
			return fmt.Errorf("unknown sample %q", lineageSample)
		}
		text, err := tree.Lineage(s)
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	lineageCmd.Flags().StringVarP(&lineageInput, "input", "i", "", "Dataset file (YAML or JSON)")
	lineageCmd.Flags().StringVarP(&lineageSample, "sample", "s", "", "Sample name or S<i> label")
	lineageCmd.Flags().IntVar(&lineageRank, "rank", 1, "Tree rank (1 = best)")
	rootCmd.AddCommand(lineageCmd)
}
