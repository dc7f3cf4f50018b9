package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportInput  string
	exportFormat string
	exportRank   int
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a ranked tree as Newick or Graphviz DOT",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runPipeline(exportInput)
		if err != nil {
			return err
		}
		tree, err := pickTree(res, exportRank)
		if err != nil {
			return err
		}

		var text string
		switch exportFormat {
		case "newick":
			text, err = tree.Newick()
			text += "\n"
		case "dot":
			text, err = tree.DOT("lineage")
		default:
			return fmt.Errorf("unknown format %q (want newick or dot)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("exporting tree: %w", err)
		}

		if exportOut == "" {
			fmt.Print(text)
			return nil
		}
		if err := os.WriteFile(exportOut, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOut, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Dataset file (YAML or JSON)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "newick", "Output format: newick or dot")
	exportCmd.Flags().IntVar(&exportRank, "rank", 1, "Tree rank (1 = best)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
