package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	dataInput     string
	metadataInput string
	maxDBConns    int
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Test the performance of a tree against a test dataset`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				exit(1, err)
			}
			input := &dataLocation{config.rootCmdConfig, config.dataInput, config.maxDBConns}
			schema, testingSet, err := input.loadDataset(config.Context(), config.metadataInput)
			if err != nil {
				exit(2, err)
			}
			t, err := config.loadTree(config.Context(), config.treeInput, schema)
			if err != nil {
				exit(3, err)
			}
			config.Logf("Testing tree against dataset with %d entries...", testingSet.Count())
			e, err := t.Test(config.Context(), testingSet)
			if err != nil {
				exit(4, fmt.Errorf("testing tree: %v", err))
			}
			config.Logf("Done")
			renderEvaluation(os.Stdout, schema.Label(), e)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "dataset to test the tree against: "+datasetHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", metadataHelp)
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "tree to test: "+treeHelp+" (required)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time on SQLite3 datasets (defaults to 0: no limit)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	if tcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if tcc.metadataInput == "" && !isDirectory(tcc.dataInput) {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

/*
renderEvaluation writes on w a summary table with the results of an
evaluation followed by its confusion table, with a row per actual label and
a column per predicted label.
*/
func renderEvaluation(w io.Writer, label *feature.DiscreteFeature, e *tree.Evaluation) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.AppendHeader(table.Row{"Entries", "Correct", "Unpredictable", "Success rate"})
	summary.AppendRow(table.Row{e.Samples, e.Correct, e.Unpredictable, fmt.Sprintf("%.4f", e.SuccessRate())})
	summary.Render()

	codes := label.Values()
	fmt.Fprintf(w, "%s: actual (rows) / predicted (columns)\n", label.Name())
	confusion := table.NewWriter()
	confusion.SetOutputMirror(w)
	header := table.Row{""}
	for _, c := range codes {
		header = append(header, c)
	}
	confusion.AppendHeader(header)
	for _, actual := range codes {
		row := table.Row{actual}
		for _, predicted := range codes {
			row = append(row, e.Confusion[actual][predicted])
		}
		confusion.AppendRow(row)
	}
	confusion.Render()
}
