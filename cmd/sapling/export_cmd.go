package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"github.com/pbanos/sapling/tree/dot"
	"github.com/pbanos/sapling/tree/json"
	"github.com/spf13/cobra"
)

type exportCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
	output        string
	format        string
	positiveClass int
}

func exportCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &exportCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a tree",
		Long:  `Export a tree as indented text, a Graphviz DOT digraph or JSON`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				exit(1, err)
			}
			schema, err := readSchema(config.metadataInput)
			if err != nil {
				exit(2, err)
			}
			t, err := config.loadTree(config.Context(), config.treeInput, schema)
			if err != nil {
				exit(3, err)
			}
			if config.positiveClass != dot.MostLikely {
				if err = schema.Label().Valid(feature.DiscreteValue(config.positiveClass)); err != nil {
					exit(4, fmt.Errorf("positive-class flag: %v", err))
				}
			}
			w := io.Writer(os.Stdout)
			if config.output != "" {
				f, err := os.Create(config.output)
				if err != nil {
					exit(5, err)
				}
				defer f.Close()
				w = f
			}
			err = config.export(t, w)
			if err != nil {
				exit(6, err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YAML (.yml, .yaml) or names file with metadata describing the features (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "tree to export: "+treeHelp+" (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to write the export to (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "text", "export format: text, dot or json")
	cmd.PersistentFlags().IntVar(&(config.positiveClass), "positive-class", dot.MostLikely, "label code whose probability is shown on the leaves of DOT exports (defaults to the most likely label of each leaf)")
	return cmd
}

func (ecc *exportCmdConfig) Validate() error {
	if ecc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if ecc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	switch ecc.format {
	case "text", "dot", "json":
	default:
		return fmt.Errorf("unknown format %q: use text, dot or json", ecc.format)
	}
	return nil
}

func (ecc *exportCmdConfig) export(t *tree.Tree, w io.Writer) error {
	switch ecc.format {
	case "dot":
		return dot.WriteDOT(t, ecc.positiveClass, w)
	case "json":
		return json.WriteJSONTree(ecc.Context(), t, json.NewNodeEncodeDecoder(t.Schema()), w)
	}
	_, err := fmt.Fprintln(w, t)
	return err
}
