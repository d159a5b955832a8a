package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type setCmdConfig struct {
	*rootCmdConfig
	setInput      string
	metadataInput string
	setOutput     string
	maxDBConns    int
}

func setCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &setCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Manage datasets",
		Long:  `Manage datasets, copying them between the supported storages`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				exit(1, err)
			}
			input := &dataLocation{config.rootCmdConfig, config.setInput, config.maxDBConns}
			_, p, err := input.loadDataset(config.Context(), config.metadataInput)
			if err != nil {
				exit(2, err)
			}
			output := &dataLocation{config.rootCmdConfig, config.setOutput, config.maxDBConns}
			err = output.writePartition(config.Context(), p)
			if err != nil {
				exit(3, err)
			}
			config.Logf("Done: %d entries copied", p.Count())
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.setInput), "input", "i", "", "dataset to read: "+datasetHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", metadataHelp)
	cmd.PersistentFlags().StringVarP(&(config.setOutput), "output", "o", "", "dataset to write: "+datasetHelp+" (defaults to STDOUT in CSV)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time on SQLite3 datasets (defaults to 0: no limit)")
	cmd.AddCommand(splitCmd(config))
	return cmd
}

func (scc *setCmdConfig) Validate() error {
	if scc.metadataInput == "" && !isDirectory(scc.setInput) {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}
