package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
)

type splitCmdConfig struct {
	*setCmdConfig
	splitOutput      string
	splitProbability int
	seed             int64
}

func splitCmd(setConfig *setCmdConfig) *cobra.Command {
	config := &splitCmdConfig{setCmdConfig: setConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into two datasets",
		Long:  `Split a dataset into an output dataset and a split dataset, usually to obtain a training and a testing dataset`,
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
			seed := config.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			config.Logf("Splitting dataset with seed %d...", seed)
			kept, selected := p.SplitRandom(rand.New(rand.NewSource(seed)), float64(config.splitProbability)/100)
			output := &dataLocation{config.rootCmdConfig, config.setOutput, config.maxDBConns}
			err = output.writePartition(config.Context(), kept)
			if err != nil {
				exit(3, err)
			}
			splitOutput := &dataLocation{config.rootCmdConfig, config.splitOutput, config.maxDBConns}
			err = splitOutput.writePartition(config.Context(), selected)
			if err != nil {
				exit(4, err)
			}
			config.Logf("Done")
			config.Logf("Input dataset with %d entries was split into datasets with %d and %d entries", p.Count(), kept.Count(), selected.Count())
		},
	}
	cmd.Flags().StringVarP(&(config.splitOutput), "split-output", "s", "", "dataset to write the split entries to: "+datasetHelp+" (required)")
	cmd.Flags().IntVarP(&(config.splitProbability), "split-probability", "p", 20, "probability as percent integer that an entry of the dataset will be assigned to the split dataset")
	cmd.Flags().Int64Var(&(config.seed), "seed", 0, "seed for the random assignment of entries (defaults to 0: seeded with the current time)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	err := scc.setCmdConfig.Validate()
	if err != nil {
		return err
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}
