package main

import (
	"fmt"
	"os"

	"github.com/pbanos/sapling"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	output        string
	pruneStrategy string
	maxDepth      int
	concurrency   int
	maxDBConns    int
	profileMode   string
	profilePath   string
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a dataset",
		Long:  `Grow a tree from a dataset to predict its label feature.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				exit(1, err)
			}
			pruner, err := sapling.ParsePruner(config.pruneStrategy)
			if err != nil {
				exit(2, err)
			}
			input := &dataLocation{config.rootCmdConfig, config.dataInput, config.maxDBConns}
			schema, trainingSet, err := input.loadDataset(config.Context(), config.metadataInput)
			if err != nil {
				exit(3, err)
			}
			g := &sapling.Grower{
				Pruner:      pruner,
				MaxDepth:    config.maxDepth,
				Concurrency: config.concurrency,
				Logger:      config.Logger(),
			}
			stopProfile := config.startProfile()
			config.Logf("Growing tree from a dataset with %d entries and %d features to predict %s ...", trainingSet.Count(), schema.Len()-1, schema.Label().Name())
			t, err := g.Grow(config.Context(), trainingSet)
			stopProfile()
			if err != nil {
				exit(4, fmt.Errorf("growing the tree: %v", err))
			}
			config.Logf("Done: tree with %d nodes, %d leaves and depth %d", t.Len(), t.LeafCount(), t.Depth())
			config.Logger().Sugar().Debugf("%v", t)
			err = config.saveTree(config.Context(), config.output, t)
			if err != nil {
				exit(5, err)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "dataset to grow the tree from: "+datasetHelp+" (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", metadataHelp)
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "where the generated tree will be written: "+treeHelp+" (defaults to STDOUT in JSON)")
	cmd.PersistentFlags().StringVarP(&(config.pruneStrategy), "prune", "p", "default", "pruning strategy to apply, the following are valid: default, minimum-information-gain:[VALUE], mdl, none")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", 0, "maximum depth of the tree (defaults to 0: no limit)")
	cmd.PersistentFlags().IntVar(&(config.concurrency), "concurrency", 1, "maximum number of subtrees developed at the same time")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time on SQLite3 datasets (defaults to 0: no limit)")
	cmd.PersistentFlags().StringVar(&(config.profileMode), "profile", "", "profile the growth of the tree: cpu or mem")
	cmd.PersistentFlags().StringVar(&(config.profilePath), "profile-path", ".", "directory where the profile will be written")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" && !isDirectory(gcc.dataInput) {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.maxDepth < 0 {
		return fmt.Errorf("max-depth flag must not be negative")
	}
	if gcc.concurrency < 1 {
		return fmt.Errorf("concurrency flag must be at least 1")
	}
	switch gcc.profileMode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("unknown profile mode %q: use cpu or mem", gcc.profileMode)
	}
	return nil
}

// startProfile starts the configured profile, if any, and returns the function
// to stop it
func (gcc *growCmdConfig) startProfile() func() {
	var mode func(*profile.Profile)
	switch gcc.profileMode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return func() {}
	}
	gcc.Logf("Writing %s profile to %s...", gcc.profileMode, gcc.profilePath)
	p := profile.Start(mode, profile.ProfilePath(gcc.profilePath), profile.Quiet, profile.NoShutdownHook)
	return func() {
		p.Stop()
		fmt.Fprintf(os.Stderr, "%s profile written to %s\n", gcc.profileMode, gcc.profilePath)
	}
}
