package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pbanos/sapling/dataset/inputsample"
	"github.com/pbanos/sapling/feature"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
}

type stdoutFeatureValueRequester struct {
	w io.Writer
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a label for a sample answering questions",
		Long:  `Use the loaded tree to predict the label for a sample answering a reduced set of question about its features`,
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
			sample := inputsample.New(os.Stdin, schema, &stdoutFeatureValueRequester{os.Stdout})
			prediction, err := t.Predict(config.Context(), sample)
			if err != nil {
				exit(4, err)
			}
			label, probability := prediction.PredictedValue()
			fmt.Printf("Predicted %s is %d with probability %.3f\n", schema.Label().Name(), label, probability)
			fmt.Printf("Predicted values along their probabilities are %v\n", prediction)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YAML (.yml, .yaml) or names file with metadata describing the features (required)")
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "tree to use: "+treeHelp+" (required)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	return nil
}

func (sfvr *stdoutFeatureValueRequester) RequestValueFor(f feature.Feature) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Fprintf(sfvr.w, "Please provide the sample's %s:\n(valid values are %v)\n", f.Name(), f.Values())
	case *feature.ContinuousFeature:
		lower, upper := f.Bounds()
		fmt.Fprintf(sfvr.w, "Please provide the sample's %s:\n(valid values are real numbers between %v and %v)\n", f.Name(), lower, upper)
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}

func (sfvr *stdoutFeatureValueRequester) RejectValueFor(f feature.Feature, value string) error {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		fmt.Fprintf(sfvr.w, "%v is not a valid value for the sample's %s. Please provide one of %v.\n", value, f.Name(), f.Values())
	case *feature.ContinuousFeature:
		lower, upper := f.Bounds()
		fmt.Fprintf(sfvr.w, "%v is not a valid value for the sample's %s. Please provide a real number between %v and %v.\n", value, f.Name(), lower, upper)
	default:
		return fmt.Errorf("unknown feature type %T", f)
	}
	return nil
}
