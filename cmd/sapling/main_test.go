package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowCmdConfigValidate(t *testing.T) {
	testCases := map[string]struct {
		config *growCmdConfig
		valid  bool
	}{
		"valid":              {&growCmdConfig{metadataInput: "s.yml", concurrency: 1}, true},
		"directory":          {&growCmdConfig{dataInput: "dir:data/iris", concurrency: 4}, true},
		"no metadata":        {&growCmdConfig{dataInput: "data.csv", concurrency: 1}, false},
		"negative max depth": {&growCmdConfig{metadataInput: "s.yml", concurrency: 1, maxDepth: -1}, false},
		"no concurrency":     {&growCmdConfig{metadataInput: "s.yml"}, false},
		"cpu profile":        {&growCmdConfig{metadataInput: "s.yml", concurrency: 1, profileMode: "cpu"}, true},
		"unknown profile":    {&growCmdConfig{metadataInput: "s.yml", concurrency: 1, profileMode: "block"}, false},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSplitCmdConfigValidate(t *testing.T) {
	set := &setCmdConfig{metadataInput: "s.yml"}
	assert.NoError(t, (&splitCmdConfig{setCmdConfig: set, splitOutput: "test.csv", splitProbability: 20}).Validate())
	assert.Error(t, (&splitCmdConfig{setCmdConfig: set, splitProbability: 20}).Validate())
	assert.Error(t, (&splitCmdConfig{setCmdConfig: set, splitOutput: "test.csv"}).Validate())
	assert.Error(t, (&splitCmdConfig{setCmdConfig: set, splitOutput: "test.csv", splitProbability: 101}).Validate())
	assert.Error(t, (&splitCmdConfig{setCmdConfig: &setCmdConfig{}, splitOutput: "test.csv", splitProbability: 20}).Validate())
}

func TestExportAndPredictCmdConfigValidate(t *testing.T) {
	assert.NoError(t, (&exportCmdConfig{metadataInput: "s.yml", treeInput: "t.json", format: "dot"}).Validate())
	assert.Error(t, (&exportCmdConfig{metadataInput: "s.yml", treeInput: "t.json", format: "png"}).Validate())
	assert.Error(t, (&exportCmdConfig{treeInput: "t.json", format: "text"}).Validate())
	assert.NoError(t, (&predictCmdConfig{metadataInput: "s.yml", treeInput: "t.json"}).Validate())
	assert.Error(t, (&predictCmdConfig{metadataInput: "s.yml"}).Validate())
	assert.Error(t, (&testCmdConfig{metadataInput: "s.yml"}).Validate())
}

func TestRenderEvaluation(t *testing.T) {
	label := feature.NewLabelFeature("y", []int{0, 1})
	e := &tree.Evaluation{
		Samples:       4,
		Correct:       3,
		Unpredictable: 0,
		Confusion:     map[int]map[int]int{0: {0: 2}, 1: {0: 1, 1: 1}},
	}
	buf := &bytes.Buffer{}
	renderEvaluation(buf, label, e)
	out := buf.String()
	assert.Contains(t, out, "0.7500")
	assert.Contains(t, out, "y: actual (rows) / predicted (columns)")
}

func TestStdoutFeatureValueRequester(t *testing.T) {
	buf := &bytes.Buffer{}
	r := &stdoutFeatureValueRequester{buf}
	require.NoError(t, r.RequestValueFor(feature.NewDiscreteFeature("color", []int{0, 1, 2})))
	assert.Contains(t, buf.String(), "Please provide the sample's color")
	assert.Contains(t, buf.String(), "[0 1 2]")

	buf.Reset()
	require.NoError(t, r.RejectValueFor(feature.NewContinuousFeature("x", 0, 10, 1), "11"))
	assert.Contains(t, buf.String(), "11 is not a valid value for the sample's x")
	assert.Contains(t, buf.String(), "between 0 and 10")
}

func TestBindConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "sapling.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("max-depth: 3\nprune: none\n"), 0o644))
	t.Setenv("SAPLING_CONCURRENCY", "4")
	t.Setenv("SAPLING_PRUNE", "mdl")

	config := &rootCmdConfig{configFile: configFile}
	cmd := growCmd(config)
	require.NoError(t, cmd.ParseFlags([]string{"--max-depth", "5"}))
	require.NoError(t, config.bindConfig(cmd))

	maxDepth, err := cmd.Flags().GetInt("max-depth")
	require.NoError(t, err)
	assert.Equal(t, 5, maxDepth)
	concurrency, err := cmd.Flags().GetInt("concurrency")
	require.NoError(t, err)
	assert.Equal(t, 4, concurrency)
	prune, err := cmd.Flags().GetString("prune")
	require.NoError(t, err)
	assert.Equal(t, "mdl", prune)
}

func TestBindConfigMissingFile(t *testing.T) {
	config := &rootCmdConfig{configFile: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := growCmd(config)
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Error(t, config.bindConfig(cmd))
}

func TestGrowAndExport(t *testing.T) {
	tmp := t.TempDir()
	metadata := filepath.Join(tmp, "schema.yml")
	require.NoError(t, os.WriteFile(metadata, []byte(testMetadata), 0o644))
	data := filepath.Join(tmp, "data.csv")
	require.NoError(t, os.WriteFile(data, []byte(testData), 0o644))
	treePath := filepath.Join(tmp, "tree.json")

	grow := cliParser()
	grow.SetArgs([]string{"grow", "-i", data, "-m", metadata, "-o", treePath, "--concurrency", "2"})
	require.NoError(t, grow.Execute())

	schema, err := readSchema(metadata)
	require.NoError(t, err)
	loaded, err := (&rootCmdConfig{}).loadTree(context.Background(), treePath, schema)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	assert.Equal(t, 2, loaded.LeafCount())

	dotPath := filepath.Join(tmp, "tree.dot")
	export := cliParser()
	export.SetArgs([]string{"export", "-m", metadata, "-t", treePath, "-f", "dot", "-o", dotPath})
	require.NoError(t, export.Execute())
	contents, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(contents), "digraph"))
}

func TestSplitCmd(t *testing.T) {
	tmp := t.TempDir()
	metadata := filepath.Join(tmp, "schema.yml")
	require.NoError(t, os.WriteFile(metadata, []byte(testMetadata), 0o644))
	data := filepath.Join(tmp, "data.csv")
	require.NoError(t, os.WriteFile(data, []byte(testData), 0o644))
	train := filepath.Join(tmp, "train.csv")
	test := filepath.Join(tmp, "test.csv")

	cmd := cliParser()
	cmd.SetArgs([]string{"set", "split", "-i", data, "-m", metadata, "-o", train, "-s", test, "-p", "50", "--seed", "7"})
	require.NoError(t, cmd.Execute())

	schema, err := readSchema(metadata)
	require.NoError(t, err)
	config := &rootCmdConfig{}
	kept, err := (&dataLocation{config, train, 0}).loadPartition(context.Background(), schema)
	require.NoError(t, err)
	selected, err := (&dataLocation{config, test, 0}).loadPartition(context.Background(), schema)
	require.NoError(t, err)
	assert.Equal(t, 8, kept.Count()+selected.Count())
}

func TestVersionCmd(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := cliParser()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "sapling v0.1.0\n", buf.String())
}
