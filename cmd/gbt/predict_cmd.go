package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/csv"
	featureyaml "github.com/colinsongf/Gradient-Boosted-Tree/feature/yaml"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput     string
	metadataInput string
	dataInput     string
	targetFeature string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict samples with a grown tree",
		Long:  `Use a previously grown tree to predict the target feature of a set of samples, writing one prediction per line to STDOUT.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			features, err := featureyaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			registry, err := registryWithoutTarget(features, config.targetFeature)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			t, err := loadTree(config.treeInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			var input io.Reader = os.Stdin
			if config.dataInput != "" {
				config.Logf("Opening %s to read samples...", config.dataInput)
				f, err := os.Open(config.dataInput)
				if err != nil {
					fmt.Fprintf(os.Stderr, "opening samples at %s: %v\n", config.dataInput, err)
					os.Exit(5)
				}
				defer f.Close()
				input = f
			}
			err = csv.ReadVectors(input, registry, func(_ int, features []float64) (bool, error) {
				prediction, err := t.Predict(features)
				if err != nil {
					return false, err
				}
				fmt.Println(strconv.FormatFloat(prediction, 'g', -1, 64))
				return true, nil
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "predicting samples: %v\n", err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "T", "", "path to a JSON tree file or a redis URL (redis://host:port/key) with the tree to predict with (required)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV file with the samples to predict (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "t", "", "name of the feature the tree predicts (required)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.targetFeature == "" {
		return fmt.Errorf("required target-feature flag was not set")
	}
	return nil
}
