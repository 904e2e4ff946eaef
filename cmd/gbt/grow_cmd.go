package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	gbt "github.com/colinsongf/Gradient-Boosted-Tree"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/csv"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/dbsource"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/dbsource/pgadapter"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/dbsource/sqlite3adapter"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/mongosource"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
	featureyaml "github.com/colinsongf/Gradient-Boosted-Tree/feature/yaml"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	output        string
	targetFeature string
	capacity      int
	minLeafSize   int
	concurrency   int
	maxDBConns    int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a regression tree from a set of data to predict a certain target feature.`,
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
			source, closeSource, err := config.trainingSource(registry)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			defer closeSource()
			config.Logf("Growing tree with %d features to predict %s ...", registry.Len(), config.targetFeature)
			grower := gbt.New(registry, source,
				gbt.Capacity(config.capacity),
				gbt.MinLeafSize(config.minLeafSize),
				gbt.Concurrency(config.concurrency))
			t, err := grower.Grow(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Done")
			config.Logf("%v", t)
			err = outputTree(config.output, t)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL (postgresql://) or MongoDB (mongodb://) URL with data to use to grow the tree (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file or a redis URL (redis://host:port/key) to which the generated tree will be written in JSON format (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.targetFeature), "target-feature", "t", "", "name of the feature the generated tree should predict (required)")
	cmd.PersistentFlags().IntVar(&(config.capacity), "capacity", 0, "limit to the number of nodes on the grown tree (defaults to 0: no limit)")
	cmd.PersistentFlags().IntVar(&(config.minLeafSize), "min-leaf-size", 1, "minimum number of training points each side of a split must hold")
	cmd.PersistentFlags().IntVar(&(config.concurrency), "concurrency", 0, "number of goroutines to shard each statistics pass over (defaults to 0: single-goroutine passes)")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if gcc.targetFeature == "" {
		return fmt.Errorf("required target-feature flag was not set")
	}
	return nil
}

func (gcc *growCmdConfig) trainingSource(registry *feature.Registry) (dataset.Source, func(), error) {
	noop := func() {}
	if gcc.dataInput == "" {
		gcc.Logf("Reading training samples from STDIN...")
		source, err := csv.ReadSource(os.Stdin, registry, gcc.targetFeature)
		return source, noop, err
	}
	if strings.HasPrefix(gcc.dataInput, "postgresql://") {
		gcc.Logf("Creating PostgreSQL adapter for url %s to read training samples...", gcc.dataInput)
		adapter, err := pgadapter.New(gcc.dataInput)
		if err != nil {
			return nil, nil, err
		}
		return dbsource.Open(adapter, registry, gcc.targetFeature), func() { adapter.Close() }, nil
	}
	if strings.HasPrefix(gcc.dataInput, "mongodb://") {
		gcc.Logf("Dialing %s to read training samples...", gcc.dataInput)
		session, err := mgo.Dial(gcc.dataInput)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to %s: %v", gcc.dataInput, err)
		}
		return mongosource.Open(session, registry, gcc.targetFeature), session.Close, nil
	}
	if strings.HasSuffix(gcc.dataInput, ".db") {
		gcc.Logf("Creating SQLite3 adapter for file %s to read training samples...", gcc.dataInput)
		adapter, err := sqlite3adapter.New(gcc.dataInput, gcc.maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		return dbsource.Open(adapter, registry, gcc.targetFeature), func() { adapter.Close() }, nil
	}
	gcc.Logf("Opening %s to read training samples...", gcc.dataInput)
	source, err := csv.ReadSourceFromFilePath(gcc.dataInput, registry, gcc.targetFeature)
	return source, noop, err
}

func registryWithoutTarget(features []feature.Feature, target string) (*feature.Registry, error) {
	var targetFeature feature.Feature
	kept := make([]feature.Feature, 0, len(features)-1)
	for _, f := range features {
		if f.Name() == target {
			targetFeature = f
			continue
		}
		kept = append(kept, f)
	}
	if targetFeature == nil {
		return nil, fmt.Errorf("target feature '%s' is not defined", target)
	}
	if !targetFeature.Ordered() {
		return nil, fmt.Errorf("target feature '%s' is not ordered: regression trees predict numeric targets", target)
	}
	return feature.NewRegistry(kept), nil
}
