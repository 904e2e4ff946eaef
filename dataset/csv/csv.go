/*
Package csv provides loading of training samples from CSV streams into
an in-memory dataset.Source.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
)

/*
ReadSource takes an io.Reader for a CSV stream, a feature registry and
the name of the target column, and returns an in-memory
dataset.Source with the samples parsed from the reader or an error.

The header or first row of the CSV content must contain a column for
every feature on the registry plus the target column; extra columns
are ignored. Ordered feature columns and the target hold decimal
numbers; categorical feature columns hold one of the feature's
declared values, which is stored as its value code.
*/
func ReadSource(reader io.Reader, registry *feature.Registry, target string) (dataset.Source, error) {
	var samples []dataset.Sample
	err := ReadBySample(reader, registry, target, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.New(samples), nil
}

/*
ReadBySample takes an io.Reader for a CSV stream, a feature registry,
the name of the target column and a lambda function on an integer and
a dataset.Sample that returns a boolean value. It parses the samples
from the reader and for each it calls the lambda function with the
sample and its index as parameters. If the lambda function returns
true, it will continue processing the next sample, otherwise it will
stop. An error is returned if something goes wrong when reading the
stream or parsing a sample.
*/
func ReadBySample(reader io.Reader, registry *feature.Registry, target string, lambda func(int, dataset.Sample) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	featureColumns, targetColumn, err := mapColumns(header, registry, target)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, err := parseSample(row, registry, featureColumns, targetColumn)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadSourceFromFilePath takes a filepath string, a feature registry and
the name of the target column, opens the file the filepath points to
and uses ReadSource to return a dataset.Source read from it. It will
return an error if the given filepath cannot be opened for reading.
*/
func ReadSourceFromFilePath(filepath string, registry *feature.Registry, target string) (dataset.Source, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening samples csv file %s: %v", filepath, err)
	}
	defer f.Close()
	source, err := ReadSource(f, registry, target)
	if err != nil {
		return nil, fmt.Errorf("parsing samples csv file %s: %v", filepath, err)
	}
	return source, nil
}

func mapColumns(header []string, registry *feature.Registry, target string) ([]int, int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	featureColumns := make([]int, registry.Len())
	for i, f := range registry.Features() {
		c, ok := columns[f.Name()]
		if !ok {
			return nil, 0, fmt.Errorf("feature %s has no column on the csv header", f.Name())
		}
		featureColumns[i] = c
	}
	targetColumn, ok := columns[target]
	if !ok {
		return nil, 0, fmt.Errorf("target %s has no column on the csv header", target)
	}
	return featureColumns, targetColumn, nil
}

func parseSample(row []string, registry *feature.Registry, featureColumns []int, targetColumn int) (dataset.Sample, error) {
	features := make([]float64, registry.Len())
	for i, c := range featureColumns {
		if c >= len(row) {
			return dataset.Sample{}, fmt.Errorf("row has no column %d for feature %s", c, registry.Feature(i).Name())
		}
		v, err := parseValue(registry.Feature(i), row[c])
		if err != nil {
			return dataset.Sample{}, err
		}
		features[i] = v
	}
	if targetColumn >= len(row) {
		return dataset.Sample{}, fmt.Errorf("row has no column %d for the target", targetColumn)
	}
	target, err := strconv.ParseFloat(row[targetColumn], 64)
	if err != nil {
		return dataset.Sample{}, fmt.Errorf("parsing target value %q: %v", row[targetColumn], err)
	}
	return dataset.Sample{Features: features, Target: target}, nil
}

func parseValue(f feature.Feature, raw string) (float64, error) {
	if cf, ok := f.(*feature.CategoricalFeature); ok {
		return cf.ValueCode(raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing value %q for feature %s: %v", raw, f.Name(), err)
	}
	return v, nil
}
