package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
)

/*
ReadVectors takes an io.Reader for a CSV stream, a feature registry
and a lambda function on an integer and a feature vector that returns
a boolean value. It parses the feature vectors from the reader, with
no target column required, and for each it calls the lambda function
with the vector and its index as parameters. If the lambda function
returns true, it will continue processing the next vector, otherwise
it will stop. An error is returned if something goes wrong when
reading the stream or parsing a row.
*/
func ReadVectors(reader io.Reader, registry *feature.Registry, lambda func(int, []float64) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	featureColumns := make([]int, registry.Len())
	for i, f := range registry.Features() {
		c, ok := columns[f.Name()]
		if !ok {
			return fmt.Errorf("feature %s has no column on the csv header", f.Name())
		}
		featureColumns[i] = c
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		features := make([]float64, registry.Len())
		for i, c := range featureColumns {
			if c >= len(row) {
				return fmt.Errorf("parsing line %d: row has no column %d for feature %s", l, c, registry.Feature(i).Name())
			}
			v, err := parseValue(registry.Feature(i), row[c])
			if err != nil {
				return fmt.Errorf("parsing line %d: %v", l, err)
			}
			features[i] = v
		}
		ok, err := lambda(l-2, features)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}
