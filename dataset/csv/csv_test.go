package csv_test

import (
	"context"
	"strings"
	"testing"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/dataset/csv"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *feature.Registry {
	return feature.NewRegistry([]feature.Feature{
		feature.NewOrderedFeature("age"),
		feature.NewCategoricalFeature("color", []string{"red", "green", "blue"}),
	})
}

func drain(t *testing.T, source dataset.Source) []dataset.Sample {
	ctx := context.Background()
	require.NoError(t, source.Reset(ctx))
	var samples []dataset.Sample
	for source.HasNext() {
		s, err := source.Next(ctx)
		require.NoError(t, err)
		samples = append(samples, s)
	}
	return samples
}

func TestReadSource(t *testing.T) {
	// The ignored column and the shuffled header exercise column
	// mapping by name.
	doc := `color,ignored,price,age
red,x,10.5,30
blue,y,20,40
green,z,0.25,50
`
	source, err := csv.ReadSource(strings.NewReader(doc), testRegistry(), "price")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Sample{
		{Features: []float64{30, 0}, Target: 10.5},
		{Features: []float64{40, 2}, Target: 20},
		{Features: []float64{50, 1}, Target: 0.25},
	}, drain(t, source))
}

func TestReadSourceRejectsMissingFeatureColumn(t *testing.T) {
	doc := "age,price\n30,10\n"
	_, err := csv.ReadSource(strings.NewReader(doc), testRegistry(), "price")
	assert.Error(t, err)
}

func TestReadSourceRejectsMissingTargetColumn(t *testing.T) {
	doc := "age,color\n30,red\n"
	_, err := csv.ReadSource(strings.NewReader(doc), testRegistry(), "price")
	assert.Error(t, err)
}

func TestReadSourceRejectsUnknownCategoricalValue(t *testing.T) {
	doc := "age,color,price\n30,yellow,10\n"
	_, err := csv.ReadSource(strings.NewReader(doc), testRegistry(), "price")
	assert.Error(t, err)
}

func TestReadBySampleStopsWhenLambdaReturnsFalse(t *testing.T) {
	doc := "age,color,price\n30,red,10\n40,blue,20\n50,green,30\n"
	var count int
	err := csv.ReadBySample(strings.NewReader(doc), testRegistry(), "price", func(i int, s dataset.Sample) (bool, error) {
		count++
		return i < 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReadVectors(t *testing.T) {
	doc := "color,age\nred,30\nblue,40\n"
	var vectors [][]float64
	err := csv.ReadVectors(strings.NewReader(doc), testRegistry(), func(i int, features []float64) (bool, error) {
		require.Equal(t, len(vectors), i)
		vectors = append(vectors, features)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{30, 0}, {40, 2}}, vectors)
}

func TestReadVectorsRejectsMissingColumn(t *testing.T) {
	err := csv.ReadVectors(strings.NewReader("age\n30\n"), testRegistry(), func(int, []float64) (bool, error) {
		return true, nil
	})
	assert.Error(t, err)
}
