package feature

import "fmt"

/*
Feature represents a property of a training point that splits
can be searched on.
*/
type Feature interface {
	Name() string
	// Ordered indicates whether the feature admits threshold
	// splits (true) or subset splits over a finite value set
	// (false).
	Ordered() bool
}

/*
OrderedFeature represents a numeric property whose values can be
compared against a threshold.
*/
type OrderedFeature struct {
	name string
}

/*
CategoricalFeature represents a property that can only take a value
among a finite set. Values are observed as float64 codes: the index
of the value in the feature's declared value list.
*/
type CategoricalFeature struct {
	name   string
	values []string
}

/*
NewOrderedFeature takes a name string and returns an ordered feature
with the given name.
*/
func NewOrderedFeature(name string) *OrderedFeature {
	return &OrderedFeature{name}
}

/*
NewCategoricalFeature takes a name string and a slice of available
value strings and returns a categorical feature with the given name
and available values.
*/
func NewCategoricalFeature(name string, values []string) *CategoricalFeature {
	return &CategoricalFeature{name, values}
}

/*
Name returns a string with the name of the feature
*/
func (of *OrderedFeature) Name() string {
	return of.name
}

// Ordered always returns true for an OrderedFeature.
func (of *OrderedFeature) Ordered() bool {
	return true
}

func (of *OrderedFeature) String() string {
	return of.name
}

/*
Name returns a string with the name of the feature
*/
func (cf *CategoricalFeature) Name() string {
	return cf.name
}

// Ordered always returns false for a CategoricalFeature.
func (cf *CategoricalFeature) Ordered() bool {
	return false
}

/*
Values returns a string slice with the values available for the
feature. The position of a value in the slice is its float64 code.
*/
func (cf *CategoricalFeature) Values() []string {
	return cf.values
}

/*
ValueCode takes a value string and returns its float64 code and nil,
or 0 and an error if the value is not among the feature's available
values.
*/
func (cf *CategoricalFeature) ValueCode(value string) (float64, error) {
	for i, v := range cf.values {
		if v == value {
			return float64(i), nil
		}
	}
	return 0, fmt.Errorf("categorical feature %s got unknown value %s", cf.name, value)
}

/*
ValueName takes a float64 code and returns the value string it stands
for, or an error if the code does not correspond to any of the
feature's available values.
*/
func (cf *CategoricalFeature) ValueName(code float64) (string, error) {
	i := int(code)
	if i < 0 || i >= len(cf.values) || float64(i) != code {
		return "", fmt.Errorf("categorical feature %s has no value with code %v", cf.name, code)
	}
	return cf.values[i], nil
}

func (cf *CategoricalFeature) String() string {
	return cf.name
}

/*
Registry is an ordered collection of features addressed by index.
The index of a feature on the registry is the index of its value in
every sample's feature vector.
*/
type Registry struct {
	features []Feature
}

/*
NewRegistry takes a slice of features and returns a registry that
addresses them by their position in the slice.
*/
func NewRegistry(features []Feature) *Registry {
	return &Registry{features}
}

// Len returns the number of features on the registry.
func (r *Registry) Len() int {
	return len(r.features)
}

/*
Feature returns the feature registered at the given index. It panics
if the index is out of range: asking for an unregistered feature is a
caller bug, not a runtime condition.
*/
func (r *Registry) Feature(i int) Feature {
	if i < 0 || i >= len(r.features) {
		panic(fmt.Sprintf("feature index %d out of range [0, %d)", i, len(r.features)))
	}
	return r.features[i]
}

/*
Ordered takes a feature index and indicates whether the feature at
that index admits threshold splits.
*/
func (r *Registry) Ordered(i int) bool {
	return r.Feature(i).Ordered()
}

/*
Index takes a feature name and returns the index of the feature with
that name on the registry, or -1 if no feature has that name.
*/
func (r *Registry) Index(name string) int {
	for i, f := range r.features {
		if f.Name() == name {
			return i
		}
	}
	return -1
}

/*
Features returns the features on the registry in index order.
*/
func (r *Registry) Features() []Feature {
	return r.features
}
