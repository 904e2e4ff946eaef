/*
Package mongosource provides a dataset.Source backed by a MongoDB
collection.

Samples are documents on the samples collection of the session's
default database, with one property per feature plus one for the
target. Ordered feature values and the target are numbers; categorical
values may be stored either as their declared value strings or as
their numeric codes. Documents are replayed in _id order, so every
Reset yields the same sample sequence.
*/
package mongosource

import (
	"context"
	"fmt"

	"github.com/colinsongf/Gradient-Boosted-Tree/dataset"
	"github.com/colinsongf/Gradient-Boosted-Tree/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const samplesCollectionName = "samples"

type mongoSource struct {
	session  *mgo.Session
	registry *feature.Registry
	target   string
	iter     *mgo.Iter
	next     *dataset.Sample
	nextErr  error
}

/*
Open takes a MongoDB database session, a feature registry and the name
of the target property and returns a dataset.Source streaming the
samples collection on the default database for that session. The
source holds no documents until its first Reset.
*/
func Open(session *mgo.Session, registry *feature.Registry, target string) dataset.Source {
	return &mongoSource{
		session:  session,
		registry: registry,
		target:   target,
	}
}

func (ms *mongoSource) Reset(ctx context.Context) error {
	if ms.iter != nil {
		if err := ms.iter.Close(); err != nil {
			return fmt.Errorf("closing previous samples iterator: %v", err)
		}
		ms.iter = nil
	}
	ms.nextErr = nil
	ms.iter = ms.samplesCollection().Find(nil).Sort("_id").Iter()
	ms.prefetch()
	return ms.nextErr
}

func (ms *mongoSource) HasNext() bool {
	return ms.next != nil
}

func (ms *mongoSource) Next(ctx context.Context) (dataset.Sample, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Sample{}, err
	}
	if ms.nextErr != nil {
		return dataset.Sample{}, ms.nextErr
	}
	if ms.next == nil {
		panic("reading past the end of a mongo source")
	}
	s := *ms.next
	ms.prefetch()
	if ms.nextErr != nil {
		return dataset.Sample{}, ms.nextErr
	}
	return s, nil
}

// prefetch advances to the next document. When the iterator is
// exhausted or a document fails it is closed immediately; the next
// Reset starts from a fresh query either way.
func (ms *mongoSource) prefetch() {
	ms.next = nil
	if ms.iter == nil {
		return
	}
	var doc bson.M
	if !ms.iter.Next(&doc) {
		if err := ms.iter.Err(); err != nil {
			ms.nextErr = fmt.Errorf("reading samples: %v", err)
		}
		ms.iter.Close()
		ms.iter = nil
		return
	}
	sample, err := ms.parseDocument(doc)
	if err != nil {
		ms.nextErr = err
		ms.iter.Close()
		ms.iter = nil
		return
	}
	ms.next = &sample
}

func (ms *mongoSource) parseDocument(doc bson.M) (dataset.Sample, error) {
	features := make([]float64, ms.registry.Len())
	for i, f := range ms.registry.Features() {
		raw, ok := doc[f.Name()]
		if !ok {
			return dataset.Sample{}, fmt.Errorf("sample document %v has no value for feature %s", doc["_id"], f.Name())
		}
		v, err := parseValue(f, raw)
		if err != nil {
			return dataset.Sample{}, fmt.Errorf("sample document %v: %v", doc["_id"], err)
		}
		features[i] = v
	}
	raw, ok := doc[ms.target]
	if !ok {
		return dataset.Sample{}, fmt.Errorf("sample document %v has no value for the target %s", doc["_id"], ms.target)
	}
	target, ok := asFloat(raw)
	if !ok {
		return dataset.Sample{}, fmt.Errorf("sample document %v has a %T target value", doc["_id"], raw)
	}
	return dataset.Sample{Features: features, Target: target}, nil
}

func parseValue(f feature.Feature, raw interface{}) (float64, error) {
	if s, ok := raw.(string); ok {
		cf, ok := f.(*feature.CategoricalFeature)
		if !ok {
			return 0, fmt.Errorf("feature %s got string value %q", f.Name(), s)
		}
		return cf.ValueCode(s)
	}
	v, ok := asFloat(raw)
	if !ok {
		return 0, fmt.Errorf("feature %s got %T value", f.Name(), raw)
	}
	return v, nil
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (ms *mongoSource) samplesCollection() *mgo.Collection {
	return ms.session.DB("").C(samplesCollectionName)
}
