/*
Package mongodataset loads and stores partitions on a MongoDB database.

Entries are stored as documents on the entries collection of the session's
default database, with a field per feature named after it.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const (
	entriesCollectionName = "entries"
)

/*
Dataset is a collection of entries for a schema to which entries can be
added and from which they can be sequentially read
*/
type Dataset struct {
	session *mgo.Session
	schema  *feature.Schema
}

/*
Open takes a MongoDB database session and a schema and returns a Dataset
that works on the default database for that session, or an error if the
schema feature names cannot be used as fields or the indexes cannot be
ensured.
*/
func Open(ctx context.Context, session *mgo.Session, schema *feature.Schema) (*Dataset, error) {
	for _, f := range schema.Features() {
		if err := checkFieldName(f.Name()); err != nil {
			return nil, err
		}
	}
	mds := &Dataset{session, schema}
	err := mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

// Schema returns the schema of the entries in the dataset
func (mds *Dataset) Schema() *feature.Schema {
	return mds.schema
}

// Count returns the number of entries in the dataset
func (mds *Dataset) Count(context.Context) (int, error) {
	return mds.collection().Count()
}

/*
Write takes a context and a slice of entries and inserts them on the
collection, returning the number of entries written or an error.
*/
func (mds *Dataset) Write(ctx context.Context, entries []*dataset.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, documentFor(mds.schema, e))
	}
	err := ctx.Err()
	if err != nil {
		return 0, err
	}
	err = mds.collection().Insert(docs...)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

/*
Read takes a context and returns a channel on which the dataset entries will
be sent in insertion order, and a channel on which an error will be sent if
something goes wrong. Both channels are closed once done.
*/
func (mds *Dataset) Read(ctx context.Context) (<-chan *dataset.Entry, <-chan error) {
	entries := make(chan *dataset.Entry)
	errs := make(chan error, 1)
	go func() {
		defer close(entries)
		defer close(errs)
		err := sendEntries(ctx, mds.schema, mds.collection().Find(nil).Sort("_id").Iter(), entries)
		if err != nil {
			errs <- err
		}
	}()
	return entries, errs
}

// documentIterator is the part of *mgo.Iter used to stream documents
type documentIterator interface {
	Next(result interface{}) bool
	Close() error
}

/*
sendEntries decodes every document from iter into an entry and sends it on
entries until iter is exhausted, a document cannot be decoded or ctx is
done. The iterator is always closed.
*/
func sendEntries(ctx context.Context, schema *feature.Schema, iter documentIterator, entries chan<- *dataset.Entry) error {
	var err error
	doc := bson.M{}
loop:
	for iter.Next(&doc) {
		var e *dataset.Entry
		e, err = entryFrom(schema, doc)
		if err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case entries <- e:
		}
		doc = bson.M{}
	}
	closeErr := iter.Close()
	if err == nil {
		err = closeErr
	}
	return err
}

/*
Load takes a context and returns a partition with every entry in the dataset
or an error if they cannot be read or are not valid for the schema.
*/
func (mds *Dataset) Load(ctx context.Context) (*dataset.Partition, error) {
	var entries []*dataset.Entry
	ch, errs := mds.Read(ctx)
	for e := range ch {
		entries = append(entries, e)
	}
	err := <-errs
	if err != nil {
		return nil, err
	}
	p := dataset.New(mds.schema, entries)
	err = p.Validate()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (mds *Dataset) ensureIndexes() error {
	for _, f := range mds.schema.Features() {
		index := mgo.Index{
			Key:        []string{f.Name()},
			Background: true,
			Sparse:     true,
		}
		err := mds.collection().EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mds *Dataset) collection() *mgo.Collection {
	return mds.session.DB("").C(entriesCollectionName)
}

func checkFieldName(name string) error {
	if name == "_id" {
		return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
	}
	if strings.ContainsAny(name, ".$") {
		return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", name, ".", "$")
	}
	return nil
}

func documentFor(schema *feature.Schema, e *dataset.Entry) bson.M {
	doc := make(bson.M, schema.Len())
	for i, f := range schema.Features() {
		v := e.Value(i)
		if f.Kind() == feature.Continuous {
			doc[f.Name()] = v.Number()
		} else {
			doc[f.Name()] = v.Code()
		}
	}
	return doc
}

func entryFrom(schema *feature.Schema, doc bson.M) (*dataset.Entry, error) {
	values := make([]feature.Value, schema.Len())
	for i, f := range schema.Features() {
		raw, ok := doc[f.Name()]
		if !ok {
			return nil, fmt.Errorf("document %v has no value for feature %s", doc["_id"], f.Name())
		}
		var n float64
		switch rv := raw.(type) {
		case int:
			n = float64(rv)
		case int32:
			n = float64(rv)
		case int64:
			n = float64(rv)
		case float64:
			n = rv
		default:
			return nil, fmt.Errorf("document %v has a %T instead of a number for feature %s", doc["_id"], raw, f.Name())
		}
		if f.Kind() == feature.Continuous {
			values[i] = feature.ContinuousValue(n)
			continue
		}
		if n != float64(int(n)) {
			return nil, fmt.Errorf("document %v has non integer code %v for feature %s", doc["_id"], raw, f.Name())
		}
		values[i] = feature.DiscreteValue(int(n))
	}
	return dataset.NewEntry(values...), nil
}
