/*
Package json serializes partitions as JSON documents, with an object per
entry keyed by feature name, and reads them back.
*/
package json

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

type jsonPartition struct {
	Label   string                   `json:"label"`
	Entries []map[string]json.Number `json:"entries"`
}

/*
WritePartition takes a context.Context, an io.Writer and a partition and
writes the partition onto the io.Writer as a JSON object with the following
fields:
* "label": the name of the label feature of the partition's schema
* "entries": an array with an object per entry mapping every feature name to
  the entry's value for it.
An error is returned if the context is cancelled or the partition cannot be
written onto the io.Writer.
*/
func WritePartition(ctx context.Context, w io.Writer, p *dataset.Partition) error {
	schema := p.Schema()
	jp := &jsonPartition{
		Label:   schema.Label().Name(),
		Entries: make([]map[string]json.Number, 0, p.Count()),
	}
	for _, e := range p.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}
		jp.Entries = append(jp.Entries, encodeEntry(schema, e))
	}
	return json.NewEncoder(w).EncodeContext(ctx, jp)
}

/*
ReadPartition takes a context.Context, an io.Reader and a schema and decodes
a partition written with WritePartition from the io.Reader. An error is
returned if the document cannot be decoded, its label does not match the
schema's or any entry lacks a value or has a value that is not valid for its
feature.
*/
func ReadPartition(ctx context.Context, r io.Reader, schema *feature.Schema) (*dataset.Partition, error) {
	jp := &jsonPartition{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.DecodeContext(ctx, jp); err != nil {
		return nil, fmt.Errorf("decoding partition: %v", err)
	}
	if jp.Label != schema.Label().Name() {
		return nil, fmt.Errorf("decoded partition predicts %q instead of %q", jp.Label, schema.Label().Name())
	}
	entries := make([]*dataset.Entry, 0, len(jp.Entries))
	for i, je := range jp.Entries {
		e, err := decodeEntry(schema, je)
		if err != nil {
			return nil, fmt.Errorf("decoding entry #%d: %v", i, err)
		}
		entries = append(entries, e)
	}
	p := dataset.New(schema, entries)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeEntry(schema *feature.Schema, e *dataset.Entry) map[string]json.Number {
	je := make(map[string]json.Number, schema.Len())
	for i, f := range schema.Features() {
		je[f.Name()] = json.Number(e.Value(i).String())
	}
	return je
}

func decodeEntry(schema *feature.Schema, je map[string]json.Number) (*dataset.Entry, error) {
	if len(je) != schema.Len() {
		return nil, fmt.Errorf("expected %d values, found %d", schema.Len(), len(je))
	}
	values := make([]feature.Value, schema.Len())
	for i, f := range schema.Features() {
		n, ok := je[f.Name()]
		if !ok {
			return nil, fmt.Errorf("no value for feature %s", f.Name())
		}
		v, err := feature.ParseValue(f, n.String())
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return dataset.NewEntry(values...), nil
}
