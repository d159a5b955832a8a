/*
Package json serializes trees as JSON documents and reads them back.
*/
package json

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
)

/*
WriteJSONTree takes a context.Context, a pointer to a tree.Tree
a NodeEncodeDecoder and an io.Writer and serializes the given tree
as JSON onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
* "rootID": the ID of the node at the root of the tree
* "label": a string with the name of the feature the tree predicts
* "nodes": an array containing every node of the tree in ID order
  serialized by the given NodeEncodeDecoder.
An error is returned if the tree cannot be serialized or written
onto the io.Writer.
*/
func WriteJSONTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, w io.Writer) error {
	err := marshalJSONTreeHeader(t, w)
	if err != nil {
		return err
	}
	for i, n := range t.Nodes() {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = writeNode(i, n, ned, w)
		if err != nil {
			return err
		}
	}
	return marshalJSONTreeFooter(w)
}

/*
ReadJSONTree takes a context.Context, a schema, a NodeEncodeDecoder and an
io.Reader and returns the tree unmarshalled from the contents of the
io.Reader.
A tree is expected to be a JSON object with the following fields:
* "rootID": the ID of the node at the root of the tree, which must be 0
* "label": a string with the name of the label feature of the schema
* "nodes": an array containing the nodes of the tree unmarshalled by the
  NodeEncodeDecoder.
An error is returned if the JSON cannot be read from the io.Reader, its
label does not match the schema's or its nodes do not make a valid tree.
*/
func ReadJSONTree(ctx context.Context, schema *feature.Schema, ned NodeEncodeDecoder, r io.Reader) (*tree.Tree, error) {
	dec := json.NewDecoder(r)
	jt := &struct {
		RootID *tree.NodeID       `json:"rootID"`
		Label  string             `json:"label"`
		Nodes  []*json.RawMessage `json:"nodes"`
	}{}
	err := dec.DecodeContext(ctx, jt)
	if err != nil {
		return nil, err
	}
	if jt.Label != schema.Label().Name() {
		return nil, fmt.Errorf("tree predicts %q but schema label is %q", jt.Label, schema.Label().Name())
	}
	if jt.RootID == nil {
		return nil, fmt.Errorf("no root node id available")
	}
	if *jt.RootID != 0 {
		return nil, fmt.Errorf("root node id must be 0, got %d", *jt.RootID)
	}
	nodes := make([]*tree.Node, 0, len(jt.Nodes))
	for _, jn := range jt.Nodes {
		if jn == nil {
			return nil, fmt.Errorf("null node in tree")
		}
		n, err := ned.Decode(*jn)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return tree.Assemble(schema, nodes)
}

func marshalJSONTreeHeader(t *tree.Tree, w io.Writer) error {
	jFeatureName, err := json.Marshal(t.Schema().Label().Name())
	if err != nil {
		return err
	}
	header := fmt.Sprintf(`{"rootID":%d,"label":%s,"nodes":[`, t.Root().ID, jFeatureName)
	_, err = w.Write([]byte(header))
	return err
}

func writeNode(i int, n *tree.Node, ned NodeEncodeDecoder, w io.Writer) error {
	if i != 0 {
		_, err := w.Write([]byte(","))
		if err != nil {
			return err
		}
	}
	jn, err := ned.Encode(n)
	if err != nil {
		return err
	}
	_, err = w.Write(jn)
	return err
}

func marshalJSONTreeFooter(w io.Writer) error {
	_, err := w.Write([]byte(`]}`))
	return err
}
