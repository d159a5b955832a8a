/*
Package redisstore saves trees on a redis DB and loads them back.

A tree is stored under a prefix as one key per node, prefix:node:ID, holding
the node encoded by a NodeEncodeDecoder, plus a prefix:meta key holding the
name of the label the tree predicts and its number of nodes.
*/
package redisstore

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
	"gopkg.in/redis.v5"
)

/*
NodeEncodeDecoder is an interface for objects
that allow encoding nodes into slices of
bytes and decoding them back to nodes.
*/
type NodeEncodeDecoder interface {

	//Encode receives a *tree.Node
	// and returns a slice of bytes with the node
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(*tree.Node) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *tree.Node decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (*tree.Node, error)
}

// Store saves and loads trees on a redis DB under a key prefix
type Store struct {
	rc      *redis.Client
	prefix  string
	nencdec NodeEncodeDecoder
}

type meta struct {
	Label string `json:"label"`
	Nodes int    `json:"nodes"`
}

// New builds a Store on the given redis client and prefix, using nencdec to
// encode and decode nodes
func New(rc *redis.Client, prefix string, nencdec NodeEncodeDecoder) *Store {
	return &Store{rc, prefix, nencdec}
}

/*
Save takes a context and a tree and stores the tree under the store prefix,
replacing any tree previously stored there. Nodes are written before the
meta key, and nodes of the previous tree beyond the new tree's size are
deleted afterwards.
*/
func (rs *Store) Save(ctx context.Context, t *tree.Tree) error {
	previous, err := rs.meta()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, n := range t.Nodes() {
		if err = ctx.Err(); err != nil {
			return err
		}
		key := rs.nodeKey(n.ID)
		data, err := rs.nencdec.Encode(n)
		if err != nil {
			return fmt.Errorf("storing node %q: encoding node: %v", key, err)
		}
		_, err = rs.rc.Set(key, data, 0).Result()
		if err != nil {
			return fmt.Errorf("storing node %q in redis: %v", key, err)
		}
	}
	data, err := encodeMeta(&meta{Label: t.Schema().Label().Name(), Nodes: t.Len()})
	if err != nil {
		return err
	}
	_, err = rs.rc.Set(rs.metaKey(), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing %q in redis: %v", rs.metaKey(), err)
	}
	if previous == nil {
		return nil
	}
	for id := t.Len(); id < previous.Nodes; id++ {
		key := rs.nodeKey(tree.NodeID(id))
		_, err = rs.rc.Del(key).Result()
		if err != nil {
			return fmt.Errorf("deleting node %q from redis: %v", key, err)
		}
	}
	return nil
}

/*
Load takes a context and a schema and returns the tree stored under the
store prefix, or an error if there is none, it predicts a label other than
the schema's or its nodes cannot be retrieved or do not make a valid tree.
*/
func (rs *Store) Load(ctx context.Context, schema *feature.Schema) (*tree.Tree, error) {
	m, err := rs.meta()
	if err == redis.Nil {
		return nil, fmt.Errorf("no tree stored under %q", rs.prefix)
	}
	if err != nil {
		return nil, err
	}
	if m.Label != schema.Label().Name() {
		return nil, fmt.Errorf("stored tree predicts %q but schema label is %q", m.Label, schema.Label().Name())
	}
	nodes := make([]*tree.Node, 0, m.Nodes)
	for id := 0; id < m.Nodes; id++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		n, err := rs.node(tree.NodeID(id))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return tree.Assemble(schema, nodes)
}

func (rs *Store) node(id tree.NodeID) (*tree.Node, error) {
	key := rs.nodeKey(id)
	data, err := rs.rc.Get(key).Result()
	if err != nil {
		return nil, fmt.Errorf("retrieving node %q: %v", key, err)
	}
	n, err := rs.nencdec.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving node %q: decoding %q: %v", key, data, err)
	}
	return n, nil
}

func (rs *Store) meta() (*meta, error) {
	data, err := rs.rc.Get(rs.metaKey()).Result()
	if err == redis.Nil {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving %q: %v", rs.metaKey(), err)
	}
	return decodeMeta([]byte(data))
}

func encodeMeta(m *meta) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding tree meta: %v", err)
	}
	return data, nil
}

func decodeMeta(data []byte) (*meta, error) {
	m := &meta{}
	err := json.Unmarshal(data, m)
	if err != nil {
		return nil, fmt.Errorf("decoding tree meta %q: %v", data, err)
	}
	if m.Nodes < 1 {
		return nil, fmt.Errorf("decoding tree meta %q: tree has no nodes", data)
	}
	return m, nil
}

func (rs *Store) nodeKey(id tree.NodeID) string {
	return fmt.Sprintf("%s:node:%d", rs.prefix, id)
}

func (rs *Store) metaKey() string {
	return fmt.Sprintf("%s:meta", rs.prefix)
}
