/*
Package tree provides binary decision trees: the nodes grown from a dataset,
and the means to predict labels for samples and to test them against
datasets.
*/
package tree

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

// Tree represents a binary decision tree. Its nodes are kept in an arena
// where each node's ID is its position, the root being at position 0.
type Tree struct {
	schema *feature.Schema
	nodes  []*Node
	lock   sync.Mutex
}

// AssemblyError represents an inconsistency among the nodes of a tree
type AssemblyError string

const (
	// ErrEmptyTree is returned when assembling a tree without nodes
	ErrEmptyTree = AssemblyError("tree has no nodes")
	// ErrNodeID is returned for nodes whose ID is not a position in the tree
	// or is repeated
	ErrNodeID = AssemblyError("node ID out of range or repeated")
	// ErrRootParent is returned when the root node has a parent or another
	// node lacks one
	ErrRootParent = AssemblyError("only the root node can lack a parent")
	// ErrOneChild is returned for nodes with a single child
	ErrOneChild = AssemblyError("node has a single child")
	// ErrParentLink is returned when parent and child links disagree
	ErrParentLink = AssemblyError("parent and child links disagree")
	// ErrUnreachable is returned when some nodes cannot be reached from the root
	ErrUnreachable = AssemblyError("node unreachable from root")
	// ErrNodeFeature is returned for internal nodes whose feature index is not
	// in the schema or whose threshold is not of the feature's kind
	ErrNodeFeature = AssemblyError("node feature or threshold invalid for schema")
)

func (ae AssemblyError) Error() string {
	return string(ae)
}

// New takes a schema and returns an empty tree for it
func New(schema *feature.Schema) *Tree {
	return &Tree{schema: schema}
}

/*
Assemble takes a schema and a slice of nodes in any order and returns the tree
they compose, or an error if they do not make a valid tree for the schema:
node IDs must be the positions 0 to len(nodes)-1, node 0 is the root and the
only node without parent, every node has either both children or none, parent
and children links agree, every node is reachable from the root and internal
nodes ask about a non-label feature of the schema with a threshold of its kind.
*/
func Assemble(schema *feature.Schema, nodes []*Node) (*Tree, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyTree
	}
	arena := make([]*Node, len(nodes))
	for _, n := range nodes {
		if n == nil || n.ID < 0 || int(n.ID) >= len(nodes) || arena[n.ID] != nil {
			return nil, fmt.Errorf("assembling %d nodes: %w", len(nodes), ErrNodeID)
		}
		arena[n.ID] = n
	}
	t := &Tree{schema: schema, nodes: arena}
	for _, n := range arena {
		if err := t.checkNode(n); err != nil {
			return nil, fmt.Errorf("assembling node %d: %w", n.ID, err)
		}
	}
	var reached int
	stack := []NodeID{0}
	for len(stack) > 0 && reached <= len(arena) {
		n := arena[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		reached++
		if !n.IsLeaf() {
			stack = append(stack, n.Right, n.Left)
		}
	}
	if reached != len(arena) {
		return nil, fmt.Errorf("reached %d of %d nodes: %w", reached, len(arena), ErrUnreachable)
	}
	return t, nil
}

func (t *Tree) checkNode(n *Node) error {
	if (n.ID == 0) != (n.Parent == None) {
		return ErrRootParent
	}
	if n.Parent != None {
		p := t.Node(n.Parent)
		if p == nil || (p.Left != n.ID && p.Right != n.ID) {
			return ErrParentLink
		}
	}
	if n.IsLeaf() {
		return nil
	}
	if n.Left == None || n.Right == None {
		return ErrOneChild
	}
	for _, c := range []NodeID{n.Left, n.Right} {
		child := t.Node(c)
		if child == nil || child.Parent != n.ID {
			return ErrParentLink
		}
	}
	if n.Left == n.Right {
		return ErrParentLink
	}
	f := t.schema.Feature(n.FeatureIndex)
	if f == nil || n.FeatureIndex == t.schema.LabelIndex() || f.Kind() != n.Threshold.Kind() {
		return ErrNodeFeature
	}
	return nil
}

// Schema returns the schema of the entries the tree was grown from
func (t *Tree) Schema() *feature.Schema {
	return t.schema
}

// Len returns the number of nodes in the tree
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node of the tree, nil if it has no nodes
func (t *Tree) Root() *Node {
	return t.Node(0)
}

// Node returns the node with the given ID, nil if there is none
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns the nodes of the tree ordered by ID
func (t *Tree) Nodes() []*Node {
	return append([]*Node(nil), t.nodes...)
}

/*
AddRoot adds a root leaf to an empty tree and returns it. It panics if the tree
already has nodes.
*/
func (t *Tree) AddRoot() *Node {
	t.lock.Lock()
	defer t.lock.Unlock()
	if len(t.nodes) > 0 {
		panic("tree already has a root")
	}
	return t.add(None)
}

/*
Branch turns the given leaf into an internal node asking about the feature at
featureIndex with the given threshold, and returns its new left and right
leaves. It is safe to branch different leaves concurrently.
*/
func (t *Tree) Branch(n *Node, featureIndex int, threshold feature.Value) (*Node, *Node) {
	t.lock.Lock()
	defer t.lock.Unlock()
	left := t.add(n.ID)
	right := t.add(n.ID)
	n.FeatureIndex = featureIndex
	n.Threshold = threshold
	n.Left, n.Right = left.ID, right.ID
	return left, right
}

func (t *Tree) add(parent NodeID) *Node {
	n := &Node{
		ID:           NodeID(len(t.nodes)),
		Parent:       parent,
		Left:         None,
		Right:        None,
		FeatureIndex: NoFeature,
	}
	t.nodes = append(t.nodes, n)
	return n
}

// Criterion returns the criterion of an internal node, nil for leaves
func (t *Tree) Criterion(n *Node) *feature.Criterion {
	if n.IsLeaf() {
		return nil
	}
	return feature.NewCriterion(t.schema.Feature(n.FeatureIndex), n.FeatureIndex, n.Threshold)
}

// Predict takes a sample and returns a prediction according to the tree and an
// error if the prediction could not be made.
func (t *Tree) Predict(ctx context.Context, s feature.Sample) (*Prediction, error) {
	if t == nil || len(t.nodes) == 0 {
		return nil, fmt.Errorf("empty tree cannot predict samples")
	}
	n := t.nodes[0]
	for !n.IsLeaf() {
		ok, err := t.Criterion(n).SatisfiedBy(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("predicting sample at node %d: %w", n.ID, err)
		}
		if ok {
			n = t.nodes[n.Left]
		} else {
			n = t.nodes[n.Right]
		}
	}
	if n.Prediction != nil {
		return n.Prediction, nil
	}
	return nil, ErrCannotPredictFromSample
}

/*
Evaluation holds the results of testing a tree against a partition.
Confusion maps each actual label code to the number of times each label code
was predicted for it.
*/
type Evaluation struct {
	Samples       int
	Correct       int
	Unpredictable int
	Confusion     map[int]map[int]int
}

// SuccessRate returns the ratio of samples whose label was correctly predicted
func (e *Evaluation) SuccessRate() float64 {
	if e.Samples == 0 {
		return 0.0
	}
	return float64(e.Correct) / float64(e.Samples)
}

/*
Test takes a context.Context and a partition and returns the evaluation of the
tree's predictions of the label for the partition entries. Entries for which
the tree cannot predict a label count as failures. An error is returned if a
prediction could not be made for reasons other than the tree not being able
to do so.
*/
func (t *Tree) Test(ctx context.Context, p *dataset.Partition) (*Evaluation, error) {
	e := &Evaluation{Confusion: make(map[int]map[int]int)}
	li := t.schema.LabelIndex()
	for _, entry := range p.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.Samples++
		pred, err := t.Predict(ctx, entry)
		if err != nil {
			if err != ErrCannotPredictFromSample {
				return nil, err
			}
			e.Unpredictable++
			continue
		}
		predicted, _ := pred.PredictedValue()
		actual := entry.Value(li).Code()
		if e.Confusion[actual] == nil {
			e.Confusion[actual] = make(map[int]int)
		}
		e.Confusion[actual][predicted]++
		if predicted == actual {
			e.Correct++
		}
	}
	return e, nil
}

// Traverse takes a context, bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// Left children are traversed before right ones.
// If the given context times out or is cancelled, the context
// error is returned. If the call to the function returns an
// error, the traversing is aborted and the error is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node) error) error {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.traverse(ctx, t.nodes[0], bottomup, f)
}

func (t *Tree) traverse(ctx context.Context, n *Node, bottomup bool, f func(context.Context, *Node) error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	if !bottomup {
		if err = f(ctx, n); err != nil {
			return err
		}
	}
	if !n.IsLeaf() {
		for _, c := range []NodeID{n.Left, n.Right} {
			if err = t.traverse(ctx, t.nodes[c], bottomup, f); err != nil {
				return err
			}
		}
	}
	if bottomup {
		return f(ctx, n)
	}
	return nil
}

// Depth returns the number of edges on the longest path from the root to a leaf
func (t *Tree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.depth(t.nodes[0])
}

func (t *Tree) depth(n *Node) int {
	if n.IsLeaf() {
		return 0
	}
	l, r := t.depth(t.nodes[n.Left]), t.depth(t.nodes[n.Right])
	if l > r {
		return l + 1
	}
	return r + 1
}

// LeafCount returns the number of leaves in the tree
func (t *Tree) LeafCount() int {
	var count int
	for _, n := range t.nodes {
		if n.IsLeaf() {
			count++
		}
	}
	return count
}

func (t *Tree) String() string {
	if len(t.nodes) == 0 {
		return "[empty tree]\n"
	}
	return t.subtreeString(t.nodes[0], "")
}

func (t *Tree) subtreeString(n *Node, condition string) string {
	result := fmt.Sprintf("[%d]\n", n.ID)
	if condition != "" {
		result = fmt.Sprintf("%s{ %s }\n", result, condition)
	}
	if n.Prediction != nil {
		result = fmt.Sprintf("%s{ %v }\n", result, n.Prediction)
	}
	if n.IsLeaf() {
		return fmt.Sprintf("%s \n", result)
	}
	result = fmt.Sprintf("%s|\n", result)
	c := t.Criterion(n)
	children := []struct {
		id        NodeID
		condition string
	}{{n.Left, c.String()}, {n.Right, c.Negation()}}
	for i, child := range children {
		for j, line := range strings.Split(t.subtreeString(t.nodes[child.id], child.condition), "\n") {
			if len(line) == 0 {
				continue
			}
			switch {
			case j == 0:
				result = fmt.Sprintf("%s|__%s\n", result, line)
			case i == len(children)-1:
				result = fmt.Sprintf("%s   %s\n", result, line)
			default:
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
