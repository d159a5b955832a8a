package tree

import (
	"github.com/pbanos/sapling/feature"
)

// NodeID identifies a node by its position in the tree
type NodeID int

// None is the NodeID of the parent of the root and the children of leaves
const None NodeID = -1

// NoFeature is the feature index of leaves
const NoFeature = -1

/*
Node is a node of the tree. A node is either a leaf, with no children, or an
internal node with both children.
*/
type Node struct {
	// The position of the node in the tree
	ID NodeID
	// The ID of the parent of the node, None for the root
	Parent NodeID
	// The IDs of the children of the node. The left one takes the samples
	// satisfying the node's criterion, the right one the rest.
	Left, Right NodeID
	// The index in the schema of the feature the node asks about,
	// NoFeature for leaves
	FeatureIndex int
	// The threshold of the node's criterion
	Threshold feature.Value
	// The information gain of the best split found for the node's entries,
	// whether it was accepted or not
	InformationGain float64
	// The prediction for samples reaching the node, nil when no training
	// entry did
	Prediction *Prediction
}

// IsLeaf returns whether the node has no children
func (n *Node) IsLeaf() bool {
	return n.Left == None && n.Right == None
}
