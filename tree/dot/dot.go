/*
Package dot renders trees as Graphviz DOT digraphs.
*/
package dot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pbanos/sapling/tree"
)

// MostLikely can be passed as positive class to label leaves with the
// probability of their predicted label
const MostLikely = -1

const graphName = "tree"

/*
Graph takes a tree and a positive class label code and returns a directed
graph with a vertex per tree node. Internal nodes are labelled with their
criterion and linked to their children with edges labelled true (left) and
false (right). Leaves are drawn as boxes labelled with the probability of the
positive class and the weight of their prediction, or with the predicted
label and its probability when positive is MostLikely.
*/
func Graph(t *tree.Tree, positive int) (*gographviz.Graph, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return nil, err
	}
	if err := g.SetDir(true); err != nil {
		return nil, err
	}
	label := t.Schema().Label()
	for _, n := range t.Nodes() {
		attrs := map[string]string{"label": strconv.Quote(nodeLabel(t, n, label.Name(), positive))}
		if n.IsLeaf() {
			attrs["shape"] = "box"
		}
		if err := g.AddNode(graphName, vertex(n.ID), attrs); err != nil {
			return nil, fmt.Errorf("adding node %d to graph: %v", n.ID, err)
		}
	}
	for _, n := range t.Nodes() {
		if n.IsLeaf() {
			continue
		}
		if err := g.AddEdge(vertex(n.ID), vertex(n.Left), true, map[string]string{"label": `"true"`}); err != nil {
			return nil, fmt.Errorf("adding edge from node %d to graph: %v", n.ID, err)
		}
		if err := g.AddEdge(vertex(n.ID), vertex(n.Right), true, map[string]string{"label": `"false"`}); err != nil {
			return nil, fmt.Errorf("adding edge from node %d to graph: %v", n.ID, err)
		}
	}
	return g, nil
}

// WriteDOT writes the graph of the tree as built by Graph onto w
func WriteDOT(t *tree.Tree, positive int, w io.Writer) error {
	g, err := Graph(t, positive)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, g.String())
	return err
}

func vertex(id tree.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func nodeLabel(t *tree.Tree, n *tree.Node, labelName string, positive int) string {
	if !n.IsLeaf() {
		return t.Criterion(n).String()
	}
	p := n.Prediction
	if p == nil {
		return "no prediction"
	}
	if positive == MostLikely {
		code, prob := p.PredictedValue()
		return fmt.Sprintf("%s = %d\nP = %.3f\nw = %d", labelName, code, prob, p.Weight())
	}
	return fmt.Sprintf("P(%s = %d) = %.3f\nw = %d", labelName, positive, p.ProbabilityOf(positive), p.Weight())
}
