package json

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
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

type nodeEncodeDecoder struct {
	schema *feature.Schema
}

type node struct {
	ID              tree.NodeID     `json:"id"`
	ParentID        tree.NodeID     `json:"pId"`
	Left            tree.NodeID     `json:"l"`
	Right           tree.NodeID     `json:"r"`
	Feature         string          `json:"f,omitempty"`
	Threshold       *float64        `json:"t,omitempty"`
	InformationGain float64         `json:"g"`
	Prediction      *jsonPrediction `json:"pred,omitempty"`
}

type jsonPrediction struct {
	Probabilities map[string]float64 `json:"probs,omitempty"`
	Weight        int                `json:"w,omitempty"`
}

/*
NewNodeEncodeDecoder returns a NodeEncodeDecoder for the nodes of trees on the
given schema. Nodes refer to features by name, so that encoded trees remain
readable and can be decoded with any schema declaring the same features.
*/
func NewNodeEncodeDecoder(schema *feature.Schema) NodeEncodeDecoder {
	return &nodeEncodeDecoder{schema}
}

func (ned *nodeEncodeDecoder) Encode(n *tree.Node) ([]byte, error) {
	jn := &node{
		ID:              n.ID,
		ParentID:        n.Parent,
		Left:            n.Left,
		Right:           n.Right,
		InformationGain: n.InformationGain,
	}
	if !n.IsLeaf() {
		f := ned.schema.Feature(n.FeatureIndex)
		if f == nil {
			return nil, fmt.Errorf("marshalling node %d: unknown feature %d", n.ID, n.FeatureIndex)
		}
		jn.Feature = f.Name()
		threshold := n.Threshold.Number()
		if f.Kind() == feature.Discrete {
			threshold = float64(n.Threshold.Code())
		}
		jn.Threshold = &threshold
	}
	if n.Prediction != nil {
		probs := n.Prediction.Probabilities()
		jp := &jsonPrediction{Probabilities: make(map[string]float64, len(probs)), Weight: n.Prediction.Weight()}
		for label, p := range probs {
			jp.Probabilities[strconv.Itoa(label)] = p
		}
		jn.Prediction = jp
	}
	return json.Marshal(jn)
}

func (ned *nodeEncodeDecoder) Decode(data []byte) (*tree.Node, error) {
	jn := &node{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{
		ID:              jn.ID,
		Parent:          jn.ParentID,
		Left:            jn.Left,
		Right:           jn.Right,
		FeatureIndex:    tree.NoFeature,
		InformationGain: jn.InformationGain,
	}
	if jn.Feature != "" {
		i, ok := ned.schema.Index(jn.Feature)
		if !ok {
			return nil, fmt.Errorf("unmarshalling node %v: unknown feature %v", n.ID, jn.Feature)
		}
		if jn.Threshold == nil {
			return nil, fmt.Errorf("unmarshalling node %v: feature %v without threshold", n.ID, jn.Feature)
		}
		n.FeatureIndex = i
		n.Threshold = feature.ContinuousValue(*jn.Threshold)
		if ned.schema.Feature(i).Kind() == feature.Discrete {
			n.Threshold = feature.DiscreteValue(int(*jn.Threshold))
		}
	}
	if jn.Prediction != nil {
		n.Prediction, err = predictionFrom(jn.Prediction)
		if err != nil {
			return nil, fmt.Errorf("unmarshalling node %v: %v", n.ID, err)
		}
	}
	return n, nil
}

func predictionFrom(jp *jsonPrediction) (*tree.Prediction, error) {
	probs := make(map[int]float64, len(jp.Probabilities))
	for label, p := range jp.Probabilities {
		code, err := strconv.Atoi(label)
		if err != nil {
			return nil, fmt.Errorf("invalid label code %q in prediction", label)
		}
		probs[code] = p
	}
	return tree.NewPrediction(probs, jp.Weight), nil
}

/*
UnmarshalJSONPrediction takes a slice of bytes and returns
a pointer to a new tree.Prediction with the data from the slice
unmarshalled into it or an error. The slice of bytes is expected
to contain a JSON object with the following fields:
* "probs": a JSON object with label codes as keys and their
probabilities as values
* "w": a number (integer) corresponding to the number of
entries from which the prediction was made.
*/
func UnmarshalJSONPrediction(b []byte) (*tree.Prediction, error) {
	jp := &jsonPrediction{}
	err := json.Unmarshal(b, jp)
	if err != nil {
		return nil, err
	}
	return predictionFrom(jp)
}
