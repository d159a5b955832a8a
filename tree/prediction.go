package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbanos/sapling/dataset"
)

/*
Prediction represents a prediction made by a decision tree: the probability
of each label code among the training entries that reached a node, and the
number of those entries.
*/
type Prediction struct {
	probabilities map[int]float64
	weight        int
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromSample is the error returned by the Predict method of a tree
when the prediction cannot be made because the tree itself cannot make
a prediction for that kind of sample, as opposed to cases where values
for a feature cannot be obtained for example.
*/
const ErrCannotPredictFromSample = PredictionError("no prediction available for this kind of sample")

/*
ErrCannotPredictFromEmptySet is the error returned when trying to build a prediction
based on an empty distribution.
*/
const ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty dataset")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPrediction takes a map with the probabilities of each label code and an
integer with the number of entries from which those probabilities were
computed and returns a prediction representing those values.
*/
func NewPrediction(probs map[int]float64, weight int) *Prediction {
	return &Prediction{probabilities: probs, weight: weight}
}

// NewPredictionFromDistribution takes a label distribution and returns
// a prediction based on it, or ErrCannotPredictFromEmptySet if it is empty.
func NewPredictionFromDistribution(d dataset.Distribution) (*Prediction, error) {
	weight := d.Total()
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	probs := make(map[int]float64, len(d))
	for l, c := range d {
		probs[l] = float64(c) / float64(weight)
	}
	return &Prediction{probs, weight}, nil
}

/*
ProbabilityOf takes a label code and returns the probability of that
code according to the prediction.
*/
func (p *Prediction) ProbabilityOf(label int) float64 {
	return p.probabilities[label]
}

/*
Probabilities returns a map of label codes to their probabilities
*/
func (p *Prediction) Probabilities() map[int]float64 {
	return p.probabilities
}

/*
Weight returns the weight of the prediction: an
int equal to the number of entries from which
the prediction was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
PredictedValue returns the most probable label code and its probability.
Ties go to the lowest code.
*/
func (p *Prediction) PredictedValue() (label int, prob float64) {
	for _, l := range p.labels() {
		if v := p.probabilities[l]; v > prob {
			label = l
			prob = v
		}
	}
	return
}

func (p *Prediction) labels() []int {
	labels := make([]int, 0, len(p.probabilities))
	for l := range p.probabilities {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	return labels
}

func (p *Prediction) String() string {
	parts := make([]string, 0, len(p.probabilities))
	for _, l := range p.labels() {
		parts = append(parts, fmt.Sprintf("%d:%.3f", l, p.probabilities[l]))
	}
	return fmt.Sprintf("[%s] (%d)", strings.Join(parts, " "), p.weight)
}
