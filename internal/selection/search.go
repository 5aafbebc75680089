// Package selection picks the best feature subset per dataset by
// exhaustive bounded search and writes the resulting predictions.
package selection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"market-model-lab/internal/dataset"
	"market-model-lab/internal/model"
)

// Result is the winner of one feature search: the subset, the
// classifier trained on it, the evaluation-split report and counters
// over the enumerated subsets.
type Result struct {
	Features  []string
	Model     *model.LogisticRegression
	Report    *model.Report
	Accuracy  float64
	Evaluated int
	Skipped   int
}

// Searcher enumerates feature subsets between the configured size
// bounds, trains a fresh classifier per subset on the training split
// and keeps the subset with the strictly highest accuracy on the
// evaluation split. Sizes ascend and combinations within a size follow
// lexicographic index order, so ties always resolve to the subset
// enumerated first and reruns pick the same winner.
type Searcher struct {
	target  string
	minSize int
	maxSize int
	maxIter int
}

// NewSearcher returns a searcher for the given target column and
// subset-size bounds.
func NewSearcher(target string, minSize, maxSize, maxIter int) *Searcher {
	return &Searcher{target: target, minSize: minSize, maxSize: maxSize, maxIter: maxIter}
}

// Search runs the subset search over the candidate columns. A subset
// is skipped, and counted as such, when a feature is absent from
// either split, a cell needed for its matrices is missing or
// non-numeric, or training fails. A subset scoring 0 never wins; nil
// means no subset produced a model.
func (s *Searcher) Search(train, eval *dataset.Frame, candidates []string) *Result {
	upper := s.maxSize
	if len(candidates) < upper {
		upper = len(candidates)
	}

	yTrain, errTrainLabels := labelVector(train, s.target)
	yEval, errEvalLabels := labelVector(eval, s.target)

	best := &Result{}
	for r := s.minSize; r <= upper; r++ {
		gen := combin.NewCombinationGenerator(len(candidates), r)
		for gen.Next() {
			features := pick(candidates, gen.Combination(nil))

			if !hasAll(train, features) || !hasAll(eval, features) {
				best.Skipped++
				continue
			}
			if errTrainLabels != nil || errEvalLabels != nil {
				best.Skipped++
				continue
			}
			xTrain, err := featureMatrix(train, features)
			if err != nil {
				best.Skipped++
				continue
			}
			xEval, err := featureMatrix(eval, features)
			if err != nil {
				best.Skipped++
				continue
			}

			clf := model.NewLogisticRegression(s.maxIter)
			if err := clf.Fit(xTrain, yTrain); err != nil {
				best.Skipped++
				continue
			}
			pred, err := clf.Predict(xEval)
			if err != nil {
				best.Skipped++
				continue
			}

			best.Evaluated++
			if acc := model.Accuracy(yEval, pred); acc > best.Accuracy {
				best.Accuracy = acc
				best.Features = features
				best.Model = clf
				best.Report = model.Evaluate(yEval, pred)
			}
		}
	}

	if best.Model == nil {
		return nil
	}
	return best
}

// featureMatrix builds the design matrix for the named columns. Any
// missing or non-numeric cell is an error: the caller treats the
// subset as unusable rather than imputing.
func featureMatrix(f *dataset.Frame, features []string) (*mat.Dense, error) {
	rows := f.NumRows()
	if rows == 0 {
		return nil, fmt.Errorf("no rows")
	}
	x := mat.NewDense(rows, len(features), nil)
	for j, name := range features {
		col, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %s not present", name)
		}
		for i, v := range col {
			num, isNum := v.Float()
			if !isNum {
				return nil, fmt.Errorf("column %s row %d is not numeric", name, i)
			}
			x.Set(i, j, num)
		}
	}
	return x, nil
}

// labelVector extracts the target column as a float slice.
func labelVector(f *dataset.Frame, target string) ([]float64, error) {
	col, ok := f.Column(target)
	if !ok {
		return nil, fmt.Errorf("target column %s not present", target)
	}
	out := make([]float64, len(col))
	for i, v := range col {
		num, isNum := v.Float()
		if !isNum {
			return nil, fmt.Errorf("target row %d is not numeric", i)
		}
		out[i] = num
	}
	return out, nil
}

func hasAll(f *dataset.Frame, features []string) bool {
	for _, name := range features {
		if !f.HasColumn(name) {
			return false
		}
	}
	return true
}

func pick(candidates []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}
