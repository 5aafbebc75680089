package model

// ClassMetrics holds one class's precision, recall and F1 together
// with the number of true instances scored. A metric whose denominator
// is zero is reported as 0.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a binary classification report: overall accuracy plus
// per-class metrics and their macro and support-weighted averages.
type Report struct {
	Accuracy    float64
	Classes     map[int]ClassMetrics
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
}

// Accuracy returns the fraction of positions where the two label
// slices agree. Empty input scores 0.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	matches := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(yTrue))
}

// Evaluate computes the classification report for 0/1 label slices of
// equal length.
func Evaluate(yTrue, yPred []float64) *Report {
	report := &Report{
		Accuracy: Accuracy(yTrue, yPred),
		Classes:  make(map[int]ClassMetrics, 2),
	}
	total := len(yTrue)

	for _, class := range []int{0, 1} {
		label := float64(class)
		tp, fp, fn := 0, 0, 0
		for i := range yTrue {
			switch {
			case yPred[i] == label && yTrue[i] == label:
				tp++
			case yPred[i] == label:
				fp++
			case yTrue[i] == label:
				fn++
			}
		}

		metrics := ClassMetrics{Support: tp + fn}
		if tp+fp > 0 {
			metrics.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall = float64(tp) / float64(tp+fn)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}
		report.Classes[class] = metrics

		report.MacroAvg.Precision += metrics.Precision / 2
		report.MacroAvg.Recall += metrics.Recall / 2
		report.MacroAvg.F1 += metrics.F1 / 2
		if total > 0 {
			weight := float64(metrics.Support) / float64(total)
			report.WeightedAvg.Precision += metrics.Precision * weight
			report.WeightedAvg.Recall += metrics.Recall * weight
			report.WeightedAvg.F1 += metrics.F1 * weight
		}
	}

	report.MacroAvg.Support = total
	report.WeightedAvg.Support = total
	return report
}
