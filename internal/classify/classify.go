package classify

import (
	"fmt"

	"github.com/nao1215/linkprobe/internal/model"
)

const (
	// lowestValid is the first status code considered valid.
	lowestValid = 200

	// firstDead is the first code after the valid range.
	firstDead = 400
)

// Classify maps an HTTP status code to a verdict. It is pure and total.
func Classify(statusCode int) model.Verdict {
	if statusCode >= lowestValid && statusCode < firstDead {
		return model.VerdictValid
	}
	return model.VerdictDead
}

// ClassifyOutcome classifies an outcome's status code.
// Outcomes without a status code must go through the fallback path, not
// the classifier, so they yield model.ErrClassificationInput.
func ClassifyOutcome(o model.ProbeOutcome) (model.Verdict, error) {
	if !o.HasStatus() {
		return 0, model.NewProbeError(model.KindClassificationInput, o.URL, o.Err)
	}
	return Classify(o.StatusCode), nil
}

// Partition builds a ClassificationResult from outcomes.
// Outcomes without a status code are returned in skipped, in order.
// A URL appearing twice with a status code is an error: each URL must be
// classified exactly once.
func Partition(outcomes []model.ProbeOutcome) (*model.ClassificationResult, []model.ProbeOutcome, error) {
	result := model.NewClassificationResult()
	skipped := make([]model.ProbeOutcome, 0)

	for _, o := range outcomes {
		verdict, err := ClassifyOutcome(o)
		if err != nil {
			skipped = append(skipped, o)
			continue
		}
		if err := result.Add(o.URL, verdict); err != nil {
			return nil, nil, fmt.Errorf("partition outcomes: %w", err)
		}
	}

	return result, skipped, nil
}
