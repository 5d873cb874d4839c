package score

import (
	"fmt"
	"math"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// weights maps each dimension to its share of the composite score.
var weights = map[string]float64{
	model.DimensionText:   0.25,
	model.DimensionVisual: 0.15,
	model.DimensionUX:     0.25,
	model.DimensionTrust:  0.20,
	model.DimensionTech:   0.15,
}

// Weight returns the composite-score share of a dimension, or zero for
// an unknown key.
func Weight(key string) float64 {
	return weights[key]
}

// Compose computes the weighted composite score and its grade from the
// five dimension results.
//
// The sum runs in fixed dimension order so identical inputs always
// produce the identical float, then rounds half away from zero to one
// decimal.
func Compose(results map[string]model.AgentResult) (float64, model.Grade, error) {
	var overall float64
	for _, key := range model.DimensionKeys {
		result, ok := results[key]
		if !ok {
			return 0, "", fmt.Errorf("%w: %s", ErrMissingDimension, key)
		}
		overall += result.Score * weights[key]
	}

	overall = math.Round(overall*10) / 10
	return overall, model.GradeForScore(overall), nil
}
