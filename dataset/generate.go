package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/juju/errors"
	"github.com/warriorguo/reteflow/types"
)

var sampleColumns = []string{"pill_id", "is_cracked", "weight", "color"}

var (
	commonColors = []string{"white", "red", "pink"}
	defectColors = []string{"green", "yellow", "purple", "orange"}
)

/**
 * GenerateSample builds a synthetic pill batch for exercising
 * workflows. Most rows come out healthy: uncracked, under 0.8 in
 * weight and mostly blue. A defectRate share of them then receives
 * one fault apiece, either a crack, an overweight reading or an off
 * palette color. The same seed always yields the same batch.
 */
func GenerateSample(count int, defectRate float64, seed int64) (*CSVSource, error) {
	if count <= 0 {
		return nil, errors.BadRequestf("sample row count must be positive, got %d", count)
	}
	if defectRate < 0 || defectRate > 1 {
		return nil, errors.BadRequestf("defect rate must be between 0 and 1, got %v", defectRate)
	}

	rng := rand.New(rand.NewSource(seed))

	rows := make([]types.Row, 0, count)
	for i := 0; i < count; i++ {
		var weight float64
		if rng.Float64() < 0.85 {
			weight = round2(uniform(rng, 0.05, 0.79))
		} else {
			weight = round2(uniform(rng, 0.80, 0.95))
		}

		var color string
		switch p := rng.Float64(); {
		case p < 0.70:
			color = "blue"
		case p < 0.78:
			color = "black"
		default:
			color = commonColors[rng.Intn(len(commonColors))]
		}

		rows = append(rows, types.Row{
			"pill_id":    fmt.Sprintf("P%03d", i+1),
			"is_cracked": false,
			"weight":     weight,
			"color":      color,
		})
	}

	defects := int(float64(count) * defectRate)
	for _, index := range rng.Perm(count)[:defects] {
		switch rng.Intn(3) {
		case 0:
			rows[index]["is_cracked"] = true
		case 1:
			rows[index]["weight"] = round2(uniform(rng, 0.85, 1.0))
		default:
			rows[index]["color"] = defectColors[rng.Intn(len(defectColors))]
		}
	}

	columns := make([]string, len(sampleColumns))
	copy(columns, sampleColumns)
	return &CSVSource{columns: columns, rows: rows}, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
