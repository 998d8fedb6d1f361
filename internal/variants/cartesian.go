package variants

import (
	"math"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// axis is one variant type together with its ordered values.
type axis struct {
	variantType models.VariantType
	values      []string
}

// CountCombinations returns the size of the Cartesian product of counts,
// saturating at math.MaxInt instead of overflowing. Empty input yields zero.
func CountCombinations(counts []int) int {
	if len(counts) == 0 {
		return 0
	}
	total := 1
	for _, n := range counts {
		if n <= 0 {
			return 0
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

// cartesian expands the axes into one selection tuple per combination. Axis
// order is kept inside each tuple; the last axis varies fastest.
func cartesian(axes []axis) [][]models.VariantSelection {
	if len(axes) == 0 {
		return nil
	}
	tuples := [][]models.VariantSelection{{}}
	for _, ax := range axes {
		next := make([][]models.VariantSelection, 0, len(tuples)*len(ax.values))
		for _, tuple := range tuples {
			for _, value := range ax.values {
				extended := make([]models.VariantSelection, len(tuple), len(tuple)+1)
				copy(extended, tuple)
				extended = append(extended, models.VariantSelection{VariantTypeID: ax.variantType.ID, Value: value})
				next = append(next, extended)
			}
		}
		tuples = next
	}
	return tuples
}

func selectionValues(tuple []models.VariantSelection) []string {
	out := make([]string, len(tuple))
	for i, sel := range tuple {
		out[i] = sel.Value
	}
	return out
}
