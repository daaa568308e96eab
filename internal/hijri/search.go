package hijri

import (
	"slices"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// lastNotAfter returns the position of the last element of the ascending
// slice that is <= target, or -1 when every element is greater.
func lastNotAfter(sorted []gregorian.EpochDay, target gregorian.EpochDay) int {
	i, found := slices.BinarySearch(sorted, target)
	if found {
		return i
	}
	return i - 1
}
