package hijri

import (
	"fmt"
	"strconv"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// Month lengths accepted by BuildIndex.
const (
	MinAllowedMonthLength = 29
	MaxAllowedMonthLength = 32
)

// Index numbers every month of a table contiguously ("epoch months") and
// records the epoch day each one starts on. The final entry is a sentinel:
// the day after the last month ends.
//
// An Index is immutable once built and safe for concurrent use.
type Index struct {
	offsets         []gregorian.EpochDay
	minYear         int
	maxYear         int
	startEpochMonth int

	minMonthLength int
	maxMonthLength int
	minYearLength  int
	maxYearLength  int
}

// BuildIndex walks the table from MinYear to MaxYear starting at ISOStart.
func BuildIndex(t *Table) (*Index, error) {
	idx := &Index{
		minYear:         t.MinYear,
		maxYear:         t.MaxYear,
		startEpochMonth: t.MinYear * 12,
		minMonthLength:  int(^uint(0) >> 1),
		minYearLength:   int(^uint(0) >> 1),
	}

	want := (t.MaxYear-t.MinYear+1)*12 + 1
	idx.offsets = make([]gregorian.EpochDay, 0, want)

	day := t.ISOStart.EpochDay()
	for year := t.MinYear; year <= t.MaxYear; year++ {
		months, ok := t.Months(year)
		if !ok {
			return nil, configErrorf(strconv.Itoa(year), "year missing from range %d-%d", t.MinYear, t.MaxYear)
		}
		yearLength := 0
		for _, n := range months {
			if n < MinAllowedMonthLength || n > MaxAllowedMonthLength {
				return nil, configErrorf(strconv.Itoa(year), "invalid month length in year: %d", n)
			}
			idx.offsets = append(idx.offsets, day)
			day += gregorian.EpochDay(n)
			yearLength += n
			idx.minMonthLength = min(idx.minMonthLength, n)
			idx.maxMonthLength = max(idx.maxMonthLength, n)
		}
		idx.minYearLength = min(idx.minYearLength, yearLength)
		idx.maxYearLength = max(idx.maxYearLength, yearLength)
	}
	idx.offsets = append(idx.offsets, day)

	if len(idx.offsets) != want {
		return nil, fmt.Errorf("%w: %d offsets for years %d-%d, want %d",
			ErrInvariant, len(idx.offsets), t.MinYear, t.MaxYear, want)
	}
	return idx, nil
}

// Len returns the number of offsets including the sentinel.
func (idx *Index) Len() int {
	return len(idx.offsets)
}

// Offset returns the start of epoch month i, or the sentinel when i is
// the number of months.
func (idx *Index) Offset(i int) gregorian.EpochDay {
	return idx.offsets[i]
}

// months returns the number of real months, excluding the sentinel.
func (idx *Index) months() int {
	return len(idx.offsets) - 1
}

func (idx *Index) yearToEpochMonth(year int) int {
	return year*12 - idx.startEpochMonth
}

func (idx *Index) epochMonthToYear(epochMonth int) int {
	return (epochMonth + idx.startEpochMonth) / 12
}

// epochMonthToMonth returns the zero-based month of year.
func (idx *Index) epochMonthToMonth(epochMonth int) int {
	return (epochMonth + idx.startEpochMonth) % 12
}

func (idx *Index) epochMonthLength(epochMonth int) int {
	return int(idx.offsets[epochMonth+1] - idx.offsets[epochMonth])
}

// searchMonth returns the epoch month containing day: the last offset not
// greater than day. A miss in the search yields the insertion point, so
// one is subtracted. Callers keep day within [first offset, sentinel).
func (idx *Index) searchMonth(day gregorian.EpochDay) int {
	return lastNotAfter(idx.offsets, day)
}
