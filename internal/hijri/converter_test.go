package hijri

import (
	"sync"
	"testing"
	"time"

	goHijri "github.com/hablullah/go-hijri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

func defaultConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestConverter_Scenarios(t *testing.T) {
	c := defaultConverter(t)

	tests := []struct {
		name       string
		greg       time.Time
		year, mon0 int
		day        int
		fields     Fields
	}{
		{"jumada al-ula", time.Date(2015, time.March, 14, 10, 0, 0, 0, time.UTC), 1436, 4, 23, Fields{2015, 2, 14}},
		{"thul-hijjah", time.Date(1999, time.April, 1, 0, 0, 0, 0, time.UTC), 1419, 11, 15, Fields{1999, 3, 1}},
		{"safar 30", time.Date(2020, time.October, 17, 23, 59, 0, 0, time.UTC), 1442, 1, 30, Fields{2020, 9, 17}},
		{"jumada 1430", time.Date(2009, time.May, 18, 0, 0, 0, 0, time.UTC), 1430, 4, 23, Fields{2009, 4, 18}},
		{"y2k", time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), 1420, 8, 24, Fields{2000, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := c.ToHijri(tt.greg)
			require.NoError(t, err)
			assert.Equal(t, Date{tt.year, Month(tt.mon0), tt.day}, h)

			f, err := c.ToGregorian(tt.year, tt.mon0, tt.day)
			require.NoError(t, err)
			assert.Equal(t, tt.fields, f)
			assert.Equal(t, gregorian.FromTime(tt.greg), f.Date())
		})
	}
}

func TestConverter_MonthLengths(t *testing.T) {
	c := defaultConverter(t)

	n, err := c.DaysInMonth(1437, int(Muharram)+1)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	n, err = c.DaysInMonth(1437, int(Safar)+1)
	require.NoError(t, err)
	assert.Equal(t, 29, n)

	n, err = c.DaysInMonth(1442, int(Safar)+1)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	assert.Equal(t, 1365, c.MinimumYear())
	assert.Equal(t, 1500, c.MaximumYear())
	assert.True(t, c.IsLeapYear(1441))
	assert.False(t, c.IsLeapYear(1436))
}

func TestConverter_ToHijriUsesLocalDate(t *testing.T) {
	c := defaultConverter(t)
	riyadh := time.FixedZone("AST", 3*60*60)

	instant := time.Date(2015, time.October, 13, 22, 0, 0, 0, time.UTC)
	utc, err := c.ToHijri(instant)
	require.NoError(t, err)
	local, err := c.ToHijri(instant.In(riyadh))
	require.NoError(t, err)

	assert.Equal(t, Date{1436, ThulHijjah, 30}, utc)
	assert.Equal(t, Date{1437, Muharram, 1}, local)
}

func TestConverter_RangeErrors(t *testing.T) {
	c := defaultConverter(t)

	tests := []struct {
		name  string
		call  func() error
		field string
		value int64
	}{
		{"before table", func() error {
			_, err := c.ToHijri(time.Date(1945, time.December, 4, 0, 0, 0, 0, time.UTC))
			return err
		}, FieldNameEpochDay, -8794},
		{"after table", func() error {
			_, err := c.ToHijri(time.Date(2077, time.November, 17, 0, 0, 0, 0, time.UTC))
			return err
		}, FieldNameEpochDay, 39402},
		{"month -1", func() error {
			_, err := c.ToGregorian(1437, -1, 1)
			return err
		}, FieldNameMonth, -1},
		{"month 12", func() error {
			_, err := c.ToGregorian(1437, 12, 1)
			return err
		}, FieldNameMonth, 12},
		{"year", func() error {
			_, err := c.ToGregorian(1501, 0, 1)
			return err
		}, FieldNameYear, 1501},
		{"day", func() error {
			_, err := c.ToGregorian(1437, int(Safar), 30)
			return err
		}, FieldNameDay, 30},
		{"invalid gregorian", func() error {
			_, err := c.GregorianToHijri(gregorian.NewDate(2015, time.February, 29))
			return err
		}, FieldNameDay, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
			assert.Equal(t, tt.value, re.Value)
		})
	}
}

func TestConverter_GregorianRoundTrip(t *testing.T) {
	c := defaultConverter(t)
	first, last := c.Bounds()

	assert.Equal(t, gregorian.NewDate(1945, time.December, 5), first)
	assert.Equal(t, gregorian.NewDate(2077, time.November, 16), last)

	for d := first; d != last.AddDays(1); d = d.AddDays(1) {
		h, err := c.GregorianToHijri(d)
		require.NoError(t, err, "GregorianToHijri(%v)", d)
		back, err := c.HijriToGregorian(h)
		require.NoError(t, err, "HijriToGregorian(%v)", h)
		require.Equal(t, d, back, "HijriToGregorian(GregorianToHijri(%v))", d)
	}
}

// TestConverter_MatchesReference compares against an independent Umm
// al-Qura implementation over the years it is tested on.
func TestConverter_MatchesReference(t *testing.T) {
	c := defaultConverter(t)

	start := gregorian.NewDate(1990, time.January, 1)
	end := gregorian.NewDate(2050, time.December, 31)
	for d := start; d != end.AddDays(1); d = d.AddDays(1) {
		ref, err := goHijri.CreateUmmAlQuraDate(d.Time(nil))
		require.NoError(t, err)

		got, err := c.GregorianToHijri(d)
		require.NoError(t, err)

		want := Date{Year: int(ref.Year), Month: Month(ref.Month - 1), Day: int(ref.Day)}
		require.Equal(t, want, got, "GregorianToHijri(%v)", d)
	}
}

func TestDefault_Concurrent(t *testing.T) {
	const workers = 16
	results := make([]*Converter, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := Default()
			if !assert.NoError(t, err) {
				return
			}
			results[i] = c
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
	assert.Same(t, results[0], MustDefault())
}

func TestNew_InvalidTable(t *testing.T) {
	tbl, err := DefaultTable()
	require.NoError(t, err)

	broken := *tbl
	broken.months = map[int][12]int{}
	for y, m := range tbl.months {
		broken.months[y] = m
	}
	bad := broken.months[1400]
	bad[3] = 28
	broken.months[1400] = bad

	_, err = New(&broken)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "1400", cfgErr.Key)
}
