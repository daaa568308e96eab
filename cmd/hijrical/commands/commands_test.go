package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_ToHijri(t *testing.T) {
	out, err := execute(t, "convert", "2015-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, "2015-03-14 (Saturday)")
	assert.Contains(t, out, "1436-05-23")
	assert.Contains(t, out, "23 "+hijri.English.Name(hijri.JumadaAwwal)+" 1436 AH")
}

func TestConvert_ToGregorian(t *testing.T) {
	out, err := execute(t, "convert", "--to-gregorian", "1437", "1", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "= 2015-10-14 (Wednesday)")

	out, err = execute(t, "convert", "--to-gregorian", "1442", "Safar", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "2020-10-17")
}

func TestConvert_Arabic(t *testing.T) {
	out, err := execute(t, "--lang", "ar", "convert", "2015-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, hijri.Arabic.Name(hijri.JumadaAwwal))
}

func TestConvert_Errors(t *testing.T) {
	tests := [][]string{
		{"convert", "2015-02-30"},
		{"convert", "1900-01-01"},
		{"convert", "--to-gregorian", "1437", "13", "1"},
		{"convert", "--to-gregorian", "1437", "2", "30"},
		{"convert", "--to-gregorian", "1437", "1"},
		{"convert", "--to-gregorian", "1437", "Smarch", "1"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}

	_, err := execute(t, "convert", "1800-01-01")
	var re *hijri.RangeError
	assert.ErrorAs(t, err, &re)
}

func TestMonth(t *testing.T) {
	out, err := execute(t, "month", "1437", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, hijri.English.Name(hijri.Muharram)+" 1437 AH (30 days)", lines[0])
	assert.Equal(t, "2015-10-14 to 2015-11-12", lines[1])
	assert.Contains(t, out, "  1/14")
	assert.Contains(t, out, " 30/12")
	assert.NotContains(t, out, " 31/")

	// 2015-10-14 was a Wednesday, so the first row starts with three blanks.
	firstRow := lines[4]
	assert.True(t, strings.HasPrefix(firstRow, strings.Repeat("      ", 3)+"  1/14"), "row %q", firstRow)
}

func TestMonth_OutOfRange(t *testing.T) {
	_, err := execute(t, "month", "1600", "1")
	assert.Error(t, err)
}

func TestVerify_BundledTable(t *testing.T) {
	out, err := execute(t, "verify")
	require.NoError(t, err, out)
	assert.Contains(t, out, "136 years")
	assert.Contains(t, out, "1945-12-05 to 2077-11-16")
	assert.Contains(t, out, "OK")
}

func TestVerify_Report(t *testing.T) {
	conv := hijri.MustDefault()
	report, err := Verify(conv)
	require.NoError(t, err)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 48195, report.Days)
}

func TestFollows(t *testing.T) {
	tests := []struct {
		prev, next hijri.Date
		want       bool
	}{
		{hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 1}, hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 2}, true},
		{hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 30}, hijri.Date{Year: 1437, Month: hijri.Safar, Day: 1}, true},
		{hijri.Date{Year: 1437, Month: hijri.ThulHijjah, Day: 30}, hijri.Date{Year: 1438, Month: hijri.Muharram, Day: 1}, true},
		{hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 1}, hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 3}, false},
		{hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 30}, hijri.Date{Year: 1437, Month: hijri.RabiAwwal, Day: 1}, false},
		{hijri.Date{Year: 1437, Month: hijri.Shawwal, Day: 29}, hijri.Date{Year: 1438, Month: hijri.Muharram, Day: 1}, false},
		{hijri.Date{Year: 1437, Month: hijri.Muharram, Day: 29}, hijri.Date{Year: 1437, Month: hijri.Safar, Day: 2}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, follows(tt.prev, tt.next), "%s -> %s", tt.prev, tt.next)
	}
}

func TestExport(t *testing.T) {
	out, err := execute(t, "export", "1437", "--to", "1438")
	require.NoError(t, err)

	cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 24)

	_, err = execute(t, "export", "1600")
	assert.Error(t, err)
}

func TestInfo_TableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.properties")
	table := "version=small-1\niso-start=2015-10-14\n" +
		"1437=30 29 30 30 29 29 30 29 30 29 29 30\n" +
		"1438=29 30 29 30 29 30 30 29 30 29 30 29\n"
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	out, err := execute(t, "--table", path, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:       small-1")
	assert.Contains(t, out, "Years:         1437-1438 AH")
	assert.Contains(t, out, "Gregorian:     2015-10-14 to ")

	out, err = execute(t, "--table", path, "verify")
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 years")
}

func TestInfo_MissingTable(t *testing.T) {
	_, err := execute(t, "--table", filepath.Join(t.TempDir(), "missing.properties"), "info")
	assert.Error(t, err)
}
