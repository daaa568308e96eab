// Package commands implements the hijrical command line tool.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/ummalqura-api/internal/feed"
	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

// NewRootCommand builds hijrical with all subcommands attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hijrical",
		Short:         "Umm al-Qura calendar tool",
		Long:          "Convert dates between the Umm al-Qura Hijri calendar and the Gregorian calendar, print month grids, verify tables and export iCalendar feeds.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("table", "", "Properties table to load (default: bundled table)")
	rootCmd.PersistentFlags().String("lang", "en", "Language for month names (en, ar)")

	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewMonthCommand())
	rootCmd.AddCommand(NewVerifyCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewInfoCommand())

	return rootCmd
}

// NewConvertCommand creates the convert command
func NewConvertCommand() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert [yyyy-mm-dd | year month day]",
		Short: "Convert a date between calendars",
		Long: `Convert a Gregorian yyyy-mm-dd date to Hijri, or with --to-gregorian a
Hijri year, month and day to Gregorian. Months are 1-based and may be
given by name. Without arguments, today's date is converted.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, names, err := setup(cmd)
			if err != nil {
				return err
			}

			toGregorian, _ := cmd.Flags().GetBool("to-gregorian")
			if toGregorian {
				if len(args) != 3 {
					return errors.New("--to-gregorian needs year, month and day")
				}
				return convertToGregorian(cmd.OutOrStdout(), conv, names, args)
			}

			var date gregorian.Date
			switch len(args) {
			case 0:
				date = gregorian.FromTime(time.Now())
			case 1:
				date, err = gregorian.ParseDate(args[0])
				if err != nil {
					return err
				}
			default:
				return errors.New("expected a single yyyy-mm-dd date")
			}

			hd, err := conv.GregorianToHijri(date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) = %s = %d %s %d AH\n",
				date, date.Weekday(), hd, hd.Day, names.Name(hd.Month), hd.Year)
			return nil
		},
	}

	convertCmd.Flags().Bool("to-gregorian", false, "Convert a Hijri date to Gregorian")
	return convertCmd
}

func convertToGregorian(w io.Writer, conv *hijri.Converter, names hijri.MonthNames, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	month, err := parseMonth(args[1])
	if err != nil {
		return err
	}
	day, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid day %q", args[2])
	}

	hd := hijri.Date{Year: year, Month: month, Day: day}
	date, err := conv.HijriToGregorian(hd)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s = %d %s %d AH = %s (%s)\n",
		hd, hd.Day, names.Name(hd.Month), hd.Year, date, date.Weekday())
	return nil
}

// NewMonthCommand creates the month command
func NewMonthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "month <year> <month>",
		Short: "Print a Hijri month as a week grid",
		Long:  "Print a Hijri month as a Sunday-first week grid. Each cell shows the Hijri day over the Gregorian day of month.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, names, err := setup(cmd)
			if err != nil {
				return err
			}
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := parseMonth(args[1])
			if err != nil {
				return err
			}
			return printMonth(cmd.OutOrStdout(), conv, names, year, month)
		},
	}
}

func printMonth(w io.Writer, conv *hijri.Converter, names hijri.MonthNames, year int, month hijri.Month) error {
	length, err := conv.DaysInMonth(year, int(month)+1)
	if err != nil {
		return err
	}
	first, err := conv.HijriToGregorian(hijri.Date{Year: year, Month: month, Day: 1})
	if err != nil {
		return err
	}
	last := first.AddDays(length - 1)

	fmt.Fprintf(w, "%s %d AH (%d days)\n", names.Name(month), year, length)
	fmt.Fprintf(w, "%s to %s\n\n", first, last)
	fmt.Fprintln(w, "  Su    Mo    Tu    We    Th    Fr    Sa")

	col := int(first.Weekday())
	fmt.Fprint(w, strings.Repeat("      ", col))
	for day := 1; day <= length; day++ {
		g := first.AddDays(day - 1)
		fmt.Fprintf(w, " %2d/%-2d", day, g.Day)
		col++
		if col == 7 && day != length {
			fmt.Fprintln(w)
			col = 0
		}
	}
	fmt.Fprintln(w)
	return nil
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check a table converts consistently over its whole range",
		Long: `Convert every day of the table's range to Hijri and back, check that
consecutive days advance by exactly one Hijri day, and check that month and
year lengths agree with the conversion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, _, err := setup(cmd)
			if err != nil {
				return err
			}
			report, err := Verify(conv)
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}
}

// VerifyReport summarizes a Verify run.
type VerifyReport struct {
	Version  string
	Days     int
	Years    int
	First    gregorian.Date
	Last     gregorian.Date
	Failures []string
}

func (r VerifyReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s: %d years, %d days (%s to %s)\n", r.Version, r.Years, r.Days, r.First, r.Last)
	if len(r.Failures) == 0 {
		b.WriteString("OK")
		return b.String()
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "FAIL %s\n", f)
	}
	fmt.Fprintf(&b, "%d failure(s)", len(r.Failures))
	return b.String()
}

// maxReportedFailures caps the failure list so a broken table stays readable.
const maxReportedFailures = 20

// Verify walks every day the converter supports. It returns an error when
// any check fails.
func Verify(conv *hijri.Converter) (VerifyReport, error) {
	chrono := conv.Chronology()
	first, last := conv.Bounds()
	report := VerifyReport{
		Version: conv.Table().Version,
		Years:   conv.MaximumYear() - conv.MinimumYear() + 1,
		First:   first,
		Last:    last,
	}
	failures := 0
	fail := func(format string, args ...any) {
		failures++
		if len(report.Failures) < maxReportedFailures {
			report.Failures = append(report.Failures, fmt.Sprintf(format, args...))
		}
	}

	var prev hijri.Date
	for day := chrono.MinEpochDay(); day < chrono.MaxEpochDay(); day++ {
		report.Days++
		hd, err := chrono.HijriFromDay(day)
		if err != nil {
			fail("%s: %v", gregorian.DateFromDay(day), err)
			continue
		}
		back, err := chrono.DayFromHijri(hd.Year, int(hd.Month)+1, hd.Day)
		if err != nil || back != day {
			fail("%s: %s converts back to %d (%v)", gregorian.DateFromDay(day), hd, back, err)
		}
		if day > chrono.MinEpochDay() && !follows(prev, hd) {
			fail("%s: %s does not follow %s", gregorian.DateFromDay(day), hd, prev)
		}
		prev = hd
	}

	for year := conv.MinimumYear(); year <= conv.MaximumYear(); year++ {
		total := 0
		for m := 1; m <= 12; m++ {
			n, err := conv.DaysInMonth(year, m)
			if err != nil {
				fail("year %d month %d: %v", year, m, err)
				continue
			}
			if n < chrono.MinMonthLength() || n > chrono.MaxMonthLength() {
				fail("year %d month %d: length %d outside %d-%d", year, m, n, chrono.MinMonthLength(), chrono.MaxMonthLength())
			}
			total += n
		}
		length, err := conv.DaysInYear(year)
		if err != nil || length != total {
			fail("year %d: length %d, months sum to %d (%v)", year, length, total, err)
		}
	}

	if failures > 0 {
		return report, fmt.Errorf("verify: %d check(s) failed", failures)
	}
	return report, nil
}

// follows reports whether next is the Hijri day after prev.
func follows(prev, next hijri.Date) bool {
	switch {
	case next.Year == prev.Year && next.Month == prev.Month:
		return next.Day == prev.Day+1
	case next.Day != 1:
		return false
	case next.Year == prev.Year:
		return next.Month == prev.Month+1
	default:
		return next.Year == prev.Year+1 && prev.Month == hijri.ThulHijjah && next.Month == hijri.Muharram
	}
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export <year>",
		Short: "Write an iCalendar feed of Hijri month starts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, names, err := setup(cmd)
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			to, _ := cmd.Flags().GetInt("to")
			if to == 0 {
				to = from
			}

			cal, err := feed.Years(conv, from, to, names, time.Now())
			if err != nil {
				return err
			}
			return feed.Encode(cmd.OutOrStdout(), cal)
		},
	}

	exportCmd.Flags().Int("to", 0, "Last year of the feed (default: the start year)")
	return exportCmd
}

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print table metadata and supported range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, _, err := setup(cmd)
			if err != nil {
				return err
			}
			t := conv.Table()
			chrono := conv.Chronology()
			first, last := conv.Bounds()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Version:       %s\n", t.Version)
			if t.ID != "" {
				fmt.Fprintf(w, "ID:            %s\n", t.ID)
			}
			if t.Type != "" {
				fmt.Fprintf(w, "Type:          %s\n", t.Type)
			}
			fmt.Fprintf(w, "Years:         %d-%d AH\n", conv.MinimumYear(), conv.MaximumYear())
			fmt.Fprintf(w, "Gregorian:     %s to %s\n", first, last)
			fmt.Fprintf(w, "Month lengths: %d-%d\n", chrono.MinMonthLength(), chrono.MaxMonthLength())
			fmt.Fprintf(w, "Year lengths:  %d-%d\n", chrono.MinYearLength(), chrono.MaxYearLength())
			fmt.Fprintf(w, "Checksum:      %s\n", t.Checksum())
			return nil
		},
	}
}

// setup loads the converter and month names named by the persistent flags.
func setup(cmd *cobra.Command) (*hijri.Converter, hijri.MonthNames, error) {
	lang, _ := cmd.Flags().GetString("lang")
	names := hijri.NamesForHeader(lang)

	path, _ := cmd.Flags().GetString("table")
	if path == "" {
		conv, err := hijri.Default()
		return conv, names, err
	}

	t, err := hijri.LoadTableFile(path)
	if err != nil {
		return nil, names, err
	}
	conv, err := hijri.New(t)
	return conv, names, err
}

// parseMonth accepts a 1-based month number or a month name.
func parseMonth(s string) (hijri.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d is outside 1-12", n)
		}
		return hijri.Month(n - 1), nil
	}
	return hijri.ParseMonthName(s)
}
