// Command apitest runs a smoke test suite against a running Umm al-Qura API.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 [-full] [-v]
//
// With -full it walks every year the server reports and checks each month
// start against the Gregorian endpoint.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/ummalqura-api/internal/api"
)

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run(full bool) {
	fmt.Println("==============================================")
	fmt.Println("Umm al-Qura API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	info := tr.testCalendarInfo()
	tr.testToday()
	tr.testKnownDates()
	tr.testHijriToGregorian()
	tr.testDateRange()
	tr.testEdgeCases()
	tr.testFeed()
	if full && info != nil {
		tr.testYearCoverage(info)
	}

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health map[string]string
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health["status"] == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (table %s)", health["table_version"]))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health["status"]))
	}
}

func (tr *TestRunner) testCalendarInfo() *api.CalendarInfoResponse {
	tr.printSection("Calendar Info")

	resp, err := tr.get("/api/v1/calendar")
	if err != nil {
		tr.recordError("Calendar", err.Error())
		return nil
	}

	var info api.CalendarInfoResponse
	if err := tr.parseDataAs(resp, &info); err != nil {
		tr.recordError("Calendar", err.Error())
		return nil
	}

	tr.recordSuccess(fmt.Sprintf("Table %s covers %d-%d AH (%s to %s)",
		info.Version, info.MinYear, info.MaxYear, info.FirstDate, info.LastDate))
	if info.FirstDate != info.ISOStart {
		tr.recordError("Calendar", fmt.Sprintf("first date %s differs from iso-start %s", info.FirstDate, info.ISOStart))
	}
	return &info
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today")

	resp, err := tr.get("/api/v1/hijri/today")
	if err != nil {
		tr.recordError("Today", err.Error())
		return
	}

	var data api.ConversionResponse
	if err := tr.parseDataAs(resp, &data); err != nil {
		tr.recordError("Today", err.Error())
		return
	}

	tr.recordSuccess(fmt.Sprintf("Today (%s %s): %s", data.Weekday, data.Gregorian, tr.describe(data.Hijri)))
}

func (tr *TestRunner) testKnownDates() {
	tr.printSection("Gregorian to Hijri")

	testCases := []struct {
		date        string
		expected    string
		description string
	}{
		{"1945-12-05", "1365-01-01", "First day of the table"},
		{"1970-01-01", "1389-10-23", "Unix epoch"},
		{"1999-04-01", "1419-12-15", "Thul-Hijjah 1419"},
		{"2000-01-01", "1420-09-24", "Ramadhan 1420"},
		{"2009-05-18", "1430-05-23", "Jumada al-Ula 1430"},
		{"2015-03-14", "1436-05-23", "Jumada al-Ula 1436"},
		{"2015-10-14", "1437-01-01", "Hijri new year 1437"},
		{"2020-10-17", "1442-02-30", "30 Safar 1442"},
	}

	for _, tc := range testCases {
		resp, err := tr.get("/api/v1/hijri/date/" + tc.date)
		if err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		var data api.ConversionResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		if data.Hijri.Formatted == tc.expected {
			tr.recordSuccess(fmt.Sprintf("%s: %s (%s)", tc.date, data.Hijri.Formatted, tc.description))
		} else {
			tr.recordError(tc.date, fmt.Sprintf("Expected %s, got %s", tc.expected, data.Hijri.Formatted))
		}

		if tr.verbose {
			fmt.Printf("    %s\n", tr.describe(data.Hijri))
		}
	}
}

func (tr *TestRunner) testHijriToGregorian() {
	tr.printSection("Hijri to Gregorian")

	testCases := []struct {
		path     string
		expected string
	}{
		{"/api/v1/gregorian/1437/1/1", "2015-10-14"},
		{"/api/v1/gregorian/1437/2/1", "2015-11-13"},
		{"/api/v1/gregorian/1441/12/1", "2020-07-22"},
		{"/api/v1/gregorian/1442/1/1", "2020-08-20"},
	}

	for _, tc := range testCases {
		resp, err := tr.get(tc.path)
		if err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}

		var data api.ConversionResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}

		if data.Gregorian == tc.expected {
			tr.recordSuccess(fmt.Sprintf("%s: %s", tc.path, data.Gregorian))
		} else {
			tr.recordError(tc.path, fmt.Sprintf("Expected %s, got %s", tc.expected, data.Gregorian))
		}
	}
}

func (tr *TestRunner) testDateRange() {
	tr.printSection("Date Range Tests")

	// Test a week range
	resp, err := tr.get("/api/v1/hijri/range?start=2015-10-11&end=2015-10-17")
	if err != nil {
		tr.recordError("Range (week)", err.Error())
		return
	}

	var rangeData api.RangeResponse
	if err := tr.parseDataAs(resp, &rangeData); err != nil {
		tr.recordError("Range (week)", err.Error())
		return
	}

	if rangeData.Count == 7 {
		tr.recordSuccess(fmt.Sprintf("Week range returned %d days", rangeData.Count))
	} else {
		tr.recordError("Range (week)", fmt.Sprintf("Expected 7 days, got %d", rangeData.Count))
	}

	// Test range limit
	resp2, _ := tr.getRaw("/api/v1/hijri/range?start=2000-01-01&end=2015-12-31")
	if resp2 != nil && resp2.StatusCode == 400 {
		tr.recordSuccess("Range limit enforced")
	} else {
		tr.recordError("Range limit", "Should reject a sixteen year range")
	}

	// Test invalid range (end before start)
	resp3, _ := tr.getRaw("/api/v1/hijri/range?start=2025-12-31&end=2025-01-01")
	if resp3 != nil && resp3.StatusCode == 400 {
		tr.recordSuccess("Invalid range rejected (end before start)")
	} else {
		tr.recordError("Invalid range", "Should reject end < start")
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	cases := []struct {
		path   string
		status int
		what   string
	}{
		{"/api/v1/hijri/date/invalid", 400, "Invalid date format rejected"},
		{"/api/v1/hijri/date/2023-02-29", 400, "Non-existent Gregorian date rejected"},
		{"/api/v1/hijri/date/1900-01-01", 400, "Date before the table rejected"},
		{"/api/v1/hijri/date/2100-01-01", 400, "Date after the table rejected"},
		{"/api/v1/gregorian/1437/13/1", 400, "Month 13 rejected"},
		{"/api/v1/gregorian/1437/2/30", 400, "30 Safar 1437 rejected"},
		{"/api/v1/hijri/range?start=2025-01-01", 400, "Missing end parameter rejected"},
	}

	for _, c := range cases {
		resp, err := tr.getRaw(c.path)
		if err != nil {
			tr.recordError(c.path, err.Error())
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == c.status {
			tr.recordSuccess(c.what)
		} else {
			tr.recordError(c.path, fmt.Sprintf("Expected HTTP %d, got %d", c.status, resp.StatusCode))
		}
	}
}

func (tr *TestRunner) testFeed() {
	tr.printSection("Calendar Feed")

	resp, err := tr.getRaw("/api/v1/calendar/1437.ics")
	if err != nil {
		tr.recordError("Feed", err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError("Feed", err.Error())
		return
	}

	events := strings.Count(string(body), "BEGIN:VEVENT")
	if resp.StatusCode == 200 && events == 12 {
		tr.recordSuccess("1437.ics has 12 month-start events")
	} else {
		tr.recordError("Feed", fmt.Sprintf("HTTP %d with %d events", resp.StatusCode, events))
	}
}

// testYearCoverage checks every year: month lengths add up and each month
// start round-trips through both conversion endpoints.
func (tr *TestRunner) testYearCoverage(info *api.CalendarInfoResponse) {
	tr.printSection(fmt.Sprintf("Year Coverage %d-%d", info.MinYear, info.MaxYear))

	failures := 0
	for year := info.MinYear; year <= info.MaxYear; year++ {
		resp, err := tr.get(fmt.Sprintf("/api/v1/years/%d", year))
		if err != nil {
			tr.recordError(fmt.Sprintf("year %d", year), err.Error())
			failures++
			continue
		}

		var data api.YearResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(fmt.Sprintf("year %d", year), err.Error())
			failures++
			continue
		}

		total := 0
		for _, m := range data.Months {
			total += m.Days
		}
		if total != data.Days {
			tr.recordError(fmt.Sprintf("year %d", year), fmt.Sprintf("months sum to %d, year has %d", total, data.Days))
			failures++
			continue
		}

		for _, m := range data.Months {
			resp, err := tr.get("/api/v1/hijri/date/" + m.Start)
			if err != nil {
				tr.recordError(m.Start, err.Error())
				failures++
				continue
			}
			var conv api.ConversionResponse
			if err := tr.parseDataAs(resp, &conv); err != nil {
				tr.recordError(m.Start, err.Error())
				failures++
				continue
			}
			if conv.Hijri.Year != year || conv.Hijri.Month != m.Month || conv.Hijri.Day != 1 {
				tr.recordError(m.Start, fmt.Sprintf("Expected %d-%02d-01, got %s", year, m.Month, conv.Hijri.Formatted))
				failures++
			}
		}

		if tr.verbose {
			fmt.Printf("    %d: %d days\n", year, data.Days)
		}
	}

	if failures == 0 {
		tr.recordSuccess(fmt.Sprintf("%d years consistent", info.MaxYear-info.MinYear+1))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*api.Response, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp api.Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	url := tr.baseURL + path
	return tr.client.Get(url)
}

func (tr *TestRunner) parseDataAs(resp *api.Response, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) describe(d api.HijriDate) string {
	return fmt.Sprintf("%d %s %d AH (%d days in month)", d.Day, d.MonthName, d.Year, d.MonthLength)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	full := flag.Bool("full", false, "Walk every year of the table")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *verbose)
	runner.Run(*full)

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
