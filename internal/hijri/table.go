package hijri

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

// Reserved table keys. Every other key is a four digit year.
const (
	KeyVersion  = "version"
	KeyISOStart = "iso-start"
	KeyID       = "id"
	KeyType     = "type"
)

//go:embed data/umalqura.properties
var defaultTableData []byte

// DefaultTableSource returns the bundled Umm al-Qura table.
func DefaultTableSource() io.Reader {
	return bytes.NewReader(defaultTableData)
}

// DefaultTable parses the bundled Umm al-Qura table.
func DefaultTable() (*Table, error) {
	return ParseTable(DefaultTableSource())
}

// Table is a validated month-length table: twelve lengths for every year
// in [MinYear, MaxYear], anchored at ISOStart (1 Muharram of MinYear).
//
// Month lengths are range checked by BuildIndex, not here.
type Table struct {
	Version  string
	ID       string
	Type     string
	ISOStart gregorian.Date
	MinYear  int
	MaxYear  int

	months map[int][12]int
}

// ParseTable reads a table in properties format.
func ParseTable(r io.Reader) (*Table, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadReader(r)
	if err != nil {
		return nil, &ConfigError{Msg: "cannot read properties", Err: err}
	}
	return FromProperties(p)
}

// LoadTableFile parses the table stored at path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	return ParseTable(f)
}

// FromProperties validates an already loaded property set.
func FromProperties(p *properties.Properties) (*Table, error) {
	t := &Table{months: make(map[int][12]int)}
	var haveStart bool

	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		switch key {
		case KeyVersion:
			t.Version = strings.TrimSpace(value)
		case KeyISOStart:
			d, err := gregorian.ParseDate(strings.TrimSpace(value))
			if err != nil {
				return nil, &ConfigError{Key: key, Msg: "unparsable date", Err: err}
			}
			t.ISOStart = d
			haveStart = true
		case KeyID:
			t.ID = value
		case KeyType:
			t.Type = value
		default:
			year, err := parseYearKey(key)
			if err != nil {
				return nil, err
			}
			months, err := parseMonthLengths(key, value)
			if err != nil {
				return nil, err
			}
			t.months[year] = months
		}
	}

	if t.Version == "" {
		return nil, configErrorf(KeyVersion, "missing or empty")
	}
	if !haveStart {
		return nil, configErrorf(KeyISOStart, "missing")
	}
	if len(t.months) == 0 {
		return nil, configErrorf("", "no years defined")
	}

	t.MinYear, t.MaxYear = 9999, 0
	for year := range t.months {
		t.MinYear = min(t.MinYear, year)
		t.MaxYear = max(t.MaxYear, year)
	}
	for year := t.MinYear; year <= t.MaxYear; year++ {
		if _, ok := t.months[year]; !ok {
			return nil, configErrorf(strconv.Itoa(year), "year missing from range %d-%d", t.MinYear, t.MaxYear)
		}
	}

	return t, nil
}

func parseYearKey(key string) (int, error) {
	if len(key) != 4 {
		return 0, configErrorf(key, "unrecognized key")
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, configErrorf(key, "unrecognized key")
		}
	}
	year, _ := strconv.Atoi(key)
	return year, nil
}

func parseMonthLengths(key, value string) ([12]int, error) {
	var months [12]int
	tokens := strings.Fields(value)
	if len(tokens) != 12 {
		return months, configErrorf(key, "want 12 month lengths, got %d", len(tokens))
	}
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return months, &ConfigError{Key: key, Msg: fmt.Sprintf("invalid month length %q", tok), Err: err}
		}
		months[i] = n
	}
	return months, nil
}

// Months returns the twelve month lengths of year.
func (t *Table) Months(year int) ([12]int, bool) {
	m, ok := t.months[year]
	return m, ok
}

// Years returns the covered years in ascending order.
func (t *Table) Years() []int {
	years := make([]int, 0, len(t.months))
	for y := range t.months {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// FormatMonthLengths renders a year value the way the table stores it.
func FormatMonthLengths(months [12]int) string {
	parts := make([]string, len(months))
	for i, n := range months {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// Properties returns the table as a property set, header keys first.
func (t *Table) Properties() *properties.Properties {
	p := newProperties()
	if t.ID != "" {
		setProp(p, KeyID, t.ID)
	}
	if t.Type != "" {
		setProp(p, KeyType, t.Type)
	}
	setProp(p, KeyVersion, t.Version)
	t.setContent(p)
	return p
}

// setContent adds the keys that define the calendar: iso-start and the
// year rows.
func (t *Table) setContent(p *properties.Properties) {
	setProp(p, KeyISOStart, t.ISOStart.String())
	for _, year := range t.Years() {
		setProp(p, fmt.Sprintf("%04d", year), FormatMonthLengths(t.months[year]))
	}
}

func newProperties() *properties.Properties {
	p := properties.NewProperties()
	p.DisableExpansion = true
	p.WriteSeparator = "="
	return p
}

func setProp(p *properties.Properties, k, v string) {
	_, _, _ = p.Set(k, v)
}

// Encode writes the table in the format ParseTable reads.
func (t *Table) Encode(w io.Writer) error {
	_, err := t.Properties().Write(w, properties.UTF8)
	return err
}

// Checksum returns a hex SHA-256 of the iso-start and year rows. The id,
// type and version keys are left out, so the same month lengths published
// under another version have the same checksum.
func (t *Table) Checksum() string {
	p := newProperties()
	t.setContent(p)
	h := sha256.New()
	_, _ = p.Write(h, properties.UTF8)
	return hex.EncodeToString(h.Sum(nil))
}
