package hijri

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Month is a zero-based Hijri month, Muharram = 0.
type Month int

const (
	Muharram Month = iota
	Safar
	RabiAwwal
	RabiThani
	JumadaAwwal
	JumadaThani
	Rajab
	Shaaban
	Ramadhan
	Shawwal
	ThulQidah
	ThulHijjah
)

// Valid reports whether m is one of the twelve months.
func (m Month) Valid() bool {
	return m >= Muharram && m <= ThulHijjah
}

// String returns the English month name.
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return English.Long[m]
}

// MonthNames is a localized set of month names.
type MonthNames struct {
	Tag   language.Tag
	Long  [12]string
	Short [12]string
}

// Name returns the long name of m, or "" for an invalid month.
func (n MonthNames) Name(m Month) string {
	if !m.Valid() {
		return ""
	}
	return n.Long[m]
}

// ShortName returns the abbreviated name of m, or "" for an invalid month.
func (n MonthNames) ShortName(m Month) string {
	if !m.Valid() {
		return ""
	}
	return n.Short[m]
}

var English = MonthNames{
	Tag: language.English,
	Long: [12]string{
		"Muharram", "Safar", "Rabi' al-Awwal", "Rabi' al-Thani",
		"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Sha'ban",
		"Ramadhan", "Shawwal", "Thul-Qi'dah", "Thul-Hijjah",
	},
	Short: [12]string{
		"Muh", "Saf", "Rab-I", "Rab-II", "Jum-I", "Jum-II",
		"Raj", "Sha", "Ram", "Shw", "Thul-Q", "Thul-H",
	},
}

var Arabic = MonthNames{
	Tag: language.Arabic,
	Long: [12]string{
		"محرم", "صفر", "ربيع الأول", "ربيع الثاني",
		"جمادى الأولى", "جمادى الآخرة", "رجب", "شعبان",
		"رمضان", "شوال", "ذو القعدة", "ذو الحجة",
	},
	Short: [12]string{
		"محرم", "صفر", "ربيع 1", "ربيع 2",
		"جمادى 1", "جمادى 2", "رجب", "شعبان",
		"رمضان", "شوال", "ذو القعدة", "ذو الحجة",
	},
}

// nameSets is ordered to match the matcher's supported tags. English
// comes first so it wins when nothing matches.
var (
	nameSets    = []MonthNames{English, Arabic}
	nameMatcher = language.NewMatcher([]language.Tag{English.Tag, Arabic.Tag})
)

// NamesFor picks the name set that best matches the preferred tags.
func NamesFor(tags ...language.Tag) MonthNames {
	if len(tags) == 0 {
		return English
	}
	_, i, _ := nameMatcher.Match(tags...)
	return nameSets[i]
}

// NamesForHeader picks the name set for an Accept-Language header value.
// Unparsable headers fall back to English.
func NamesForHeader(acceptLanguage string) MonthNames {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return English
	}
	return NamesFor(tags...)
}

// ParseMonthName resolves a long or short month name in any supported
// language. Latin names are matched case-insensitively.
func ParseMonthName(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for _, set := range nameSets {
		for i := range set.Long {
			if strings.EqualFold(s, set.Long[i]) || strings.EqualFold(s, set.Short[i]) {
				return Month(i), nil
			}
		}
	}
	return 0, fmt.Errorf("hijri: unknown month name %q", s)
}
