package hijri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMonth_String(t *testing.T) {
	assert.Equal(t, "Muharram", Muharram.String())
	assert.Equal(t, "Ramadhan", Ramadhan.String())
	assert.Equal(t, "Thul-Hijjah", ThulHijjah.String())
	assert.Equal(t, "Month(12)", Month(12).String())
}

func TestNamesFor(t *testing.T) {
	tests := []struct {
		name string
		tags []language.Tag
		want language.Tag
	}{
		{"none", nil, language.English},
		{"english", []language.Tag{language.AmericanEnglish}, language.English},
		{"arabic", []language.Tag{language.MustParse("ar-SA")}, language.Arabic},
		{"unsupported", []language.Tag{language.French}, language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NamesFor(tt.tags...).Tag)
		})
	}
}

func TestNamesForHeader(t *testing.T) {
	assert.Equal(t, "رمضان", NamesForHeader("ar-SA,ar;q=0.9,en;q=0.5").Name(Ramadhan))
	assert.Equal(t, "Ramadhan", NamesForHeader("en-GB").Name(Ramadhan))
	assert.Equal(t, "Ramadhan", NamesForHeader("").Name(Ramadhan))
	assert.Equal(t, "Jum-II", NamesForHeader("en").ShortName(JumadaThani))
	assert.Equal(t, "", English.Name(Month(-1)))
}

func TestParseMonthName(t *testing.T) {
	tests := map[string]Month{
		"Muharram":      Muharram,
		"muharram":      Muharram,
		"Rab-II":        RabiThani,
		" Thul-Qi'dah ": ThulQidah,
		"شعبان":         Shaaban,
		"جمادى 1":       JumadaAwwal,
		"Jumada al-Ula": JumadaAwwal,
	}
	for in, want := range tests {
		got, err := ParseMonthName(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, got, in)
		}
	}

	_, err := ParseMonthName("January")
	assert.Error(t, err)
}
