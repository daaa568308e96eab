package hijri

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zapponejosh/ummalqura-api/internal/gregorian"
)

func TestLastNotAfter(t *testing.T) {
	offsets := []gregorian.EpochDay{10, 40, 69, 99}

	tests := []struct {
		target gregorian.EpochDay
		want   int
	}{
		{9, -1},
		{10, 0},
		{11, 0},
		{39, 0},
		{40, 1},
		{68, 1},
		{69, 2},
		{98, 2},
		{99, 3},
		{500, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lastNotAfter(offsets, tt.target), "lastNotAfter(%d)", tt.target)
	}
}

func TestLastNotAfter_Empty(t *testing.T) {
	assert.Equal(t, -1, lastNotAfter(nil, 5))
}
