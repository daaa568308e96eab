package database

import (
	"fmt"
	"time"

	"github.com/magiconair/properties"

	"github.com/zapponejosh/ummalqura-api/internal/hijri"
)

// TableRecord is one row of hijri_tables.
type TableRecord struct {
	ID           int64      `json:"id"`
	Version      string     `json:"version"`
	TableID      string     `json:"table_id,omitempty"`
	CalendarType string     `json:"calendar_type,omitempty"`
	ISOStart     string     `json:"iso_start"`
	MinYear      int        `json:"min_year"`
	MaxYear      int        `json:"max_year"`
	Source       string     `json:"source"`
	Checksum     string     `json:"checksum"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// StoredTable is a table record with its year rows.
type StoredTable struct {
	TableRecord
	Years map[int]string // year -> "30 29 ..." month lengths
}

// Table rebuilds and re-validates the Hijri table. Rows edited outside the
// store fail here rather than at conversion time.
func (s *StoredTable) Table() (*hijri.Table, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true

	set := func(k, v string) {
		_, _, _ = p.Set(k, v)
	}
	set(hijri.KeyVersion, s.Version)
	set(hijri.KeyISOStart, s.ISOStart)
	if s.TableID != "" {
		set(hijri.KeyID, s.TableID)
	}
	if s.CalendarType != "" {
		set(hijri.KeyType, s.CalendarType)
	}
	for year, months := range s.Years {
		set(fmt.Sprintf("%04d", year), months)
	}

	t, err := hijri.FromProperties(p)
	if err != nil {
		return nil, fmt.Errorf("stored table %q: %w", s.Version, err)
	}
	return t, nil
}
