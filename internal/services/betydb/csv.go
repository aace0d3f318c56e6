package betydb

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"hyperspectral/internal/config"
)

// Header is the fixed column order of a trait CSV.
var Header = []string{
	"local_datetime",
	"NDVI705",
	"access_level",
	"species",
	"site",
	"citation_author",
	"citation_year",
	"citation_title",
	"method",
}

// TraitRow is one measured NDVI705 value with its provenance columns.
type TraitRow struct {
	LocalDatetime  string
	NDVI705        float64
	AccessLevel    int
	Species        string
	Site           string
	CitationAuthor string
	CitationYear   int
	CitationTitle  string
	Method         string
}

// NewTraitRow fills the fixed columns from the traits configuration.
func NewTraitRow(traits config.Traits, timestamp string, value float64) TraitRow {
	return TraitRow{
		LocalDatetime:  timestamp,
		NDVI705:        value,
		AccessLevel:    traits.AccessLevel,
		Species:        traits.Species,
		Site:           traits.Plot,
		CitationAuthor: traits.CitationAuthor,
		CitationYear:   traits.CitationYear,
		CitationTitle:  traits.CitationTitle,
		Method:         traits.Method,
	}
}

func (r TraitRow) record() []string {
	return []string{
		r.LocalDatetime,
		strconv.FormatFloat(r.NDVI705, 'g', -1, 64),
		strconv.Itoa(r.AccessLevel),
		r.Species,
		r.Site,
		r.CitationAuthor,
		strconv.Itoa(r.CitationYear),
		r.CitationTitle,
		r.Method,
	}
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []TraitRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write trait header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return fmt.Errorf("write trait row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
