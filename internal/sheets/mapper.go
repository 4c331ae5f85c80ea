package sheets

import (
	"fmt"

	"github.com/miidani/field-server/internal/models"
)

// Column contracts with the spreadsheet. Position is the contract, not
// header names: the first row is dropped unread and cells are taken by
// index. Reordering columns upstream silently corrupts every field
// downstream; there is nothing here that could catch it.
const (
	adminColumns      = 4
	submissionColumns = 10
)

// Warning records a row that needed positional defaulting. Short rows are
// still included (padded with empty strings) for compatibility with the
// live feed, but the defaulting is no longer silent.
type Warning struct {
	Line    int    // 1-based line in the feed, header included
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

func shortRowWarning(line, got, want int) Warning {
	return Warning{Line: line, Message: fmt.Sprintf("row has %d cells, expected %d; missing cells defaulted to empty", got, want)}
}

// cell returns the i-th cell of row, or "" when the row is short.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// MapAdminRows maps parsed CSV records to administrative rows. The first
// record is the header and is discarded. Rows with an empty region are
// malformed and dropped; short rows are padded and reported as warnings.
func MapAdminRows(records [][]string) ([]models.AdminRow, []Warning) {
	var (
		rows     []models.AdminRow
		warnings []Warning
	)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < adminColumns {
			warnings = append(warnings, shortRowWarning(i+1, len(rec), adminColumns))
		}
		row := models.AdminRow{
			Region:   cell(rec, 0),
			Province: cell(rec, 1),
			Commune:  cell(rec, 2),
			Douar:    cell(rec, 3),
		}
		if row.Region == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, warnings
}

// MapSubmissionRows maps parsed CSV records to submission-log rows using
// the fixed ten-column contract. Same defaulting and discard rules as
// MapAdminRows.
func MapSubmissionRows(records [][]string) ([]models.SubmissionRow, []Warning) {
	var (
		rows     []models.SubmissionRow
		warnings []Warning
	)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < submissionColumns {
			warnings = append(warnings, shortRowWarning(i+1, len(rec), submissionColumns))
		}
		row := models.SubmissionRow{
			Region:     cell(rec, 0),
			Province:   cell(rec, 1),
			Commune:    cell(rec, 2),
			Douar:      cell(rec, 3),
			Urgency:    cell(rec, 4),
			Damage:     cell(rec, 5),
			Needs:      cell(rec, 6),
			Phone:      cell(rec, 7),
			LocationXY: cell(rec, 8),
			MapLink:    cell(rec, 9),
		}
		if row.Region == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, warnings
}
