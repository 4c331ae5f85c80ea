package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miidani/field-server/internal/models"
)

func TestMapAdminRowsDropsHeaderAndEmptyRegion(t *testing.T) {
	records := [][]string{
		{"region", "province", "commune", "douar"},
		{"R1", "P1", "C1", "D1"},
		{"", "P2", "C2", "D2"}, // empty region: malformed, dropped
		{"R2", "P3", "C3", "D3"},
	}
	rows, warnings := MapAdminRows(records)
	require.Len(t, rows, 2)
	assert.Equal(t, models.AdminRow{Region: "R1", Province: "P1", Commune: "C1", Douar: "D1"}, rows[0])
	assert.Equal(t, "R2", rows[1].Region)
	assert.Empty(t, warnings)
}

func TestMapAdminRowsPadsShortRowsWithWarning(t *testing.T) {
	records := [][]string{
		{"region", "province", "commune", "douar"},
		{"R1", "P1"},
	}
	rows, warnings := MapAdminRows(records)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AdminRow{Region: "R1", Province: "P1"}, rows[0])
	require.Len(t, warnings, 1)
	assert.Equal(t, 2, warnings[0].Line)
	assert.Contains(t, warnings[0].Message, "expected 4")
}

func TestMapSubmissionRowsPositionalContract(t *testing.T) {
	records := [][]string{
		make([]string, 10), // header, ignored by content
		{"R1", "P1", "C1", "D1", "3- مرتفع", "collapsed road", "tents, blankets", "0612345678", "31.5,-7.1", "https://maps.example/x"},
	}
	rows, warnings := MapSubmissionRows(records)
	require.Len(t, rows, 1)
	assert.Empty(t, warnings)

	row := rows[0]
	assert.Equal(t, "D1", row.Douar)
	assert.Equal(t, "3- مرتفع", row.Urgency)
	assert.Equal(t, "tents, blankets", row.Needs)
	assert.Equal(t, "0612345678", row.Phone)
	assert.Equal(t, "31.5,-7.1", row.LocationXY)
	assert.Equal(t, "https://maps.example/x", row.MapLink)
}

func TestMapSubmissionRowsShortRowStillIncluded(t *testing.T) {
	records := [][]string{
		{"h"},
		{"R1", "P1", "C1", "D1", "2- متوسط"},
	}
	rows, warnings := MapSubmissionRows(records)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Phone)
	assert.Equal(t, "", rows[0].LocationXY)
	require.Len(t, warnings, 1)
}

func TestMapExtraColumnsIgnored(t *testing.T) {
	records := [][]string{
		{"region", "province", "commune", "douar", "extra"},
		{"R1", "P1", "C1", "D1", "ignored", "also ignored"},
	}
	rows, warnings := MapAdminRows(records)
	require.Len(t, rows, 1)
	assert.Equal(t, "D1", rows[0].Douar)
	assert.Empty(t, warnings)
}
