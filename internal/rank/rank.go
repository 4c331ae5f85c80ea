// Package rank orders the submission log for the dashboard. The default
// mode scores rows against per-field queries and brings matches to the
// top without hiding anything; a strict mode hides non-matching rows
// instead. Both behaviors shipped in historical dashboard variants, so
// the mode is an explicit configuration choice.
package rank

import (
	"sort"
	"strings"

	"github.com/miidani/field-server/internal/models"
)

// Per-field match weights. The settlement name dominates, the contact
// number comes second, administrative levels are equal and low, and the
// narrative fields barely nudge the order.
const (
	weightDouar    = 100
	weightPhone    = 50
	weightRegion   = 10
	weightProvince = 10
	weightCommune  = 10
	weightUrgency  = 5
	weightDamage   = 2
	weightNeeds    = 2
)

// Mode selects the dashboard search behavior.
type Mode string

const (
	// ModeRank re-orders rows by relevance; non-matching rows remain
	// visible, just deprioritized.
	ModeRank Mode = "rank"
	// ModeFilter hides rows that do not contain the query.
	ModeFilter Mode = "filter"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeRank || m == ModeFilter }

// Score computes the relevance of one row against the filters. Matching
// is case-sensitive substring containment; empty queries contribute
// nothing.
func Score(row models.SubmissionRow, f models.SearchFilters) int {
	score := 0
	if f.Region != "" && strings.Contains(row.Region, f.Region) {
		score += weightRegion
	}
	if f.Province != "" && strings.Contains(row.Province, f.Province) {
		score += weightProvince
	}
	if f.Commune != "" && strings.Contains(row.Commune, f.Commune) {
		score += weightCommune
	}
	if f.Douar != "" && strings.Contains(row.Douar, f.Douar) {
		score += weightDouar
	}
	if f.Urgency != "" && strings.Contains(row.Urgency, f.Urgency) {
		score += weightUrgency
	}
	if f.Damage != "" && strings.Contains(row.Damage, f.Damage) {
		score += weightDamage
	}
	if f.Needs != "" && strings.Contains(row.Needs, f.Needs) {
		score += weightNeeds
	}
	if f.Phone != "" && strings.Contains(row.Phone, f.Phone) {
		score += weightPhone
	}
	return score
}

// Rank returns the rows sorted by descending score. The sort is stable:
// equal-score rows keep their relative input order, so re-ranking on
// every keystroke never shuffles ties. The input slice is not modified.
// Scores are computed once per row before sorting, so the comparison
// stays coherent while elements move.
func Rank(rows []models.SubmissionRow, f models.SearchFilters) []models.SubmissionRow {
	if f.Empty() {
		out := make([]models.SubmissionRow, len(rows))
		copy(out, rows)
		return out
	}

	type scored struct {
		row   models.SubmissionRow
		score int
	}
	paired := make([]scored, len(rows))
	for i, row := range rows {
		paired[i] = scored{row: row, score: Score(row, f)}
	}
	sort.SliceStable(paired, func(i, j int) bool { return paired[i].score > paired[j].score })

	out := make([]models.SubmissionRow, len(paired))
	for i, p := range paired {
		out[i] = p.row
	}
	return out
}

// Filter returns only the rows whose settlement, commune, province,
// region, phone, or damage text contains the lowercased query. An empty
// query returns a copy of the input unchanged.
func Filter(rows []models.SubmissionRow, query string) []models.SubmissionRow {
	if query == "" {
		out := make([]models.SubmissionRow, len(rows))
		copy(out, rows)
		return out
	}

	q := strings.ToLower(query)
	var out []models.SubmissionRow
	for _, row := range rows {
		haystacks := []string{row.Douar, row.Commune, row.Province, row.Region, row.Phone, row.Damage}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
