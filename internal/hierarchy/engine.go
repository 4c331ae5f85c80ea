// Package hierarchy derives the cascading select options of the report
// form from the administrative-row set: region → province → commune →
// douar, each level gated on the selection above it.
package hierarchy

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/miidani/field-server/internal/models"
)

// Selection is the partially-filled administrative address of a draft.
type Selection struct {
	Region   string
	Province string
	Commune  string
}

// Options are the candidate values at each level, deduplicated and
// collation-sorted. A level below an unselected parent is empty.
type Options struct {
	Regions   []string `json:"regions"`
	Provinces []string `json:"provinces"`
	Communes  []string `json:"communes"`
	Douars    []string `json:"douars"`
}

// Engine derives options from the full row set. Derivation is a pure
// function of (rows, selection): output order comes from the collator,
// never from row arrival order. Value comparison is exact string match
// after the mapper's trimming — diacritic variants in the source data are
// treated as distinct values, a documented non-guarantee.
type Engine struct {
	collator  *collate.Collator
	allowList map[string]struct{}
}

// New creates an engine sorting with the given locale's collation.
// regionAllowList, when non-empty, is a hard filter: only rows whose
// region literally matches a member are exposed at any level.
func New(tag language.Tag, regionAllowList []string) *Engine {
	e := &Engine{collator: collate.New(tag)}
	if len(regionAllowList) > 0 {
		e.allowList = make(map[string]struct{}, len(regionAllowList))
		for _, r := range regionAllowList {
			e.allowList[r] = struct{}{}
		}
	}
	return e
}

// NewArabic creates an engine for the feed's Arabic place names.
func NewArabic(regionAllowList []string) *Engine {
	return New(language.Arabic, regionAllowList)
}

// Options derives the candidate set at every level for the given
// selection.
func (e *Engine) Options(rows []models.AdminRow, sel Selection) Options {
	var opts Options

	opts.Regions = e.distinct(rows, func(r models.AdminRow) (string, bool) {
		return r.Region, e.allowed(r.Region)
	})

	if sel.Region != "" {
		opts.Provinces = e.distinct(rows, func(r models.AdminRow) (string, bool) {
			return r.Province, e.allowed(r.Region) && r.Region == sel.Region
		})
	}

	if sel.Region != "" && sel.Province != "" {
		opts.Communes = e.distinct(rows, func(r models.AdminRow) (string, bool) {
			return r.Commune, e.allowed(r.Region) && r.Region == sel.Region && r.Province == sel.Province
		})
	}

	if sel.Region != "" && sel.Province != "" && sel.Commune != "" {
		opts.Douars = e.distinct(rows, func(r models.AdminRow) (string, bool) {
			return r.Douar, e.allowed(r.Region) && r.Region == sel.Region &&
				r.Province == sel.Province && r.Commune == sel.Commune
		})
	}

	return opts
}

func (e *Engine) allowed(region string) bool {
	if e.allowList == nil {
		return true
	}
	_, ok := e.allowList[region]
	return ok
}

// distinct collects the values selected by pick from matching rows,
// deduplicated and sorted with the engine's collator.
func (e *Engine) distinct(rows []models.AdminRow, pick func(models.AdminRow) (string, bool)) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, row := range rows {
		v, ok := pick(row)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	e.collator.SortStrings(values)
	return values
}
