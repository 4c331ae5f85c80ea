// Package models defines the data structures shared across the application.
// Rows mirror the column contracts of the external spreadsheet feeds.
package models

import (
	"strings"
	"time"
)

// UrgencyLevel is the closed severity classification attached to a report.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

// UrgencyLabels maps urgency levels to the Arabic wire labels written to
// the sheet. Read-back is free text, so these are submit-side only.
var UrgencyLabels = map[UrgencyLevel]string{
	UrgencyLow:      "1- منخفض",
	UrgencyMedium:   "2- متوسط",
	UrgencyHigh:     "3- مرتفع",
	UrgencyCritical: "4- حرج جداً",
}

// Valid reports whether u is one of the four defined levels.
func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Severity is the display tier of a logged report on the map.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// SeverityFromUrgency classifies a logged report's free-text urgency by
// keyword. The log feed carries whatever was written to the sheet, so
// both the Arabic tier words and the leading digit are matched, in
// Western and Arabic-Indic glyphs. Tiers are checked highest first.
func SeverityFromUrgency(raw string) Severity {
	switch {
	case strings.Contains(raw, "حرج") || strings.ContainsAny(raw, "4٤"):
		return SeverityCritical
	case strings.Contains(raw, "مرتفع") || strings.ContainsAny(raw, "3٣"):
		return SeverityHigh
	case strings.Contains(raw, "متوسط") || strings.ContainsAny(raw, "2٢"):
		return SeverityMedium
	case strings.Contains(raw, "منخفض") || strings.ContainsAny(raw, "1١"):
		return SeverityLow
	}
	return SeverityUnknown
}

// AdminRow is one authoritative geographic unit mapping from the
// administrative-hierarchy sheet. Rows with an empty region are discarded
// at mapping time; everything else is taken as-is.
type AdminRow struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	Commune  string `json:"commune"`
	Douar    string `json:"douar"`
}

// SubmissionRow is one field report already persisted in the log sheet.
// The ten-column positional contract with the sheet is fixed; urgency
// comes back as free text, not as an UrgencyLevel.
type SubmissionRow struct {
	Region     string `json:"region"`
	Province   string `json:"province"`
	Commune    string `json:"commune"`
	Douar      string `json:"douar"`
	Urgency    string `json:"urgency"`
	Damage     string `json:"damage"`
	Needs      string `json:"needs"`
	Phone      string `json:"phone"`
	LocationXY string `json:"location_xy"`
	MapLink    string `json:"map_link"`
}

// ReportDraft is the in-progress report being composed by one session.
// Latitude and Longitude are formatted decimal strings so the value sent
// to the sheet matches what the agent saw on screen.
type ReportDraft struct {
	Region    string       `json:"region"`
	Province  string       `json:"province"`
	Commune   string       `json:"commune"`
	Douar     string       `json:"nom_douar"`
	Urgency   UrgencyLevel `json:"niveau_urgence"`
	Damage    string       `json:"nature_dommages"`
	Needs     string       `json:"besoins_essentiels"`
	Phone     string       `json:"numero_telephone"`
	Latitude  string       `json:"latitude"`
	Longitude string       `json:"longitude"`
	MapsLink  string       `json:"lien_maps"`
}

// SubmissionAck is the result of forwarding a draft to the write endpoint.
// Delivered means the POST round trip completed; Confirmed means the
// transport could actually read a 2xx status. With an opaque-response
// transport only Delivered can ever be true.
type SubmissionAck struct {
	Reference   string    `json:"reference"`
	Delivered   bool      `json:"delivered"`
	Confirmed   bool      `json:"confirmed"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// MapPoint is a submission row whose location parsed to two finite
// coordinates, ready for plotting. Severity drives the marker color.
type MapPoint struct {
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lng"`
	Severity  Severity `json:"severity"`
	Douar     string   `json:"douar"`
	Commune   string   `json:"commune"`
	Province  string   `json:"province"`
	Urgency   string   `json:"urgency"`
	Damage    string   `json:"damage"`
	Needs     string   `json:"needs"`
	Phone     string   `json:"phone"`
}

// SearchFilters holds the per-field substring queries of the dashboard.
// All fields are optional; empty strings never contribute to a score.
type SearchFilters struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	Commune  string `json:"commune"`
	Douar    string `json:"douar"`
	Urgency  string `json:"urgency"`
	Damage   string `json:"damage"`
	Needs    string `json:"needs"`
	Phone    string `json:"phone"`
}

// Empty reports whether no filter field is set.
func (f SearchFilters) Empty() bool {
	return f == SearchFilters{}
}

// HealthStatus represents the server health check response. The two
// loading flags are independent per-feed in-flight indicators.
type HealthStatus struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime,omitempty"`
	AdminRows    int    `json:"admin_rows"`
	LogRows      int    `json:"log_rows"`
	AdminLoaded  bool   `json:"admin_loaded"`
	LogsLoaded   bool   `json:"logs_loaded"`
	AdminLoading bool   `json:"admin_loading"`
	LogsLoading  bool   `json:"logs_loading"`
}
