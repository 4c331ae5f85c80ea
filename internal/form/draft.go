// Package form governs the in-progress report draft: cascading
// administrative selection, coordinate handling, validation, and the
// post-submission reset.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miidani/field-server/internal/models"
)

// Field names a draft field an edit can target. Values match the JSON
// names of models.ReportDraft.
type Field string

const (
	FieldRegion    Field = "region"
	FieldProvince  Field = "province"
	FieldCommune   Field = "commune"
	FieldDouar     Field = "nom_douar"
	FieldUrgency   Field = "niveau_urgence"
	FieldDamage    Field = "nature_dommages"
	FieldNeeds     Field = "besoins_essentiels"
	FieldPhone     Field = "numero_telephone"
	FieldLatitude  Field = "latitude"
	FieldLongitude Field = "longitude"
)

// ErrUnknownField reports an edit targeting a field that does not exist.
type ErrUnknownField struct{ Field Field }

func (e *ErrUnknownField) Error() string {
	return fmt.Sprintf("unknown draft field %q", e.Field)
}

// ErrInvalidUrgency reports an urgency value outside the closed set.
type ErrInvalidUrgency struct{ Value string }

func (e *ErrInvalidUrgency) Error() string {
	return fmt.Sprintf("invalid urgency level %q", e.Value)
}

// ValidationError lists the required fields still empty at submit time.
type ValidationError struct{ Missing []Field }

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "required fields missing: " + strings.Join(names, ", ")
}

// New creates a draft with session-start defaults: empty selections,
// medium urgency, and zeroed coordinates until geolocation reports in.
func New() models.ReportDraft {
	d := models.ReportDraft{
		Urgency:   models.UrgencyMedium,
		Latitude:  "0.000000",
		Longitude: "0.000000",
	}
	d.MapsLink = mapsLink(d.Latitude, d.Longitude)
	return d
}

// Apply sets one field and returns the updated draft.
//
// Overwriting a higher administrative level clears every level below it,
// so a draft never carries an inconsistent partial address. Re-selecting
// the current value is a no-op and triggers no downstream reset. Editing
// either coordinate recomputes the maps link; that derivation is
// independent of the administrative cascade.
func Apply(d models.ReportDraft, field Field, value string) (models.ReportDraft, error) {
	switch field {
	case FieldRegion:
		if value != d.Region {
			d.Region = value
			d.Province = ""
			d.Commune = ""
			d.Douar = ""
		}
	case FieldProvince:
		if value != d.Province {
			d.Province = value
			d.Commune = ""
			d.Douar = ""
		}
	case FieldCommune:
		if value != d.Commune {
			d.Commune = value
			d.Douar = ""
		}
	case FieldDouar:
		d.Douar = value
	case FieldUrgency:
		level := models.UrgencyLevel(value)
		if !level.Valid() {
			return d, &ErrInvalidUrgency{Value: value}
		}
		d.Urgency = level
	case FieldDamage:
		d.Damage = value
	case FieldNeeds:
		d.Needs = value
	case FieldPhone:
		d.Phone = value
	case FieldLatitude:
		d.Latitude = value
		d.MapsLink = mapsLink(d.Latitude, d.Longitude)
	case FieldLongitude:
		d.Longitude = value
		d.MapsLink = mapsLink(d.Latitude, d.Longitude)
	default:
		return d, &ErrUnknownField{Field: field}
	}
	return d, nil
}

// SetCoordinates records a geolocation fix, truncated to six decimals for
// display and for the maps link.
func SetCoordinates(d models.ReportDraft, lat, lng float64) models.ReportDraft {
	d.Latitude = strconv.FormatFloat(lat, 'f', 6, 64)
	d.Longitude = strconv.FormatFloat(lng, 'f', 6, 64)
	d.MapsLink = mapsLink(d.Latitude, d.Longitude)
	return d
}

// Validate checks the required fields before any network call is made.
func Validate(d models.ReportDraft) error {
	var missing []Field
	if d.Region == "" {
		missing = append(missing, FieldRegion)
	}
	if d.Province == "" {
		missing = append(missing, FieldProvince)
	}
	if d.Commune == "" {
		missing = append(missing, FieldCommune)
	}
	if d.Douar == "" {
		missing = append(missing, FieldDouar)
	}
	if d.Damage == "" {
		missing = append(missing, FieldDamage)
	}
	if d.Needs == "" {
		missing = append(missing, FieldNeeds)
	}
	if d.Phone == "" {
		missing = append(missing, FieldPhone)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ResetAfterSubmit clears the address and narrative fields after a
// successful submission. Coordinates, maps link, and the chosen urgency
// tier survive so the agent can file the next report from the same spot.
func ResetAfterSubmit(d models.ReportDraft) models.ReportDraft {
	d.Region = ""
	d.Province = ""
	d.Commune = ""
	d.Douar = ""
	d.Damage = ""
	d.Needs = ""
	d.Phone = ""
	return d
}

func mapsLink(lat, lng string) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lng)
}
