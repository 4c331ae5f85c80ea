package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFromUrgency(t *testing.T) {
	cases := []struct {
		urgency string
		want    Severity
	}{
		{"4- حرج جداً", SeverityCritical},
		{"٤ كارثي", SeverityCritical},
		{"3- مرتفع", SeverityHigh},
		{"مرتفع الخطورة", SeverityHigh},
		{"2- متوسط", SeverityMedium},
		{"٢", SeverityMedium},
		{"1- منخفض", SeverityLow},
		{"١ مستقر", SeverityLow},
		{"", SeverityUnknown},
		{"urgent", SeverityUnknown},
		// A tier word beats a lower digit: highest match wins.
		{"حرج (كان 2)", SeverityCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeverityFromUrgency(tc.urgency), "urgency %q", tc.urgency)
	}
}

func TestUrgencyLevelValid(t *testing.T) {
	for _, level := range []UrgencyLevel{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical} {
		assert.True(t, level.Valid())
	}
	assert.False(t, UrgencyLevel("EXTREME").Valid())
	assert.False(t, UrgencyLevel("").Valid())
}
