package lunar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeKnownDates(t *testing.T) {
	tests := []struct {
		name  string
		at    time.Time
		phase string
	}{
		{"reference new moon", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), "Nouvelle Lune"},
		{"three days in", time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), "Premier Croissant"},
		{"first quarter", time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC), "Premier Quartier"},
		{"waxing gibbous", time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), "Gibbeuse Croissante"},
		{"full moon", time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC), "Pleine Lune"},
		{"waning gibbous", time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), "Gibbeuse Décroissante"},
		{"last quarter", time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), "Dernier Quartier"},
		{"waning crescent", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "Dernier Croissant"},
		{"next cycle new moon", time.Date(2024, 2, 9, 16, 0, 0, 0, time.UTC), "Nouvelle Lune"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.at)
			assert.Equal(t, tt.phase, got.Phase)
			assert.True(t, got.Fallback)
		})
	}
}

func TestComputeIlluminationBounds(t *testing.T) {
	newMoon := Compute(referenceNewMoon)
	assert.Equal(t, 0, newMoon.Illumination)

	full := Compute(referenceNewMoon.Add(time.Duration(synodicDays / 2 * 24 * float64(time.Hour))))
	assert.Equal(t, 100, full.Illumination)

	// Every instant stays within [0, 100].
	for d := 0; d < 60; d++ {
		info := Compute(referenceNewMoon.AddDate(0, 0, d))
		assert.GreaterOrEqual(t, info.Illumination, 0)
		assert.LessOrEqual(t, info.Illumination, 100)
	}
}

func TestComputeBeforeReference(t *testing.T) {
	// Dates before the reference epoch must wrap, not go negative.
	got := Compute(time.Date(2023, 12, 13, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Nouvelle Lune", got.Phase)
}

func TestComputeNextFullMoonIsAhead(t *testing.T) {
	got := Compute(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, got.NextFullMoon)
	assert.Greater(t, *got.NextFullMoon, 0)
	assert.LessOrEqual(t, *got.NextFullMoon, 30)

	// The day before a full moon, one day remains.
	eve := Compute(referenceNewMoon.AddDate(0, 0, 14))
	require.NotNil(t, eve.NextFullMoon)
	assert.Equal(t, 1, *eve.NextFullMoon)
	assert.Equal(t, moonImageURL, eve.ImageURL)
}
