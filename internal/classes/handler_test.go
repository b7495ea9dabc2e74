package classes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveWindow(t *testing.T) {
	storedStart := time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC)
	storedEnd := storedStart.Add(time.Hour)

	before := storedStart.Add(-30 * time.Minute)
	after := storedEnd.Add(30 * time.Minute)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		valid bool
	}{
		{"no change keeps stored window", nil, nil, true},
		{"move start within window", &before, nil, true},
		{"move start past stored end", &after, nil, false},
		{"move end before stored start", nil, &before, false},
		{"move end later", nil, &after, true},
		{"both moved, still ordered", &before, &after, true},
		{"both moved, inverted", &after, &before, false},
		{"start equals end", &storedEnd, &storedEnd, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := effectiveWindow(tt.start, tt.end, storedStart, storedEnd)
			assert.Equal(t, tt.valid, start.Before(end))
		})
	}
}

func TestParseDateAcceptsBothFormats(t *testing.T) {
	plain, err := parseDate("2026-09-04")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC), plain)

	stamped, err := parseDate("2026-09-04T18:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 4, 18, 0, 0, 0, time.UTC), stamped)

	_, err = parseDate("04/09/2026")
	assert.Error(t, err)
}
