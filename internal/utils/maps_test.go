package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/field-task-api/internal/models"
)

func TestParseMapsLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		lat  float64
		lng  float64
		ok   bool
	}{
		{"at form", "https://www.google.com/maps/@-23.5505,-46.6333,15z", -23.5505, -46.6333, true},
		{"query form", "https://maps.google.com/?q=-22.9068,-43.1729", -22.9068, -43.1729, true},
		{"encoded query", "https://www.google.com/maps/search/?api=1&query=-19.9167%2C-43.9345", -19.9167, -43.9345, true},
		{"place form", "https://www.google.com/maps/place/-15.7939,-47.8828", -15.7939, -47.8828, true},
		{"place with name uses at", "https://www.google.com/maps/place/Some+St/@-3.7319,-38.5267,17z/data=x", -3.7319, -38.5267, true},
		{"no coordinates", "https://maps.app.goo.gl/abc123", 0, 0, false},
		{"empty", "", 0, 0, false},
		{"out of range", "https://maps.google.com/?q=123.0,10.0", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lng, ok := ParseMapsLink(tt.link)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.lat, lat, 1e-9)
				assert.InDelta(t, tt.lng, lng, 1e-9)
			}
		})
	}
}

func TestResolveCoordinates(t *testing.T) {
	lat, lng, err := ResolveCoordinates("https://maps.google.com/?q=-22.9,-43.1", "1", "2")
	require.NoError(t, err)
	assert.InDelta(t, -22.9, *lat, 1e-9)
	assert.InDelta(t, -43.1, *lng, 1e-9)

	lat, lng, err = ResolveCoordinates("", "-23,55", " -46.63 ")
	require.NoError(t, err)
	assert.InDelta(t, -23.55, *lat, 1e-9)
	assert.InDelta(t, -46.63, *lng, 1e-9)

	lat, lng, err = ResolveCoordinates("", "", "")
	require.NoError(t, err)
	assert.Nil(t, lat)
	assert.Nil(t, lng)

	_, _, err = ResolveCoordinates("", "abc", "-46")
	assert.ErrorIs(t, err, models.ErrInvalidCoordinates)

	_, _, err = ResolveCoordinates("", "-23", "")
	assert.ErrorIs(t, err, models.ErrInvalidCoordinates)
}
