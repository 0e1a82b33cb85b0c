package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yukikurage/field-task-api/internal/models"
)

var mapsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`),
	regexp.MustCompile(`[?&](?:q|query|ll)=(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`),
	regexp.MustCompile(`/place/(-?\d+(?:\.\d+)?),\s*(-?\d+(?:\.\d+)?)`),
}

// ParseMapsLink extracts latitude and longitude from a Google Maps URL.
func ParseMapsLink(link string) (float64, float64, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return 0, 0, false
	}
	if decoded, err := url.QueryUnescape(link); err == nil {
		link = decoded
	}

	for _, re := range mapsPatterns {
		m := re.FindStringSubmatch(link)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLng != nil || !validLatLng(lat, lng) {
			continue
		}
		return lat, lng, true
	}
	return 0, 0, false
}

// ResolveCoordinates prefers coordinates found in link and falls back to the
// manually typed values. Both manual values empty means no location.
func ResolveCoordinates(link, rawLat, rawLng string) (*float64, *float64, error) {
	if lat, lng, ok := ParseMapsLink(link); ok {
		return &lat, &lng, nil
	}

	rawLat = strings.TrimSpace(strings.ReplaceAll(rawLat, ",", "."))
	rawLng = strings.TrimSpace(strings.ReplaceAll(rawLng, ",", "."))
	if rawLat == "" && rawLng == "" {
		return nil, nil, nil
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, nil, models.ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, nil, models.ErrInvalidCoordinates
	}
	if !validLatLng(lat, lng) {
		return nil, nil, models.ErrInvalidCoordinates
	}
	return &lat, &lng, nil
}

func validLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
