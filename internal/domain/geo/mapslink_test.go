package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMapsLink(t *testing.T) {
	cases := []struct {
		link     string
		ok       bool
		lat, lng float64
	}{
		{"https://www.google.com/maps/place/Tomoca/@9.0301,38.7469,17z", true, 9.0301, 38.7469},
		{"https://maps.google.com/?q=8.98,-38.75", true, 8.98, -38.75},
		{"https://maps.google.com/?ll=9.01,38.76&z=12", true, 9.01, 38.76},
		{"https://maps.google.com/?q=Bole+Road", false, 0, 0},
		{"https://maps.app.goo.gl/xyz", false, 0, 0},
		{"https://maps.google.com/?q=95.0,38.0", false, 0, 0},
		{"", false, 0, 0},
	}
	for _, tc := range cases {
		p, ok := ParseMapsLink(tc.link)
		assert.Equal(t, tc.ok, ok, tc.link)
		if tc.ok {
			assert.InDelta(t, tc.lat, p.Lat(), 1e-9, tc.link)
			assert.InDelta(t, tc.lng, p.Lon(), 1e-9, tc.link)
		}
	}
}
