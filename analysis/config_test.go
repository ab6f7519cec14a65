package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Canonical(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		config string
		want   string
	}{
		{"empty", KindGeoJSON, ``, `{"mode":"shape","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"empty object", KindGeoJSON, `{}`, `{"mode":"shape","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"mode", KindGeoJSON, `{"mode": "centroid"}`, `{"mode":"centroid","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"legacy type", KindGeoJSON, `{"type": "point"}`, `{"mode":"point","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"partial options", KindGeoJSON, `{"options": {"maxCells": 1000}}`, `{"mode":"shape","options":{"maxCells":1000,"minLevel":4,"maxLevel":23}}`},
		{"unknown fields", KindGeoJSON, `{"mode": "shape", "foo": 1}`, `{"mode":"shape","options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"raw point", KindGeoPoint, `{}`, `{"options":{"maxCells":20,"minLevel":4,"maxLevel":23}}`},
		{"paths", KindGeoPoint, `{"latitude": ["loc", "lat"], "longitude": ["loc", "lon"], "options": {"minLevel": 2}}`,
			`{"latitude":["loc","lat"],"longitude":["loc","lon"],"options":{"maxCells":20,"minLevel":2,"maxLevel":23}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.kind, []byte(tt.config))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			again, err := Normalize(tt.kind, got)
			require.NoError(t, err)
			assert.Equal(t, string(got), string(again))
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		config string
		err    error
	}{
		{"unknown mode", KindGeoJSON, `{"mode": "box"}`, ErrUnknownMode},
		{"mode is case sensitive", KindGeoJSON, `{"mode": "Shape"}`, ErrUnknownMode},
		{"max cells as string", KindGeoJSON, `{"options": {"maxCells": "2"}}`, ErrInvalidConfig},
		{"max level too big", KindGeoJSON, `{"options": {"maxLevel": 31}}`, ErrInvalidOptions},
		{"negative min level", KindGeoJSON, `{"options": {"minLevel": -2}}`, ErrInvalidOptions},
		{"min above max", KindGeoPoint, `{"options": {"minLevel": 10, "maxLevel": 2}}`, ErrInvalidOptions},
		{"zero max cells", KindGeoPoint, `{"options": {"maxCells": 0}}`, ErrInvalidOptions},
		{"latitude only", KindGeoPoint, `{"latitude": ["lat"]}`, ErrInvalidConfig},
		{"longitude only", KindGeoPoint, `{"longitude": ["lon"]}`, ErrInvalidConfig},
		{"empty component", KindGeoPoint, `{"latitude": [""], "longitude": ["lon"]}`, ErrInvalidConfig},
		{"not an object", KindGeoJSON, `[]`, ErrInvalidConfig},
		{"malformed", KindGeoJSON, `{"mode":`, ErrInvalidConfig},
		{"unknown kind", Kind("text"), `{}`, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.kind, []byte(tt.config))
			assert.ErrorIs(t, err, tt.err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.kind, cfgErr.Kind)

			a, err := Make(tt.kind, []byte(tt.config))
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeShape, ModeCentroid, ModePoint} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, "loc.lat", jsonPath([]string{"loc", "lat"}))
	assert.Equal(t, `a\.b.c\*`, jsonPath([]string{"a.b", "c*"}))
}
