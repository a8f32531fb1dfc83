package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointToWKB_AndBack(t *testing.T) {
	data, err := PointToWKB(json.RawMessage(`{"type":"Point","coordinates":[37.6173,55.7558]}`))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out, err := WKBToGeoJSON(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[37.6173,55.7558]}`, string(out))
}

func TestPointToWKB_Empty(t *testing.T) {
	for _, raw := range []string{"", "null"} {
		data, err := PointToWKB(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Nil(t, data)
	}
}

func TestPointToWKB_RejectsOtherGeometries(t *testing.T) {
	_, err := PointToWKB(json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))
	assert.ErrorIs(t, err, ErrNotPoint)
}

func TestPointToWKB_RejectsGarbage(t *testing.T) {
	_, err := PointToWKB(json.RawMessage(`{"type":"Point","coordinates":"x"}`))
	assert.Error(t, err)
}

func TestPointToWKB_RejectsOutOfRange(t *testing.T) {
	_, err := PointToWKB(json.RawMessage(`{"type":"Point","coordinates":[200,10]}`))
	assert.Error(t, err)
}

func TestNewPoint(t *testing.T) {
	data, err := NewPoint(2.35, 48.85)
	require.NoError(t, err)
	out, err := WKBToGeoJSON(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[2.35,48.85]}`, string(out))

	_, err = NewPoint(0, 91)
	assert.Error(t, err)
}

func TestWKBToGeoJSON_Nil(t *testing.T) {
	out, err := WKBToGeoJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
