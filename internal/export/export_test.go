package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/woozymasta/geocollect/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type memClipboard struct {
	err    error
	writes []string
}

func (c *memClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

var samplePoints = []geo.GeoPoint{
	{Lat: -23.547271, Lng: -46.651813, Name: "Gate A", Type: "entrada", Accessible: true},
	{Lat: -23.5475, Lng: -46.6521, Name: "", Type: "rota"},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	assert.Equal(t, "application/yaml", f.ContentType())

	_, err = ParseFormat("kml")
	assert.Error(t, err)
}

func TestTextIsIndented(t *testing.T) {
	text, err := Text(samplePoints[:1])
	require.NoError(t, err)

	want := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {
        "type": "Point",
        "coordinates": [
          -46.651813,
          -23.547271
        ]
      },
      "properties": {
        "name": "Gate A",
        "type": "entrada",
        "accessible": true
      }
    }
  ]
}`
	assert.Equal(t, want, text)
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, geo.Collection(samplePoints), FormatYAML))

	var fc geo.GeoJSONFeatureCollection
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, geo.Collection(samplePoints), fc)
	assert.Contains(t, buf.String(), "coordinates: [-46.651813, -23.547271]")
}

func TestCopyAll(t *testing.T) {
	clip := &memClipboard{}

	copied, err := CopyAll(samplePoints, clip)
	require.NoError(t, err)
	assert.True(t, copied)
	require.Len(t, clip.writes, 1)

	var fc geo.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal([]byte(clip.writes[0]), &fc))
	assert.Len(t, fc.Features, 2)
	assert.True(t, strings.HasPrefix(clip.writes[0], "{\n  \"type\""))
}

func TestCopyAllEmptyIsNoop(t *testing.T) {
	clip := &memClipboard{writes: []string{"previous"}}

	copied, err := CopyAll(nil, clip)
	require.NoError(t, err)
	assert.False(t, copied)
	assert.Equal(t, []string{"previous"}, clip.writes)
}

func TestCopyAllClipboardError(t *testing.T) {
	boom := errors.New("no clipboard")
	copied, err := CopyAll(samplePoints, &memClipboard{err: boom})
	assert.False(t, copied)
	assert.ErrorIs(t, err, boom)
}
