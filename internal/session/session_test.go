package session

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/woozymasta/geocollect/internal/geo"
	"github.com/woozymasta/geocollect/internal/locate"
	"github.com/woozymasta/geocollect/internal/point"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLocator struct {
	err error
	pos locate.Position
}

func (l fixedLocator) CurrentPosition(context.Context) (locate.Position, error) {
	return l.pos, l.err
}

type memClipboard struct {
	writes []string
}

func (c *memClipboard) WriteText(text string) error {
	c.writes = append(c.writes, text)
	return nil
}

// syncBuffer guards a buffer written from capture goroutines.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newSession(loc point.Locator) (*Session, *syncBuffer, *memClipboard) {
	out := &syncBuffer{}
	clip := &memClipboard{}
	c := point.NewCollector(point.NewStore(), loc)
	return New(out, c, clip, time.Second), out, clip
}

func TestSessionCaptureAndCopy(t *testing.T) {
	s, out, clip := newSession(fixedLocator{pos: locate.Position{Latitude: -23.5472712345, Longitude: -46.6518134567}})
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "copy"))
	assert.Empty(t, clip.writes, "nothing to copy yet")

	require.NoError(t, s.Exec(ctx, "name Gate A"))
	require.NoError(t, s.Exec(ctx, "type entrada"))
	require.NoError(t, s.Exec(ctx, "accessible sim"))
	require.NoError(t, s.Exec(ctx, "add"))
	s.Wait()

	assert.Contains(t, out.String(), "captured #1: -23.547271, -46.651813")

	require.NoError(t, s.Exec(ctx, "copy"))
	require.Len(t, clip.writes, 1)

	var fc geo.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal([]byte(clip.writes[0]), &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, geo.FeatureProperties{Name: "Gate A", Type: "entrada", Accessible: true}, fc.Features[0].Properties)
	assert.Equal(t, []float64{-46.651813, -23.547271}, fc.Features[0].Geometry.Coordinates)
}

func TestSessionCaptureFailure(t *testing.T) {
	s, out, _ := newSession(fixedLocator{err: &locate.Error{Code: locate.PositionUnavailable, Message: "no fix"}})

	require.NoError(t, s.Exec(context.Background(), "add"))
	s.Wait()

	assert.Contains(t, out.String(), "Erro ao obter localização: no fix")
	assert.Equal(t, 0, s.collector.Store().Len())
}

func TestSessionWithoutSource(t *testing.T) {
	s, out, _ := newSession(nil)

	require.NoError(t, s.Exec(context.Background(), "add"))
	s.Wait()
	assert.Contains(t, out.String(), "não suporta geolocalização")
}

func TestSessionFormSnapshot(t *testing.T) {
	s, _, _ := newSession(fixedLocator{pos: locate.Position{Latitude: 1, Longitude: 1}})
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "name first"))
	require.NoError(t, s.Exec(ctx, "add"))
	require.NoError(t, s.Exec(ctx, "name second"))
	require.NoError(t, s.Exec(ctx, "add"))
	s.Wait()

	names := []string{}
	for _, p := range s.collector.Store().Read() {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"first", "second"}, names)
}

func TestSessionCommands(t *testing.T) {
	s, out, _ := newSession(nil)
	ctx := context.Background()

	assert.Error(t, s.Exec(ctx, "accessible maybe"))
	assert.Error(t, s.Exec(ctx, "fly"))
	assert.Error(t, s.Exec(ctx, "show x"))
	assert.Error(t, s.Exec(ctx, "show 1"))
	assert.Error(t, s.Exec(ctx, "export kml"))
	assert.ErrorIs(t, s.Exec(ctx, "quit"), ErrQuit)
	assert.NoError(t, s.Exec(ctx, "   "))

	require.NoError(t, s.Exec(ctx, "form"))
	assert.Contains(t, out.String(), "Nome: Sem nome")
	assert.Contains(t, out.String(), "Acessível: Não")

	require.NoError(t, s.Exec(ctx, "list"))
	assert.Contains(t, out.String(), "Nenhum ponto coletado.")

	require.NoError(t, s.Exec(ctx, "help"))
	assert.Contains(t, out.String(), "rota, entrada, rota+entrada")
}

func TestSessionListShowExport(t *testing.T) {
	s, out, _ := newSession(nil)
	ctx := context.Background()
	s.collector.Store().Append(geo.GeoPoint{Lat: 1, Lng: 2, Name: "a"})
	s.collector.Store().Append(geo.GeoPoint{Lat: 3, Lng: 4, Name: "b"})

	require.NoError(t, s.Exec(ctx, "list"))
	assert.Contains(t, out.String(), "#2")

	require.NoError(t, s.Exec(ctx, "show 2"))
	assert.Contains(t, out.String(), `"name": "b"`)

	require.NoError(t, s.Exec(ctx, "export yaml"))
	assert.Contains(t, out.String(), "type: FeatureCollection")

	path := filepath.Join(t.TempDir(), "points.geojson")
	require.NoError(t, s.Exec(ctx, "export json "+path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fc geo.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Len(t, fc.Features, 2)
}

func TestSessionRun(t *testing.T) {
	s, out, _ := newSession(fixedLocator{pos: locate.Position{Latitude: 5, Longitude: 6}})

	in := strings.NewReader("name x\nadd\nquit\nadd\n")
	require.NoError(t, s.Run(context.Background(), in))

	assert.Equal(t, 1, s.collector.Store().Len(), "commands after quit are ignored")
	assert.Contains(t, out.String(), "captured #1")
}
