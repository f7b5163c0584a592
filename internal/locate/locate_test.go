package locate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rmcValid = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
	rmcVoid  = "$GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*7D"
	ggaValid = "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"
	ggaNoFix = "$GPGGA,123520,2332.836,S,04639.109,W,0,00,,,M,,M,,*58"
)

func TestReported(t *testing.T) {
	ctx := context.Background()

	p, err := Reported{Position: &Position{Latitude: -23.5, Longitude: -46.6}}.CurrentPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: -23.5, Longitude: -46.6}, p)

	_, err = Reported{Err: &Error{Code: PermissionDenied, Message: "User denied Geolocation"}}.CurrentPosition(ctx)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, PermissionDenied, lerr.Code)
	assert.Equal(t, "User denied Geolocation", err.Error())

	_, err = Reported{}.CurrentPosition(ctx)
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, PositionUnavailable, lerr.Code)
}

func TestErrorFallsBackToCodeName(t *testing.T) {
	assert.Equal(t, "timeout", (&Error{Code: Timeout}).Error())
	assert.Equal(t, "unknown", ErrorCode(42).String())
}

func TestParseSentence(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
	}{
		{name: "valid rmc", line: rmcValid, ok: true},
		{name: "valid gga", line: ggaValid, ok: true},
		{name: "void rmc", line: rmcVoid},
		{name: "gga without fix", line: ggaNoFix},
		{name: "bad checksum", line: strings.Replace(rmcValid, "*6A", "*00", 1)},
		{name: "garbage", line: "$hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := parseSentence(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, 48.1173, p.Latitude, 1e-9)
				assert.InDelta(t, 11.516666667, p.Longitude, 1e-8)
			}
		})
	}
}

func TestNMEARun(t *testing.T) {
	input := strings.Join([]string{rmcVoid, "noise", rmcValid, ""}, "\r\n")
	n := NewNMEA(strings.NewReader(input), time.Minute)

	require.NoError(t, n.Run())

	// the cached fix is still fresh, but the receiver is gone
	_, err := n.CurrentPosition(context.Background())
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, PositionUnavailable, lerr.Code)
}

func TestHubServesFreshFix(t *testing.T) {
	h := newHub(time.Minute)
	h.publish(Position{Latitude: 1, Longitude: 2})

	p, err := h.next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: 1, Longitude: 2}, p)
}

func TestHubWaitsWhenStale(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	h := newHub(time.Second)
	h.now = func() time.Time { return now }
	h.publish(Position{Latitude: 1, Longitude: 1})
	now = now.Add(time.Hour)

	var (
		wg  sync.WaitGroup
		got Position
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err = h.next(context.Background())
	}()

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.waiters) == 1
	}, time.Second, time.Millisecond)

	h.publish(Position{Latitude: 3, Longitude: 4})
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: 3, Longitude: 4}, got)
}

func TestHubTimeout(t *testing.T) {
	h := newHub(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.next(ctx)
	var lerr *Error
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, Timeout, lerr.Code)
	assert.Empty(t, h.waiters)
}

func TestHubFailWakesWaiters(t *testing.T) {
	h := newHub(0)
	done := make(chan error, 1)
	go func() {
		_, err := h.next(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.waiters) == 1
	}, time.Second, time.Millisecond)

	gone := errors.New("gone")
	h.fail(gone)
	assert.ErrorIs(t, <-done, gone)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestMQTTHandle(t *testing.T) {
	m := newMQTT("inertial/gps", time.Minute)

	m.handle(nil, fakeMessage{topic: m.topic, payload: []byte(`not json`)})
	m.handle(nil, fakeMessage{topic: m.topic, payload: []byte(`{"lat":1,"lon":2,"validity":"V"}`)})
	assert.False(t, m.hub.have)

	m.handle(nil, fakeMessage{topic: m.topic, payload: []byte(`{"lat":-23.5472712345,"lon":-46.6518134567,"validity":"A"}`)})

	p, err := m.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Position{Latitude: -23.5472712345, Longitude: -46.6518134567}, p)
	assert.NoError(t, m.Close())
}

func TestOpen(t *testing.T) {
	src, err := Open(Options{Source: SourceBrowser})
	require.NoError(t, err)
	assert.Nil(t, src)

	_, err = Open(Options{Source: "wifi"})
	assert.Error(t, err)
}
