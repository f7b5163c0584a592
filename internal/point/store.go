// Package point holds the captured points of a session and the capture flow
// that produces them.
package point

import (
	"sync"

	"github.com/woozymasta/geocollect/internal/geo"
)

// Store is the ordered, append-only sequence of captured points.
// Insertion order is display order and export order.
type Store struct {
	points []geo.GeoPoint
	mu     sync.RWMutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds p to the end of the sequence and returns the new length.
func (s *Store) Append(p geo.GeoPoint) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, p)
	return len(s.points)
}

// Read returns a snapshot of the whole sequence. The slice is never nil and
// belongs to the caller.
func (s *Store) Read() []geo.GeoPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]geo.GeoPoint, len(s.points))
	copy(out, s.points)
	return out
}

// At returns the point at index i.
func (s *Store) At(i int) (geo.GeoPoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.points) {
		return geo.GeoPoint{}, false
	}
	return s.points[i], true
}

// Len returns the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.points)
}
