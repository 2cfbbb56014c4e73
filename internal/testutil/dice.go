// Package testutil provides shared fakes for package tests.
package testutil

import "sync"

// SequenceSource is a dice.Source that yields scripted die faces.
//
// Each call to Intn(n) consumes the next face f and returns f-1, clamped to
// [0, n). When the script is exhausted it starts again from the beginning.
type SequenceSource struct {
	mu    sync.Mutex
	faces []int
	next  int
	calls int
}

// NewSequenceSource returns a source replaying faces in order.
//
// Precondition: len(faces) > 0.
func NewSequenceSource(faces ...int) *SequenceSource {
	if len(faces) == 0 {
		panic("testutil: NewSequenceSource requires at least one face")
	}
	return &SequenceSource{faces: faces}
}

// Intn returns the next scripted face minus one, clamped to [0, n).
func (s *SequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.faces[s.next%len(s.faces)]
	s.next++
	s.calls++
	v := f - 1
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Calls reports how many values have been drawn.
func (s *SequenceSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
