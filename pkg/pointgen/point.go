// Package pointgen generates random 3D point data and delivers it to append-only sinks.
package pointgen

// Point is a single generated sample in 3D space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sink receives generated points in order.
// Implementations own every point passed to Append.
type Sink interface {
	Append(p Point) error
}

// SinkFunc adapts a plain function to the Sink interface
type SinkFunc func(p Point) error

// Append calls f(p)
func (f SinkFunc) Append(p Point) error {
	return f(p)
}

// ListModel is an in-memory, insertion-ordered point collection.
// It is not safe for concurrent use.
type ListModel struct {
	points []Point
}

// NewListModel creates a model with room for capacity points
func NewListModel(capacity int) *ListModel {
	if capacity < 0 {
		capacity = 0
	}
	return &ListModel{points: make([]Point, 0, capacity)}
}

// Append adds p to the end of the model. It never fails.
func (m *ListModel) Append(p Point) error {
	m.points = append(m.points, p)
	return nil
}

// Len returns the number of points in the model
func (m *ListModel) Len() int {
	return len(m.points)
}

// At returns the i-th appended point
func (m *ListModel) At(i int) Point {
	return m.points[i]
}

// Points returns a copy of all points in insertion order
func (m *ListModel) Points() []Point {
	out := make([]Point, len(m.points))
	copy(out, m.points)
	return out
}

// Reset drops all points but keeps the allocated capacity
func (m *ListModel) Reset() {
	m.points = m.points[:0]
}
