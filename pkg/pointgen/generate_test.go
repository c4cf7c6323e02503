package pointgen

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateAppendCount(t *testing.T) {
	for _, n := range []int{0, 1, 5, 1000} {
		model := NewListModel(n)
		if err := Generate(model, n, NewRand(42)); err != nil {
			t.Fatalf("Generate(%d) failed: %v", n, err)
		}
		if model.Len() != n {
			t.Errorf("Generate(%d) appended %d points, want %d", n, model.Len(), n)
		}
	}
}

func TestGenerateRange(t *testing.T) {
	model := NewListModel(0)
	if err := Generate(model, 10000, NewRand(7)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, p := range model.Points() {
		for _, v := range []float64{p.X, p.Y, p.Z} {
			if v < 0 || v >= 1 {
				t.Fatalf("point %d = %+v has coordinate outside [0, 1)", i, p)
			}
		}
	}
}

func TestGenerateNegativeCount(t *testing.T) {
	calls := 0
	sink := SinkFunc(func(Point) error {
		calls++
		return nil
	})

	if err := Generate(sink, -3, NewRand(1)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("Generate(-3) appended %d points, want 0", calls)
	}
}

func TestGenerateTwiceAccumulates(t *testing.T) {
	model := NewListModel(0)
	r := NewRand(99)

	for i := 0; i < 2; i++ {
		if err := Generate(model, 5, r); err != nil {
			t.Fatalf("Generate call %d failed: %v", i, err)
		}
	}

	if model.Len() != 10 {
		t.Fatalf("got %d points, want 10", model.Len())
	}
	// Same source continues its sequence, so the second batch differs
	if model.At(0) == model.At(5) {
		t.Errorf("second call repeated the first call's points")
	}
}

func TestGenerateSeededIsReproducible(t *testing.T) {
	a := NewListModel(0)
	b := NewListModel(0)

	if err := Generate(a, 100, NewRand(2024)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := Generate(b, 100, NewRand(2024)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("point %d differs: %+v vs %+v", i, a.At(i), b.At(i))
		}
	}

	c := NewListModel(0)
	if err := Generate(c, 100, NewRand(2025)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if c.At(0) == a.At(0) {
		t.Errorf("different seeds produced the same first point")
	}
}

func TestGenerateNilRand(t *testing.T) {
	model := NewListModel(0)
	if err := Generate(model, 3, nil); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if model.Len() != 3 {
		t.Errorf("got %d points, want 3", model.Len())
	}
}

func TestGenerateSinkError(t *testing.T) {
	errFull := errors.New("sink full")
	calls := 0
	sink := SinkFunc(func(Point) error {
		calls++
		if calls == 3 {
			return errFull
		}
		return nil
	})

	err := Generate(sink, 10, NewRand(1))
	if !errors.Is(err, errFull) {
		t.Fatalf("got error %v, want %v", err, errFull)
	}
	if calls != 3 {
		t.Errorf("got %d append calls, want generation to stop at 3", calls)
	}
}

func TestGenerateNilSink(t *testing.T) {
	if err := Generate(nil, 1, NewRand(1)); !errors.Is(err, ErrNilSink) {
		t.Errorf("got error %v, want ErrNilSink", err)
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		in      float64
		want    int
		wantErr bool
	}{
		{in: 0, want: 0},
		{in: 5, want: 5},
		{in: 2.9, want: 2},
		{in: 0.5, want: 0},
		{in: -1, want: 0},
		{in: -0.5, want: 0},
		{in: math.NaN(), wantErr: true},
		{in: math.Inf(1), wantErr: true},
		{in: math.Inf(-1), wantErr: true},
		{in: 1e300, wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeCount(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCount) {
				t.Errorf("NormalizeCount(%v) error = %v, want ErrInvalidCount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeCount(%v) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCount(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "10", want: 10},
		{in: " 7 ", want: 7},
		{in: "-4", want: 0},
		{in: "3.7", want: 3},
		{in: "1e3", want: 1000},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCount(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCount) {
				t.Errorf("ParseCount(%q) error = %v, want ErrInvalidCount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCount(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestListModel(t *testing.T) {
	m := NewListModel(-1)
	m.Append(Point{X: 1})
	m.Append(Point{X: 2})

	pts := m.Points()
	pts[0].X = 100
	if m.At(0).X != 1 {
		t.Errorf("Points should return a copy")
	}

	m.Reset()
	if m.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", m.Len())
	}
}
