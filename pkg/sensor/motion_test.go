package sensor

import (
	"errors"
	"testing"
)

func TestMotion_Observe(t *testing.T) {
	tests := []struct {
		name    string
		delta   float64
		samples []float64
		want    []bool
	}{
		{
			name:    "first sample never signals",
			delta:   5.0,
			samples: []float64{100},
			want:    []bool{false},
		},
		{
			name:    "big jump after baseline",
			delta:   5.0,
			samples: []float64{100, 40},
			want:    []bool{false, true},
		},
		{
			name:    "change below threshold is ignored",
			delta:   5.0,
			samples: []float64{100, 96, 100},
			want:    []bool{false, false, false},
		},
		{
			name:    "exactly delta is not motion",
			delta:   5.0,
			samples: []float64{100, 95},
			want:    []bool{false, false},
		},
		{
			name:    "compares against immediately preceding sample only",
			delta:   5.0,
			samples: []float64{100, 97, 94, 91},
			want:    []bool{false, false, false, false},
		},
		{
			name:    "each big transition reported once",
			delta:   5.0,
			samples: []float64{100, 40, 40, 100},
			want:    []bool{false, true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMotion(tt.delta)
			for i, s := range tt.samples {
				if got := m.Observe(s); got != tt.want[i] {
					t.Errorf("Observe(%v) [sample %d] = %v, want %v", s, i, got, tt.want[i])
				}
			}
		})
	}
}

func TestMotion_ResetClearsBaseline(t *testing.T) {
	m := NewMotion(5.0)
	m.Observe(100)
	m.Reset()
	if m.Observe(10) {
		t.Error("first sample after Reset() signaled motion")
	}
	if !m.Observe(100) {
		t.Error("second sample after Reset() should signal motion again")
	}
}

func TestLight_FailSafeNotDark(t *testing.T) {
	io := &fakeIO{readFn: func(int) (bool, error) { return true, errors.New("read failed") }}
	s := NewLight(io, 22)
	if s.IsDark() {
		t.Error("IsDark() = true on read fault, want fail-safe false")
	}
}

func TestLight_Reads(t *testing.T) {
	level := true
	io := &fakeIO{readFn: func(int) (bool, error) { return level, nil }}
	s := NewLight(io, 22)

	if !s.IsDark() {
		t.Error("IsDark() = false with line high, want true")
	}
	level = false
	if s.IsDark() {
		t.Error("IsDark() = true with line low, want false")
	}
}
