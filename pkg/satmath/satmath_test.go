package satmath

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{-5, 3, -2},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MaxInt64, math.MaxInt64, math.MaxInt64},
		{math.MinInt64, -1, math.MinInt64},
		{math.MinInt64, math.MinInt64, math.MinInt64},
		{math.MaxInt64, math.MinInt64, -1},
		{math.MaxInt64 - 1, 1, math.MaxInt64},
	}

	for _, c := range cases {
		if got := Add(c.a, c.b); got != c.want {
			t.Errorf("Add(%d, %d): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}

func TestSub(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{3, 2, 1},
		{-5, 3, -8},
		{math.MinInt64, 1, math.MinInt64},
		{math.MaxInt64, -1, math.MaxInt64},
		{0, math.MinInt64, math.MaxInt64},
		{-1, math.MinInt64, math.MaxInt64},
		{math.MinInt64, math.MinInt64, 0},
		{math.MaxInt64, math.MaxInt64, 0},
	}

	for _, c := range cases {
		if got := Sub(c.a, c.b); got != c.want {
			t.Errorf("Sub(%d, %d): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}

func TestMul(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{0, math.MinInt64, 0},
		{7, 6, 42},
		{-7, 6, -42},
		{-1, math.MinInt64, math.MaxInt64},
		{math.MinInt64, -1, math.MaxInt64},
		{math.MinInt64, 1, math.MinInt64},
		{math.MaxInt64, 2, math.MaxInt64},
		{math.MaxInt64, -2, math.MinInt64},
		{math.MinInt64, 2, math.MinInt64},
		{math.MinInt64, -2, math.MaxInt64},
		{1 << 32, 1 << 31, math.MaxInt64},
		{1 << 31, 1 << 31, 1 << 62},
		{1 << 32, 1 << 32, math.MaxInt64},
		{-(1 << 32), 1 << 31, math.MinInt64},
	}

	for _, c := range cases {
		if got := Mul(c.a, c.b); got != c.want {
			t.Errorf("Mul(%d, %d): expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}

func TestAbs(t *testing.T) {
	if got := Abs(math.MinInt64); got != 1<<63 {
		t.Errorf("Expected 1<<63, got %d", got)
	}
	if got := Abs(-42); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := Abs(math.MaxInt64); got != math.MaxInt64 {
		t.Errorf("Expected MaxInt64, got %d", got)
	}
}

func TestConversions(t *testing.T) {
	if got := MillisToMicros(1500); got != 1500000 {
		t.Errorf("Expected 1500000, got %d", got)
	}
	if got := SecondsToMicros(-3); got != -3000000 {
		t.Errorf("Expected -3000000, got %d", got)
	}
	if got := SecondsToMicros(math.MaxInt64 / 10); got != math.MaxInt64 {
		t.Errorf("Expected saturation at MaxInt64, got %d", got)
	}
	if got := MillisToMicros(math.MinInt64 / 10); got != math.MinInt64 {
		t.Errorf("Expected saturation at MinInt64, got %d", got)
	}
	if !Saturated(math.MaxInt64) || !Saturated(math.MinInt64) || Saturated(0) {
		t.Error("Saturated reported wrong boundary membership")
	}
}
