package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{-5, Low},
		{0, Low},
		{29, Low},
		{30, Medium},
		{69, Medium},
		{70, High},
		{100, High},
		{150, High},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
	}
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "#ef4444", High.Color())
	assert.Equal(t, "#facc15", Medium.Color())
	assert.Equal(t, "#4ade80", Low.Color())
	assert.Equal(t, "#4ade80", Tier("bogus").Color())
}

func TestTierOrdering(t *testing.T) {
	assert.True(t, High.AtLeast(Medium))
	assert.True(t, Medium.AtLeast(Medium))
	assert.False(t, Low.AtLeast(High))

	tier, ok := ParseTier(" HIGH ")
	assert.True(t, ok)
	assert.Equal(t, High, tier)

	_, ok = ParseTier("critical")
	assert.False(t, ok)
}

func TestNewGauge(t *testing.T) {
	circumference := 2 * math.Pi * 60

	tests := []struct {
		name       string
		score      int
		wantScore  int
		wantFill   float64
		wantOffset float64
	}{
		{name: "empty", score: 0, wantScore: 0, wantFill: 0, wantOffset: circumference},
		{name: "quarter", score: 25, wantScore: 25, wantFill: 0.25, wantOffset: circumference * 0.75},
		{name: "full", score: 100, wantScore: 100, wantFill: 1, wantOffset: 0},
		{name: "clamped high", score: 140, wantScore: 100, wantFill: 1, wantOffset: 0},
		{name: "clamped low", score: -20, wantScore: 0, wantFill: 0, wantOffset: circumference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGauge(tt.score)
			assert.Equal(t, tt.wantScore, g.Score)
			assert.InDelta(t, tt.wantFill, g.Fill, 1e-9)
			assert.InDelta(t, circumference, g.Circumference, 1e-9)
			assert.InDelta(t, tt.wantOffset, g.DashOffset, 1e-9)
			assert.Equal(t, Classify(g.Score).Color(), g.Color)
		})
	}
}

func TestTierAndGaugeAcrossFullRange(t *testing.T) {
	prevFill := -1.0
	for s := 0; s <= 100; s++ {
		want := Low
		switch {
		case s >= 70:
			want = High
		case s >= 30:
			want = Medium
		}

		tier := Classify(s)
		assert.Equal(t, want, tier, "score %d", s)
		assert.Equal(t, tier, Classify(s), "score %d must classify the same way twice", s)

		g := NewGauge(s)
		assert.Equal(t, NewGauge(s), g, "score %d", s)
		assert.Equal(t, float64(s)/100, g.Fill, "score %d", s)
		assert.GreaterOrEqual(t, g.Fill, prevFill, "fill must not decrease at score %d", s)
		assert.Equal(t, want, g.Tier, "score %d", s)
		assert.Equal(t, want.Color(), g.Color, "score %d", s)
		prevFill = g.Fill
	}
}
