// Package risk maps a numeric risk score to a severity tier and the gauge
// geometry used to draw it.
package risk

import (
	"math"
	"strings"
)

type Tier string

const (
	Low    Tier = "low"
	Medium Tier = "medium"
	High   Tier = "high"
)

const (
	MediumThreshold = 30
	HighThreshold   = 70

	GaugeRadius = 60
)

var tierColors = map[Tier]string{
	High:   "#ef4444",
	Medium: "#facc15",
	Low:    "#4ade80",
}

var tierRank = map[Tier]int{
	Low:    0,
	Medium: 1,
	High:   2,
}

// Classify returns the tier for score. Out-of-range scores fall into the
// nearest tier.
func Classify(score int) Tier {
	switch {
	case score >= HighThreshold:
		return High
	case score >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// Color returns the display color of the tier.
func (t Tier) Color() string {
	if c, ok := tierColors[t]; ok {
		return c
	}
	return tierColors[Low]
}

// AtLeast reports whether t is as severe as other.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier accepts a tier name case-insensitively.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := tierRank[t]
	return t, ok
}

// Clamp bounds score to [0,100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Gauge is the circular meter drawn for a score: a stroke of length
// Circumference offset by DashOffset leaves Fill of the ring visible.
type Gauge struct {
	Score         int     `json:"score" yaml:"score"`
	Tier          Tier    `json:"tier" yaml:"tier"`
	Color         string  `json:"color" yaml:"color"`
	Fill          float64 `json:"fill" yaml:"fill"`
	Radius        float64 `json:"radius" yaml:"radius"`
	Circumference float64 `json:"circumference" yaml:"circumference"`
	DashOffset    float64 `json:"dash_offset" yaml:"dash_offset"`
}

func NewGauge(score int) Gauge {
	score = Clamp(score)
	tier := Classify(score)
	fill := float64(score) / 100
	c := 2 * math.Pi * GaugeRadius
	return Gauge{
		Score:         score,
		Tier:          tier,
		Color:         tier.Color(),
		Fill:          fill,
		Radius:        GaugeRadius,
		Circumference: c,
		DashOffset:    c - fill*c,
	}
}
