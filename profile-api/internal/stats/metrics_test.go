package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		want     float64
	}{
		{"regular", 10, 4, 2.5},
		{"zero denominator", 10, 0, 0},
		{"zero over zero", 0, 0, 0},
		{"infinite numerator", math.Inf(1), 2, 0},
		{"nan numerator", math.NaN(), 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeDiv(tt.num, tt.den))
		})
	}
}

func TestPercentageIsBounded(t *testing.T) {
	assert.Equal(t, 25.0, Percentage(25, 100))
	assert.Equal(t, 0.0, Percentage(25, 0))
	assert.Equal(t, 100.0, Percentage(150, 100))
	assert.Equal(t, 0.0, Percentage(-5, 100))
}

func TestSexRatio(t *testing.T) {
	assert.Equal(t, 110.0, SexRatio(110, 100))
	assert.Equal(t, 0.0, SexRatio(50, 0))
	assert.False(t, math.IsNaN(SexRatio(0, 0)))
}

func TestAverageHouseholdSize(t *testing.T) {
	assert.Equal(t, 5.0, AverageHouseholdSize(100, 20))
	assert.Equal(t, 0.0, AverageHouseholdSize(100, 0))
}

func TestCoveragePercentage(t *testing.T) {
	assert.Equal(t, 75.0, CoveragePercentage(75, 25))
	assert.Equal(t, 0.0, CoveragePercentage(0, 0))
	assert.Equal(t, 100.0, CoveragePercentage(10, 0))
}

func TestSimpsonIndex(t *testing.T) {
	t.Run("known distribution", func(t *testing.T) {
		assert.InDelta(t, 0.62, SimpsonIndex([]float64{50, 30, 20}), 1e-9)
	})
	t.Run("four equal categories", func(t *testing.T) {
		assert.InDelta(t, 0.75, SimpsonIndex([]float64{25, 25, 25, 25}), 1e-9)
	})
	t.Run("single category holding everything", func(t *testing.T) {
		assert.Equal(t, 0.0, SimpsonIndex([]float64{40}))
		assert.Equal(t, 0.0, SimpsonIndex([]float64{40, 0, 0}))
	})
	t.Run("empty and all zero", func(t *testing.T) {
		assert.Equal(t, 0.0, SimpsonIndex(nil))
		assert.Equal(t, 0.0, SimpsonIndex([]float64{0, 0}))
	})
	t.Run("stays below one", func(t *testing.T) {
		many := make([]float64, 500)
		for i := range many {
			many[i] = 1
		}
		d := SimpsonIndex(many)
		assert.GreaterOrEqual(t, d, 0.0)
		assert.Less(t, d, 1.0)
	})
}

func TestDependencyRatio(t *testing.T) {
	assert.InDelta(t, 50.0, DependencyRatio([]float64{50, 30, 20}), 1e-9)
	assert.Equal(t, 100.0, DependencyRatio([]float64{7}))
	assert.Equal(t, 0.0, DependencyRatio(nil))
}

func TestCompositeScore(t *testing.T) {
	t.Run("three categories", func(t *testing.T) {
		// 0.62*40 + 50*0.3 + 15 + 10 = 64.8
		assert.Equal(t, 65.0, CompositeScore(0.62, 50, 3))
	})
	t.Run("many categories are clamped to 100", func(t *testing.T) {
		mags := make([]float64, 20)
		for i := range mags {
			mags[i] = 5
		}
		score := CompositeScore(SimpsonIndex(mags), DependencyRatio(mags), len(mags))
		assert.Equal(t, 100.0, score)
	})
	t.Run("single dominant category", func(t *testing.T) {
		// 0 + 0 + 5 + 10
		assert.Equal(t, 15.0, CompositeScore(0, 100, 1))
	})
	t.Run("no categories scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CompositeScore(0, 0, 0))
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, 5.45, Round(600.0/110.0, 2))
	assert.Equal(t, 3.0, Round(2.5, 0))
}
