package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 0.8, Round(4.5-3.7, 2))
	assert.Equal(t, 40.0, Round(39.96, 1))
	assert.Equal(t, 0.906, Round(0.90554, 3))
	assert.Equal(t, -2.5, Round(-2.45, 1))
}

func TestDescribe(t *testing.T) {
	d := Describe([]float64{1, 2, 2, 3, 5})

	assert.Equal(t, 5, d.N)
	assert.Equal(t, 2.6, d.Mean)
	assert.Equal(t, 1.36, d.SD)
	assert.Equal(t, 2.0, d.Median)
	assert.Equal(t, 0.75, d.Skewness)
	assert.Equal(t, -0.636, d.Kurtosis)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
}

func TestDescribe_EvenMedian(t *testing.T) {
	assert.Equal(t, 2.5, Describe([]float64{4, 1, 3, 2}).Median)
}

func TestDescribe_Guards(t *testing.T) {
	assert.Equal(t, Descriptive{}, Describe(nil))

	two := Describe([]float64{1, 5})
	assert.Zero(t, two.Skewness, "skewness needs three values")
	assert.Zero(t, two.Kurtosis, "kurtosis needs four values")

	three := Describe([]float64{1, 2, 6})
	assert.NotZero(t, three.Skewness)
	assert.Zero(t, three.Kurtosis)

	flat := Describe([]float64{3, 3, 3, 3, 3})
	assert.Zero(t, flat.SD)
	assert.Zero(t, flat.Skewness)
	assert.Zero(t, flat.Kurtosis)
	assert.Equal(t, 3.0, flat.Mean)
}
