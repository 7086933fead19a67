package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDecimal(t *testing.T) {
	assert.Equal(t, int64(29), FromDecimal(0.29))
	assert.Equal(t, int64(10000), FromDecimal(100))
	assert.Equal(t, int64(1999), FromDecimal(19.99))
	assert.Equal(t, int64(13), FromDecimal(0.125))
	assert.Equal(t, int64(0), FromDecimal(0))
}

func TestToDecimalAndFormat(t *testing.T) {
	assert.Equal(t, 123.45, ToDecimal(12345))
	assert.Equal(t, "123.45", Format(12345))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "200.00", Format(20000))
	assert.Equal(t, "-1.50", Format(-150))
}

func TestMul(t *testing.T) {
	assert.Equal(t, int64(600), Mul(200, 3))
}
