package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 450.0, RoundCents(3000*0.15))
	assert.Equal(t, 0.1, RoundCents(0.1))
	assert.Equal(t, 1234.57, RoundCents(1234.567))
	assert.Equal(t, -12.34, RoundCents(-12.344))
	assert.Equal(t, 0.0, RoundCents(0))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "USD 1,234.56", Format(1234.56, "USD"))
	assert.Equal(t, "USD 999.00", Format(999, "USD"))
	assert.Equal(t, "EUR 1,000,000.50", Format(1000000.5, "EUR"))
	assert.Equal(t, "-USD 42.10", Format(-42.1, "USD"))
	assert.Equal(t, "USD 0.99", FormatUSD(0.99))
}
