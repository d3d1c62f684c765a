package core

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrices(t *testing.T) {
	prices, err := ParsePrices([]byte(`{"USDL":1000000,"bNEO":10250000}`))
	require.NoError(t, err)

	p, ok := prices.Price("USDL")
	require.True(t, ok)
	assert.Equal(t, "1000000", p.Dec())

	p, ok = prices.Price("bNEO")
	require.True(t, ok)
	assert.Equal(t, "10250000", p.Dec())

	_, ok = prices.Price("GAS")
	assert.False(t, ok)
}

func TestParsePricesRejectsBadBody(t *testing.T) {
	_, err := ParsePrices([]byte(`not json`))
	assert.Equal(t, ErrBadOracleResponse, err)

	_, err = ParsePrices([]byte(`{"USDL":-5}`))
	assert.Equal(t, ErrBadOracleResponse, err)

	_, err = ParsePrices([]byte(`{"USDL":1.5}`))
	assert.Equal(t, ErrBadOracleResponse, err)
}

func TestQuantityBytesRoundTrip(t *testing.T) {
	q := uint256.MustFromDecimal("69999966704734253869262793912")
	assert.Equal(t, q.Dec(), QuantityFromBytes(QuantityBytes(q)).Dec())

	// zero travels as an empty byte string
	assert.True(t, QuantityFromBytes(QuantityBytes(uint256.NewInt(0))).IsZero())
}
