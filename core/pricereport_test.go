package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportPayloadIsDeterministic(t *testing.T) {
	a := &PriceReport{
		Prices: map[string]decimal.Decimal{
			"bNEO": decimal.RequireFromString("10.25"),
			"USDL": decimal.RequireFromString("1"),
		},
		Timestamp: 1700000000,
	}
	b := &PriceReport{
		Prices: map[string]decimal.Decimal{
			"USDL": decimal.RequireFromString("1"),
			"bNEO": decimal.RequireFromString("10.25"),
		},
		Timestamp: 1700000000,
	}

	assert.Equal(t, a.Payload(), b.Payload())
}

func TestReportVerifyRejectsUnsigned(t *testing.T) {
	report := &PriceReport{
		Prices:    map[string]decimal.Decimal{"USDL": decimal.RequireFromString("1")},
		Timestamp: 1700000000,
	}

	signers := []*Signer{{Index: 1}}
	assert.False(t, report.Verify(signers, 1))

	report.Signature = &CosiSignature{Mask: 1, Signature: "not base64 !!"}
	assert.False(t, report.Verify(signers, 1))
}

func TestReportPriceMap(t *testing.T) {
	report := &PriceReport{
		Prices: map[string]decimal.Decimal{
			"USDL": decimal.RequireFromString("1"),
			"bNEO": decimal.RequireFromString("10.257001"),
		},
	}

	prices, err := report.PriceMap()
	require.NoError(t, err)

	p, ok := prices.Price("USDL")
	require.True(t, ok)
	assert.Equal(t, "1000000", p.Dec())

	p, ok = prices.Price("bNEO")
	require.True(t, ok)
	assert.Equal(t, "10257001", p.Dec())
}

func TestReportPriceMapRejectsNegative(t *testing.T) {
	report := &PriceReport{
		Prices: map[string]decimal.Decimal{"USDL": decimal.RequireFromString("-1")},
	}

	_, err := report.PriceMap()
	assert.Equal(t, ErrBadOracleResponse, err)
}
