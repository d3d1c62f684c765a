package core

import (
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pandodao/blst"
	"github.com/shopspring/decimal"
)

// priceDecimals matches fixpoint.PriceMultiplier.
const priceDecimals = 6

type (
	// Signer is one oracle reporter with its position in the signature
	// mask.
	Signer struct {
		Index     uint64          `json:"index,omitempty"`
		VerifyKey *blst.PublicKey `json:"verify_key,omitempty"`
	}

	// CosiSignature is an aggregated threshold signature; Mask records
	// which reporters co-signed.
	CosiSignature struct {
		Mask      uint64 `json:"mask"`
		Signature string `json:"signature"`
	}

	// PriceReport is one feed response: decimal spot prices by symbol,
	// optionally co-signed by the reporter set.
	PriceReport struct {
		Prices    map[string]decimal.Decimal `json:"prices"`
		Timestamp int64                      `json:"timestamp"`
		Signature *CosiSignature             `json:"signature,omitempty"`
	}
)

// Payload is the byte string the reporters sign: symbols in lexical
// order, each with its decimal price, plus the timestamp.
func (r *PriceReport) Payload() []byte {
	symbols := make([]string, 0, len(r.Prices))
	for symbol := range r.Prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	payload := make(map[string]interface{}, 2)
	prices := make([][2]string, 0, len(symbols))
	for _, symbol := range symbols {
		prices = append(prices, [2]string{symbol, r.Prices[symbol].String()})
	}
	payload["prices"] = prices
	payload["timestamp"] = r.Timestamp

	b, _ := json.Marshal(payload)
	return b
}

// Verify reports whether at least threshold reporters co-signed this
// report.
func (r *PriceReport) Verify(signers []*Signer, threshold int) bool {
	if r.Signature == nil {
		return false
	}

	raw, err := base64.StdEncoding.DecodeString(r.Signature.Signature)
	if err != nil {
		return false
	}

	sig := blst.Signature{}
	if err := sig.FromBytes(raw); err != nil {
		return false
	}

	var pubs []*blst.PublicKey
	for _, signer := range signers {
		if r.Signature.Mask&(0x1<<signer.Index) != 0 {
			pubs = append(pubs, signer.VerifyKey)
		}
	}

	return len(pubs) >= threshold &&
		blst.AggregatePublicKeys(pubs).Verify(r.Payload(), &sig)
}

// ParseSigners decodes the stored reporter keys into verifiable signers,
// indexed 1..n in store order.
func ParseSigners(stored []*OracleSigner) ([]*Signer, error) {
	signers := make([]*Signer, len(stored))
	for idx, s := range stored {
		pub := blst.PublicKey{}
		if err := pub.FromBytes(s.PublicKey); err != nil {
			return nil, err
		}

		signers[idx] = &Signer{
			Index:     uint64(idx) + 1,
			VerifyKey: &pub,
		}
	}

	return signers, nil
}

// PriceMap converts the decimal prices to the integer oracle scale,
// flooring.
func (r *PriceReport) PriceMap() (PriceMap, error) {
	prices := make(PriceMap, len(r.Prices))
	for symbol, price := range r.Prices {
		if price.Sign() < 0 {
			return nil, ErrBadOracleResponse
		}

		scaled, err := uint256.FromDecimal(price.Shift(priceDecimals).Truncate(0).String())
		if err != nil {
			return nil, ErrBadOracleResponse
		}

		prices[symbol] = scaled
	}

	return prices, nil
}
