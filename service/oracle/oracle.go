package oracle

import (
	"context"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"
	"bowerbird/pkg/resthttp"

	"github.com/fox-one/msgpack"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
)

type service struct {
	priceURL   string
	requests   core.OracleRequestStore
	properties core.PropertyStore
}

// New new oracle request registrar. Requests are settled later by the
// oracle worker.
func New(priceURL string, requests core.OracleRequestStore, properties core.PropertyStore) core.OracleService {
	return &service{
		priceURL:   priceURL,
		requests:   requests,
		properties: properties,
	}
}

func (s *service) Request(ctx context.Context, h kv.Handle, callback string, payload interface{}) (*core.OracleRequest, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}

	fee, err := s.properties.GetUint64(ctx, h, core.PropertyOracleFee)
	if err != nil {
		return nil, err
	}
	if fee == 0 {
		fee = core.DefaultOracleFee
	}

	req := &core.OracleRequest{
		ID:        uuid.New(),
		URL:       s.priceURL,
		Callback:  callback,
		Payload:   raw,
		Fee:       fee,
		CreatedAt: time.Now(),
	}

	if err := s.requests.Create(ctx, h, req); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("callback", callback).Debugln("oracle: price request registered")
	return req, nil
}

// PriceClient pulls signed price reports from the feed.
type PriceClient struct {
	Threshold int
}

// Pull fetches one report from url.
func (c *PriceClient) Pull(ctx context.Context, url string) (*core.PriceReport, error) {
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var report core.PriceReport
	if err := resthttp.ParseResponse(resp, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

// Verify checks the report's aggregate signature against the registered
// reporter set. An empty set accepts unsigned reports, for local runs.
func (c *PriceClient) Verify(ctx context.Context, report *core.PriceReport, oracleSigners []*core.OracleSigner) bool {
	if len(oracleSigners) == 0 {
		return true
	}

	signers, err := core.ParseSigners(oracleSigners)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("oracle: bad reporter key")
		return false
	}

	threshold := c.Threshold
	if threshold <= 0 {
		threshold = len(signers)
	}

	return report.Verify(signers, threshold)
}
