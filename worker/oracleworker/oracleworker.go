package oracleworker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"
	"bowerbird/service/oracle"

	"github.com/fox-one/pkg/logger"
)

const limit = 100

// Oracle settles pending price requests: it pulls one report from the
// feed, verifies the reporter signatures and delivers the callback under
// the oracle identity's witness.
type Oracle struct {
	store    *kv.Store
	requests core.OracleRequestStore
	signers  core.OracleSignerStore
	client   *oracle.PriceClient
	vault    core.VaultService
	oracleID core.Address
}

// New new oracle worker
func New(
	store *kv.Store,
	requests core.OracleRequestStore,
	signers core.OracleSignerStore,
	client *oracle.PriceClient,
	vault core.VaultService,
	oracleID core.Address,
) *Oracle {
	return &Oracle{
		store:    store,
		requests: requests,
		signers:  signers,
		client:   client,
		vault:    vault,
		oracleID: oracleID,
	}
}

// Run run worker
func (w *Oracle) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "oracle")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 500 * time.Millisecond
			} else {
				dur = time.Second
			}
		}
	}
}

func (w *Oracle) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	requests, err := w.requests.List(ctx, w.store.View(), limit)
	if err != nil {
		log.WithError(err).Errorln("requests.List")
		return err
	}

	if len(requests) <= 0 {
		return errors.New("no pending requests")
	}

	for _, req := range requests {
		if err := w.handleRequest(ctx, req); err != nil {
			return err
		}
	}

	return nil
}

func (w *Oracle) handleRequest(ctx context.Context, req *core.OracleRequest) error {
	log := logger.FromContext(ctx).WithField("request", req.ID).WithField("callback", req.Callback)
	ctx = logger.WithContext(ctx, log)

	resp := &core.OracleResponse{
		RequestID: req.ID,
		URL:       req.URL,
		Payload:   req.Payload,
	}

	report, err := w.client.Pull(ctx, req.URL)
	if err != nil {
		log.WithError(err).Errorln("oracle: feed pull failed")
		resp.Code = 1
	} else {
		stored, err := w.signers.FindAll(ctx, w.store.View())
		if err != nil {
			return err
		}

		if !w.client.Verify(ctx, report, stored) {
			// an unverifiable report is retried, not delivered
			log.Errorln("oracle: report signature rejected")
			return errors.New("report signature rejected")
		}

		body, err := renderBody(report)
		if err != nil {
			log.WithError(err).Errorln("oracle: report render failed")
			resp.Code = 1
		} else {
			resp.Body = body
		}
	}

	w.deliver(ctx, req.Callback, resp)

	return w.consume(ctx, req.ID)
}

// deliver dispatches the response in its own transaction. A fatal abort
// discards the callback's writes; business failures inside the callback
// commit their failure events.
func (w *Oracle) deliver(ctx context.Context, callback string, resp *core.OracleResponse) {
	log := logger.FromContext(ctx)

	tx, err := w.store.Begin()
	if err != nil {
		log.WithError(err).Errorln("store.Begin")
		return
	}
	defer tx.Discard()

	ctx = core.WithWitness(ctx, w.oracleID)

	var callbackErr error
	switch callback {
	case core.CallbackLoan:
		callbackErr = w.vault.LoanCallback(ctx, tx, resp)
	case core.CallbackWithdraw:
		callbackErr = w.vault.WithdrawCollateralCallback(ctx, tx, resp)
	case core.CallbackLiquidate:
		callbackErr = w.vault.LiquidateCallback(ctx, tx, resp)
	default:
		log.Errorln("oracle: unknown callback", callback)
		return
	}

	if callbackErr != nil {
		log.WithError(callbackErr).Errorln("oracle: callback aborted")
		return
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Errorln("tx.Commit")
	}
}

// consume removes the request so it is settled exactly once.
func (w *Oracle) consume(ctx context.Context, id string) error {
	tx, err := w.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err := w.requests.Delete(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func renderBody(report *core.PriceReport) ([]byte, error) {
	prices, err := report.PriceMap()
	if err != nil {
		return nil, err
	}

	body := make(map[string]json.Number, len(prices))
	for symbol, price := range prices {
		body[symbol] = json.Number(price.Dec())
	}

	return json.Marshal(body)
}
