package payee

import (
	"context"
	"errors"
	"time"

	"bowerbird/core"
	"bowerbird/pkg/kv"

	"github.com/fox-one/pkg/logger"
	"github.com/gofrs/uuid"
)

const limit = 500

// Payee settles queued inbound transfers, one transaction per output.
// Every transfer runs with the sender's witness only; the receiving
// contract's hook decides what the payment means.
type Payee struct {
	store    *kv.Store
	outputs  core.OutputStore
	registry core.TokenRegistry
}

// New new payee worker
func New(store *kv.Store, outputs core.OutputStore, registry core.TokenRegistry) *Payee {
	return &Payee{
		store:    store,
		outputs:  outputs,
		registry: registry,
	}
}

// Run run worker
func (w *Payee) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "payee")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = 500 * time.Millisecond
			}
		}
	}
}

func (w *Payee) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	checkpoint, err := w.outputs.Checkpoint(ctx, w.store.View())
	if err != nil {
		log.WithError(err).Errorln("outputs.Checkpoint")
		return err
	}

	outputs, err := w.outputs.ListAfter(ctx, w.store.View(), checkpoint, limit)
	if err != nil {
		log.WithError(err).Errorln("outputs.ListAfter")
		return err
	}

	if len(outputs) <= 0 {
		return errors.New("no more outputs")
	}

	for _, output := range outputs {
		w.handleOutput(ctx, output)

		if err := w.advance(ctx, output.ID); err != nil {
			log.WithError(err).Errorln("outputs.SetCheckpoint:", output.ID)
			return err
		}
	}

	return nil
}

// handleOutput executes one settlement in its own transaction. A fatal
// abort discards every write the settlement made; the output is consumed
// either way.
func (w *Payee) handleOutput(ctx context.Context, output *core.Output) {
	log := logger.FromContext(ctx).WithField("output", output.TraceID)
	ctx = logger.WithContext(ctx, log)

	if _, err := uuid.FromString(output.TraceID); err != nil {
		log.Errorln("payee: skip output with malformed trace id")
		return
	}

	token, ok := w.registry.Token(output.Asset)
	if !ok {
		log.Errorln("payee: skip output for unknown asset")
		return
	}

	var data *core.TransferData
	if output.Memo != "" {
		var err error
		data, err = core.DecodeMemo(output.Memo)
		if err != nil {
			log.WithError(err).Errorln("payee: skip output with undecodable memo")
			return
		}
	}

	tx, err := w.store.Begin()
	if err != nil {
		log.WithError(err).Errorln("store.Begin")
		return
	}
	defer tx.Discard()

	ctx = core.WithWitness(ctx, output.Sender)
	ok, err = token.Transfer(ctx, tx, output.Sender, output.Receiver, output.Amount, data)
	if err != nil {
		log.WithError(err).Errorln("payee: settlement aborted")
		return
	}
	if !ok {
		log.Errorln("payee: transfer rejected")
		return
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Errorln("tx.Commit")
	}
}

// advance moves the checkpoint past output id in its own transaction, so
// an aborted settlement is not retried forever.
func (w *Payee) advance(ctx context.Context, id uint64) error {
	tx, err := w.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err := w.outputs.SetCheckpoint(ctx, tx, id); err != nil {
		return err
	}

	return tx.Commit()
}
