// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting for events from the blockchain or ticker.
	for {
		select {
		case evt, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Status returns the lifecycle status of the node and the shape of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Status:     h.State.RetrieveStatus().String(),
		Height:     h.State.QueryChainHeight(),
		Pending:    h.State.QueryMempoolLength(),
		LatestHash: h.State.RetrieveLatestBlock().Hash,
		Difficulty: h.State.RetrieveGenesis().Difficulty,
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Blocks returns every block in the chain in order.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveChain()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByNumber returns the block at the number provided in the path.
func (h Handlers) BlockByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	number, err := strconv.ParseUint(web.Param(r, "number"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block number: %w", err), http.StatusBadRequest)
	}

	blk, err := h.State.QueryBlock(number)
	if err != nil {
		return trusted(err)
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// ValidateChain re-checks every block in the chain.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Valid:  true,
		Height: h.State.QueryChainHeight(),
	}

	if err := h.State.ValidateChain(); err != nil {
		if !errors.Is(err, state.ErrChainInvalid) {
			return trusted(err)
		}

		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.State.RetrieveMempool()), http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", web.GetTraceID(ctx), "from", ntx.From, "to", ntx.To, "value", ntx.Value)

	dbTx := database.NewTx(ntx.From, ntx.To, ntx.Value)
	if err := h.State.SubmitTransaction(dbTx); err != nil {
		return trusted(err)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to mempool",
		Pending: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Mine mines the pending transactions into a new block and waits for the
// proof of work to complete. Dropping the request cancels the search.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	t := time.Now()

	blk, err := h.State.MinePendingTransactions(ctx)
	if err != nil {
		return trusted(err)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "block", blk.Header.Number, "hash", blk.Hash, "duration", time.Since(t))

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// SignalMining asks the mining worker to mine the pending transactions in
// the background. The result is reported on the events stream.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("mining worker not running"), http.StatusServiceUnavailable)
	}

	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// =============================================================================

// trusted maps the blockchain errors a client can act on to a status code.
// Anything else is left untrusted and reported as an internal error.
func trusted(err error) error {
	switch {
	case errors.Is(err, state.ErrMiningInProgress),
		errors.Is(err, state.ErrNotInitialized),
		errors.Is(err, state.ErrAlreadyInitialized):
		return errs.NewTrusted(err, http.StatusConflict)

	case errors.Is(err, database.ErrNotFound):
		return errs.NewTrusted(err, http.StatusNotFound)

	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return errs.NewTrusted(err, http.StatusServiceUnavailable)
	}

	return err
}
