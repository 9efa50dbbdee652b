package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type nodeTest struct {
	app   http.Handler
	debug http.Handler
	state *state.State
	evts  *events.Events
}

func newNodeTest(t *testing.T, withGenesis bool) *nodeTest {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{Genesis: gen})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	if withGenesis {
		if _, err := st.CreateGenesisBlock(context.Background()); err != nil {
			t.Fatalf("Should be able to create the genesis block: %v", err)
		}
	}

	w := worker.Run(st, nil)
	t.Cleanup(w.Shutdown)

	log := zap.NewNop().Sugar()

	evts := events.New()

	app, err := handlers.PublicMux(handlers.MuxConfig{
		Build:    "test",
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		Evts:     evts,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the public mux: %v", err)
	}

	return &nodeTest{
		app:   app,
		debug: handlers.DebugMux("test", log, st),
		state: st,
		evts:  evts,
	}
}

func (nt *nodeTest) do(method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	w := httptest.NewRecorder()
	nt.app.ServeHTTP(w, r)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("Should be able to decode the response %q: %v", w.Body.String(), err)
	}
}

// =============================================================================

func Test_EndToEnd(t *testing.T) {
	nt := newNodeTest(t, true)

	t.Log("Given the need to run the ledger through the web api.")
	{
		for _, body := range []string{`{"from":"A","to":"B","value":10}`, `{"from":"B","to":"C","value":5}`} {
			w := nt.do(http.MethodPost, "/v1/tx/submit", body)
			if w.Code != http.StatusAccepted {
				t.Fatalf("\t%s\tShould be able to submit %s: %d %s", failed, body, w.Code, w.Body.String())
			}
		}
		t.Logf("\t%s\tShould be able to submit two transactions.", success)

		var pending []struct {
			From    string `json:"from"`
			Summary string `json:"summary"`
		}
		decode(t, nt.do(http.MethodGet, "/v1/tx/pending", ""), &pending)
		if len(pending) != 2 || pending[0].Summary != "A ➡ B: $10" {
			t.Fatalf("\t%s\tShould see both transactions pending in order: %+v", failed, pending)
		}
		t.Logf("\t%s\tShould see both transactions pending in order.", success)

		w := nt.do(http.MethodPost, "/v1/mining/mine", "")
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine: %d %s", failed, w.Code, w.Body.String())
		}

		var blk struct {
			Number        uint64 `json:"number"`
			PrevBlockHash string `json:"prev_block_hash"`
			Hash          string `json:"hash"`
			Transactions  []struct {
				Value int64 `json:"value"`
			} `json:"txs"`
		}
		decode(t, w, &blk)
		if blk.Number != 1 || len(blk.Transactions) != 2 || !strings.HasPrefix(blk.Hash, "0x0") {
			t.Fatalf("\t%s\tShould get back a solved block 1 with two transactions: %+v", failed, blk)
		}
		t.Logf("\t%s\tShould get back a solved block 1 with two transactions.", success)

		var genBlk struct {
			Hash string `json:"hash"`
		}
		decode(t, nt.do(http.MethodGet, "/v1/blocks/0", ""), &genBlk)
		if blk.PrevBlockHash != genBlk.Hash {
			t.Fatalf("\t%s\tShould link block 1 to the genesis block.", failed)
		}
		t.Logf("\t%s\tShould link block 1 to the genesis block.", success)

		var st struct {
			Status  string `json:"status"`
			Height  int    `json:"height"`
			Pending int    `json:"pending"`
		}
		decode(t, nt.do(http.MethodGet, "/v1/status", ""), &st)
		if st.Height != 2 || st.Pending != 0 || st.Status != state.StatusReady.String() {
			t.Fatalf("\t%s\tShould have two blocks and an empty pool: %+v", failed, st)
		}
		t.Logf("\t%s\tShould have two blocks and an empty pool.", success)

		var blocks []json.RawMessage
		decode(t, nt.do(http.MethodGet, "/v1/blocks/list", ""), &blocks)
		if len(blocks) != 2 {
			t.Fatalf("\t%s\tShould list two blocks, got %d.", failed, len(blocks))
		}
		t.Logf("\t%s\tShould list two blocks.", success)

		var val struct {
			Valid bool `json:"valid"`
		}
		decode(t, nt.do(http.MethodGet, "/v1/blocks/validate", ""), &val)
		if !val.Valid {
			t.Fatalf("\t%s\tShould validate the chain.", failed)
		}
		t.Logf("\t%s\tShould validate the chain.", success)
	}
}

func Test_Errors(t *testing.T) {
	type table struct {
		name    string
		genesis bool
		method  string
		path    string
		body    string
		status  int
	}

	tt := []table{
		{name: "missing-from", genesis: true, method: http.MethodPost, path: "/v1/tx/submit", body: `{"to":"B","value":1}`, status: http.StatusBadRequest},
		{name: "same-account", genesis: true, method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":"A","to":"A","value":1}`, status: http.StatusBadRequest},
		{name: "unknown-field", genesis: true, method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":"A","to":"B","tip":1}`, status: http.StatusBadRequest},
		{name: "bad-json", genesis: true, method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":`, status: http.StatusBadRequest},
		{name: "no-genesis-submit", genesis: false, method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":"A","to":"B","value":1}`, status: http.StatusConflict},
		{name: "no-genesis-mine", genesis: false, method: http.MethodPost, path: "/v1/mining/mine", status: http.StatusConflict},
		{name: "no-genesis-validate", genesis: false, method: http.MethodGet, path: "/v1/blocks/validate", status: http.StatusConflict},
		{name: "missing-block", genesis: true, method: http.MethodGet, path: "/v1/blocks/7", status: http.StatusNotFound},
		{name: "bad-number", genesis: true, method: http.MethodGet, path: "/v1/blocks/abc", status: http.StatusBadRequest},
	}

	t.Log("Given the need to report client errors with the right status.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				nt := newNodeTest(t, tst.genesis)

				w := nt.do(tst.method, tst.path, tst.body)
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d: %s", failed, testID, tst.status, w.Code, w.Body.String())
				}
				t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)

				var resp errs.Response
				decode(t, w, &resp)
				if resp.Error == "" {
					t.Fatalf("\t%s\tTest %d:\tShould get back an error message.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back an error message.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_SignalMining(t *testing.T) {
	nt := newNodeTest(t, true)

	if w := nt.do(http.MethodPost, "/v1/tx/submit", `{"from":"A","to":"B","value":10}`); w.Code != http.StatusAccepted {
		t.Fatalf("Should be able to submit a transaction: %d", w.Code)
	}

	if w := nt.do(http.MethodPost, "/v1/mining/signal", ""); w.Code != http.StatusAccepted {
		t.Fatalf("Should be able to signal mining: %d", w.Code)
	}

	deadline := time.Now().Add(10 * time.Second)
	for nt.state.QueryChainHeight() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Should see the worker mine block 1.")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if nt.state.QueryMempoolLength() != 0 {
		t.Fatalf("Should have drained the mempool.")
	}
}

func Test_Debug(t *testing.T) {
	nt := newNodeTest(t, false)

	r := httptest.NewRequest(http.MethodGet, "/debug/readiness", nil)
	w := httptest.NewRecorder()
	nt.debug.ServeHTTP(w, r)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Should not be ready without a genesis block: %d", w.Code)
	}

	if _, err := nt.state.CreateGenesisBlock(context.Background()); err != nil {
		t.Fatalf("Should be able to create the genesis block: %v", err)
	}

	w = httptest.NewRecorder()
	nt.debug.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be ready with a genesis block: %d", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/debug/liveness", nil)
	w = httptest.NewRecorder()
	nt.debug.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("Should be alive: %d", w.Code)
	}
}

func Test_Viewer(t *testing.T) {
	nt := newNodeTest(t, true)

	w := nt.do(http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Should be able to load the viewer: %d", w.Code)
	}

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Should serve html, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "/v1/events") || !strings.Contains(body, "<small>test</small>") {
		t.Fatalf("Should render the viewer page for the build.")
	}
}

func Test_Events(t *testing.T) {
	nt := newNodeTest(t, true)

	srv := httptest.NewServer(nt.app)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Should be able to open the events stream: %v", err)
	}
	defer conn.Close()

	// The handler registers for events after the upgrade completes.
	deadline := time.Now().Add(5 * time.Second)
	for nt.evts.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Should see the websocket register for events.")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sent := nt.evts.Send("block mined: blk[1]")

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got events.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("Should be able to read an event: %v", err)
	}

	if got.ID != sent.ID || got.Seq != sent.Seq || got.Message != "block mined: blk[1]" {
		t.Fatalf("Should receive the event sent, got %+v", got)
	}
}
