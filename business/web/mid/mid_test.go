package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/business/web/mid"
	"github.com/ardanlabs/powledger/foundation/validate"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newApp() *web.App {
	log := zap.NewNop().Sugar()
	shutdown := make(chan os.Signal, 1)
	return web.NewApp(shutdown, mid.Logger(log), mid.Errors(log), mid.Metrics(), mid.Panics(), mid.Cors("*"))
}

func Test_Errors(t *testing.T) {
	type table struct {
		name    string
		handler web.Handler
		status  int
		message string
		field   string
	}

	tt := []table{
		{
			name: "trusted",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return errs.NewTrusted(errors.New("mining in progress"), http.StatusConflict)
			},
			status:  http.StatusConflict,
			message: "mining in progress",
		},
		{
			name: "fields",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return validate.FieldErrors{{Field: "from", Err: "from is a required field"}}
			},
			status:  http.StatusBadRequest,
			message: "data validation error",
			field:   "from",
		},
		{
			name: "untrusted",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				return errors.New("database password leaked here")
			},
			status:  http.StatusInternalServerError,
			message: http.StatusText(http.StatusInternalServerError),
		},
		{
			name: "panic",
			handler: func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				panic("boom")
			},
			status:  http.StatusInternalServerError,
			message: http.StatusText(http.StatusInternalServerError),
		},
	}

	t.Log("Given the need to respond to handler errors in a uniform way.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				app := newApp()
				app.Handle(http.MethodGet, "v1", "/test", tst.handler)

				r := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
				w := httptest.NewRecorder()
				app.ServeHTTP(w, r)

				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %v", failed, testID, err)
				}

				if resp.Error != tst.message {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, resp.Error)
					t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.message)
					t.Fatalf("\t%s\tTest %d:\tShould get back the expected message.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the expected message.", success, testID)

				if tst.field != "" {
					if _, exists := resp.Fields[tst.field]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould get back the %q field.", failed, testID, tst.field)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the %q field.", success, testID, tst.field)
				}

				if w.Header().Get("Access-Control-Allow-Origin") != "*" {
					t.Fatalf("\t%s\tTest %d:\tShould set the CORS origin header.", failed, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
