package mid

import (
	"context"
	"expvar"
	"net/http"
	"runtime"

	"github.com/ardanlabs/powledger/foundation/web"
)

// Set of expvar values published on the debug mux under /debug/vars.
var (
	metricGoroutines = expvar.NewInt("goroutines")
	metricRequests   = expvar.NewInt("requests")
	metricErrors     = expvar.NewInt("errors")
	metricPanics     = expvar.NewInt("panics")
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the request and goroutines counter.
			metricRequests.Add(1)

			// Sample the goroutine count every 100 requests.
			if metricRequests.Value()%100 == 0 {
				metricGoroutines.Set(int64(runtime.NumGoroutine()))
			}

			// Increment if there is an error flowing through the request.
			if err != nil {
				metricErrors.Add(1)
			}

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
