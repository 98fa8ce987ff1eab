package splithttp

import (
	"bytes"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tanq16/splitfetch/internal/utils"
)

type rangeServer struct {
	*httptest.Server
	requests      atomic.Int64
	rangeRequests atomic.Int64
}

// newRangeServer serves data with range support. fail, when set, can take
// over a request before the content is served and reports whether it did.
func newRangeServer(t *testing.T, data []byte, fail func(w http.ResponseWriter, r *http.Request) bool) *rangeServer {
	t.Helper()
	srv := &rangeServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.requests.Add(1)
		if r.Header.Get("Range") != "" {
			srv.rangeRequests.Add(1)
		}
		if fail != nil && fail(w, r) {
			return
		}
		http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func randomBytes(n int) []byte {
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(rng.IntN(256))
	}
	return data
}

func testClient() *utils.SplitfetchHTTPClient {
	return utils.NewSplitfetchHTTPClient(utils.HTTPClientConfig{UserAgent: "splitfetch-test"})
}
