package splithttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/splitfetch/internal/utils"
)

func TestProbeSize(t *testing.T) {
	headers := make(chan http.Header, 1)
	srv := newRangeServer(t, randomBytes(1024), func(w http.ResponseWriter, r *http.Request) bool {
		headers <- r.Header.Clone()
		return false
	})

	size, err := ProbeSize(context.Background(), testClient(), srv.URL, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)
	got := <-headers
	assert.Equal(t, "splitfetch-test", got.Get("User-Agent"))
	assert.Equal(t, "UTF-8", got.Get("Accept-Charset"))
	assert.Equal(t, int64(1), srv.requests.Load())
}

func TestProbeSizeEmptyResource(t *testing.T) {
	srv := newRangeServer(t, []byte{}, nil)

	_, err := ProbeSize(context.Background(), testClient(), srv.URL, 3)
	var sizeErr *SizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, srv.URL, sizeErr.URL)
}

func TestProbeSizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := ProbeSize(context.Background(), testClient(), srv.URL, 3)
	var sizeErr *SizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, http.StatusNotFound, sizeErr.StatusCode)
}

func TestProbeSizeRedirectBudget(t *testing.T) {
	tests := []struct {
		name         string
		reconnects   int
		wantRequests int64
	}{
		{name: "zero reconnects means one attempt", reconnects: 0, wantRequests: 1},
		{name: "two reconnects means three attempts", reconnects: 2, wantRequests: 3},
		{name: "negative treated as zero", reconnects: -4, wantRequests: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(http.StatusFound)
			}))
			defer srv.Close()

			_, err := ProbeSize(context.Background(), testClient(), srv.URL, tt.reconnects)
			require.Error(t, err)
			var sizeErr *SizeError
			assert.True(t, errors.As(err, &sizeErr))
			var netErr *NetworkError
			require.True(t, errors.As(err, &netErr))
			assert.Equal(t, int(tt.wantRequests), netErr.Attempts)
			assert.Contains(t, netErr.Error(), "not responding")
			assert.Equal(t, tt.wantRequests, requests.Load())
		})
	}
}

func TestProbeSizeFollowsLocation(t *testing.T) {
	data := randomBytes(2048)
	var redirects atomic.Int64
	srv := newRangeServer(t, data, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/old" {
			redirects.Add(1)
			w.Header().Set("Location", "/new")
			w.WriteHeader(http.StatusMovedPermanently)
			return true
		}
		return false
	})

	size, err := ProbeSize(context.Background(), testClient(), srv.URL+"/old", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.Equal(t, int64(1), redirects.Load())
}

func TestProbeSizeConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	link := srv.URL
	srv.Close()

	_, err := ProbeSize(context.Background(), testClient(), link, 2)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, 1, netErr.Attempts)
}

func TestNormalizeJob(t *testing.T) {
	job := normalizeJob(utils.DownloadJob{Connections: -2, Reconnects: 0})
	assert.Equal(t, 1, job.Connections)
	assert.Equal(t, 1, job.Reconnects)

	job = normalizeJob(utils.DownloadJob{Connections: 8, Reconnects: 5})
	assert.Equal(t, 8, job.Connections)
	assert.Equal(t, 5, job.Reconnects)
}

func TestValidateJob(t *testing.T) {
	var netErr *NetworkError
	err := validateJob(utils.DownloadJob{URL: "ftp://example.com/file", OutputPath: "out"})
	assert.True(t, errors.As(err, &netErr))

	var fsErr *FilesystemError
	err = validateJob(utils.DownloadJob{URL: "https://example.com/file"})
	assert.True(t, errors.As(err, &fsErr))

	assert.NoError(t, validateJob(utils.DownloadJob{URL: "https://example.com/file", OutputPath: "out"}))
}

func TestRedirectTarget(t *testing.T) {
	base, err := url.Parse("http://example.com/a/b")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/c", redirectTarget(base, "/c"))
	assert.Equal(t, "http://example.com/a/d", redirectTarget(base, "d"))
	assert.Equal(t, "https://mirror.example.org/x", redirectTarget(base, "https://mirror.example.org/x"))
	assert.Equal(t, "", redirectTarget(base, ""))
}
