package splithttp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tanq16/splitfetch/internal/utils"
)

// normalizeJob clips the worker and reconnect counts to at least one.
func normalizeJob(job utils.DownloadJob) utils.DownloadJob {
	if job.Connections <= 0 {
		job.Connections = 1
	}
	if job.Reconnects <= 0 {
		job.Reconnects = 1
	}
	return job
}

func validateJob(job utils.DownloadJob) error {
	parsedURL, err := url.Parse(job.URL)
	if err != nil {
		return &NetworkError{URL: job.URL, Reason: "invalid URL", Err: err}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &NetworkError{URL: job.URL, Reason: fmt.Sprintf("unsupported scheme %q", parsedURL.Scheme)}
	}
	if job.OutputPath == "" {
		return &FilesystemError{Op: "validate job", Path: job.OutputPath, Err: fmt.Errorf("output path is empty")}
	}
	return nil
}

func isRedirect(status int) bool {
	return status == http.StatusMovedPermanently || status == http.StatusFound
}

// redirectTarget resolves a Location header against the request URL. It
// returns "" when there is nothing usable to follow.
func redirectTarget(base *url.URL, location string) string {
	if location == "" {
		return ""
	}
	next, err := base.Parse(location)
	if err != nil {
		return ""
	}
	return next.String()
}

// getWithReconnects issues a GET and retries on 301/302 at most reconnects
// more times, without delay. A redirect moves the next attempt to its
// Location; one without a Location repeats the current URL. Any other status
// is returned to the caller with the body open.
func getWithReconnects(ctx context.Context, client utils.HTTPDoer, link string, reconnects int, prepare func(*http.Request)) (*http.Response, error) {
	log := utils.GetLogger("reconnect")
	reconnects = max(reconnects, 0)
	target := link
	for attempt := 0; attempt <= reconnects; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, &NetworkError{URL: target, Attempts: attempt + 1, Reason: "error creating request", Err: err}
		}
		if prepare != nil {
			prepare(req)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, &NetworkError{URL: target, Attempts: attempt + 1, Reason: "connection failed", Err: err}
		}
		if !isRedirect(resp.StatusCode) {
			return resp, nil
		}
		resp.Body.Close()
		if next := redirectTarget(req.URL, resp.Header.Get("Location")); next != "" {
			target = next
		}
		log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt+1).Int("reconnects", reconnects).Str("next", target).Msg("Redirect response, reconnecting")
	}
	host := link
	if parsed, err := url.Parse(link); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	return nil, &NetworkError{URL: link, Attempts: reconnects + 1, Reason: fmt.Sprintf("host %s not responding", host)}
}

// ProbeSize returns the declared content length of link.
func ProbeSize(ctx context.Context, client utils.HTTPDoer, link string, reconnects int) (int64, error) {
	log := utils.GetLogger("probe")
	resp, err := getWithReconnects(ctx, client, link, reconnects, nil)
	if err != nil {
		return 0, &SizeError{URL: link, Reason: "unable to obtain content length", Err: err}
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, &SizeError{URL: link, StatusCode: resp.StatusCode, Reason: "server rejected size request"}
	}
	size := resp.ContentLength
	if size <= 0 {
		return 0, &SizeError{URL: link, Size: size, Reason: "declared content length is less than 1 byte"}
	}
	log.Debug().Str("url", link).Int64("size", size).Msg("Resource size determined")
	return size, nil
}
