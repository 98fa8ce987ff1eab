package utils

import "net/http"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DownloadJob describes one split download. It is not modified once the
// download has started.
type DownloadJob struct {
	URL              string
	OutputPath       string
	Connections      int
	Reconnects       int
	HTTPClientConfig HTTPClientConfig
	ProgressFunc     func(downloaded, total int64)
}

type DownloadEntry struct {
	OutputPath  string `yaml:"op"`
	URL         string `yaml:"link"`
	Connections int    `yaml:"connections,omitempty"`
	Reconnects  int    `yaml:"reconnects,omitempty"`
	Token       string `yaml:"token,omitempty"`
}
