package utils

import (
	"time"
)

const DefaultBufferSize = 1024 // 1KB read chunk per worker
const DefaultConnectTimeout = 10 * time.Second
const TempDirName = ".splitfetch-temp"

// Fixed parameters of the root download job
const (
	DefaultSourceURL  = "https://speedtest.selectel.ru/1GB"
	DefaultOutputPath = "ParallelDownloader/test"
	DefaultReconnects = 5
)

const DefaultUserAgent = "Mozilla/5.0 (Linux; arm_64; Android 5.1; m3 note) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.128 YaBrowser/21.3.3.153.00 SA/3 Mobile Safari/537.36"

// Local-only User-Agent list
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:136.0) Gecko/20100101 Firefox/136.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	DefaultUserAgent,
	"curl/7.88.1",
	"Wget/1.21.4",
}
