package splithttp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tanq16/splitfetch/internal/utils"
)

// RunState is owned by the orchestrator. Each worker writes only its own
// slot in Outcomes.
type RunState struct {
	TotalSize int64
	Outcomes  []WorkerOutcome
	TempDir   string
}

func (s *RunState) Failed() []int {
	var failed []int
	for i, outcome := range s.Outcomes {
		if !outcome.Completed {
			failed = append(failed, i)
		}
	}
	return failed
}

type Result struct {
	OutputPath  string
	TotalSize   int64
	Connections int
	Elapsed     time.Duration
}

type Downloader struct {
	client utils.HTTPDoer
}

func NewDownloader(client utils.HTTPDoer) *Downloader {
	return &Downloader{client: client}
}

// Download runs job with a client built from its HTTP config.
func Download(ctx context.Context, job utils.DownloadJob) (*Result, error) {
	cfg := job.HTTPClientConfig
	cfg.HighThreadMode = job.Connections > 5
	return NewDownloader(utils.NewSplitfetchHTTPClient(cfg)).Download(ctx, job)
}

func (d *Downloader) Download(ctx context.Context, job utils.DownloadJob) (*Result, error) {
	log := utils.GetLogger("orchestrator")
	startTime := time.Now()
	job = normalizeJob(job)
	if err := validateJob(job); err != nil {
		return nil, err
	}

	size, err := ProbeSize(ctx, d.client, job.URL, job.Reconnects)
	if err != nil {
		return nil, err
	}
	ranges, err := PlanRanges(size, job.Connections)
	if err != nil {
		return nil, err
	}
	dest, err := reserveOutputPath(job.OutputPath)
	if err != nil {
		return nil, err
	}
	succeeded := false
	defer func() {
		dest.release(succeeded)
	}()
	state := &RunState{
		TotalSize: size,
		Outcomes:  make([]WorkerOutcome, len(ranges)),
		TempDir:   utils.NewRunTempDir(job.URL, job.OutputPath),
	}
	if err := os.MkdirAll(state.TempDir, 0755); err != nil {
		return nil, &FilesystemError{Op: "create temp directory", Path: state.TempDir, Err: err}
	}
	log.Info().Str("url", job.URL).Str("output", job.OutputPath).Int64("size", size).Int("connections", job.Connections).Msg("Starting split download")

	progress := &ProgressCounter{}
	stopProgress := startProgressReporter(job.ProgressFunc, progress, size, progressInterval)
	worker := &rangeWorker{
		client:     d.client,
		url:        job.URL,
		reconnects: job.Reconnects,
		totalSize:  size,
		progress:   progress,
	}
	segments := make([]Segment, len(ranges))
	var wg sync.WaitGroup
	for i, r := range ranges {
		segments[i] = Segment{
			Range: r,
			Path:  filepath.Join(state.TempDir, utils.SegmentFileName(job.OutputPath, r.Index)),
		}
		wg.Add(1)
		go worker.chunkedDownload(ctx, &segments[i], &state.Outcomes[i], &wg)
	}
	wg.Wait()
	stopProgress()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download of %s aborted: %w", job.URL, err)
	}
	if failed := state.Failed(); len(failed) > 0 {
		log.Warn().Ints("chunkIds", failed).Msg("Some ranges failed, assembly will not proceed")
	}
	if err := assembleFile(segments, dest, state.TempDir, size); err != nil {
		return nil, err
	}
	result := &Result{
		OutputPath:  job.OutputPath,
		TotalSize:   size,
		Connections: job.Connections,
		Elapsed:     time.Since(startTime),
	}
	succeeded = true
	log.Info().Str("output", job.OutputPath).Dur("elapsed", result.Elapsed).Msg("Split download completed")
	return result, nil
}

var (
	reservedMu sync.Mutex
	reserved   = map[string]struct{}{}
)

// destination is an output path held by one run until release.
type destination struct {
	path    string
	key     string
	created bool // the file did not exist before this run
}

// reserveOutputPath creates the parent directories and claims outputPath for
// this run. A missing destination is created exclusively; an existing empty
// file is accepted unless another run in this process holds it.
func reserveOutputPath(outputPath string) (*destination, error) {
	parent := filepath.Dir(outputPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, &FilesystemError{Op: "create directory", Path: parent, Err: err}
	}
	key := outputPath
	if abs, err := filepath.Abs(outputPath); err == nil {
		key = abs
	}
	reservedMu.Lock()
	defer reservedMu.Unlock()
	if _, busy := reserved[key]; busy {
		return nil, &FilesystemError{Op: "create file", Path: outputPath, Err: fs.ErrExist}
	}
	dest := &destination{path: outputPath, key: key}
	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	switch {
	case err == nil:
		f.Close()
		dest.created = true
	case errors.Is(err, fs.ErrExist):
		info, statErr := os.Stat(outputPath)
		if statErr != nil {
			return nil, &FilesystemError{Op: "create file", Path: outputPath, Err: statErr}
		}
		if info.IsDir() || info.Size() > 0 {
			return nil, &FilesystemError{Op: "create file", Path: outputPath, Err: fs.ErrExist}
		}
	default:
		return nil, &FilesystemError{Op: "create file", Path: outputPath, Err: err}
	}
	reserved[key] = struct{}{}
	return dest, nil
}

// discard puts the destination back the way the run found it.
func (d *destination) discard() error {
	if d.created {
		err := os.Remove(d.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.Truncate(d.path, 0)
}

func (d *destination) release(succeeded bool) {
	if !succeeded {
		if err := d.discard(); err != nil {
			log := utils.GetLogger("orchestrator")
			log.Warn().Err(err).Str("output", d.path).Msg("Could not discard destination")
		}
	}
	reservedMu.Lock()
	delete(reserved, d.key)
	reservedMu.Unlock()
}
