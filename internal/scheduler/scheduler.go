package scheduler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	splithttp "github.com/tanq16/splitfetch/internal/downloaders/http"
	"github.com/tanq16/splitfetch/internal/downloaders/s3"
	"github.com/tanq16/splitfetch/internal/output"
	"github.com/tanq16/splitfetch/internal/utils"
)

type Options struct {
	Parallel  int       // jobs downloading at the same time
	S3Profile string    // AWS profile used to presign s3:// links
	Progress  io.Writer // progress lines go here when set
}

type JobResult struct {
	Job    utils.DownloadJob
	Result *splithttp.Result
	Err    error
}

// Run downloads every job, at most opts.Parallel at once. Jobs are
// independent: a failure is recorded in its JobResult and never stops the
// others.
func Run(ctx context.Context, jobs []utils.DownloadJob, opts Options) []JobResult {
	log := utils.GetLogger("scheduler")
	log.Info().Int("totalJobs", len(jobs)).Int("parallel", max(opts.Parallel, 1)).Msg("Initiating downloads")
	results := make([]JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(max(opts.Parallel, 1))
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = runJob(ctx, job, opts)
			return nil
		})
	}
	g.Wait()
	return results
}

func runJob(ctx context.Context, job utils.DownloadJob, opts Options) JobResult {
	log := utils.GetLogger("scheduler").With().Str("output", job.OutputPath).Logger()
	source := job.URL
	resolved, err := s3.ResolveURL(ctx, job.URL, opts.S3Profile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve source")
		return JobResult{Job: job, Err: fmt.Errorf("error resolving %s: %w", source, err)}
	}
	job.URL = resolved
	if opts.Progress != nil && job.ProgressFunc == nil {
		job.ProgressFunc = output.NewProgressPrinter(opts.Progress, filepath.Base(job.OutputPath)).Update
	}
	result, err := splithttp.Download(ctx, job)
	job.URL = source
	if err != nil {
		log.Error().Err(err).Msg("Download failed")
		return JobResult{Job: job, Err: err}
	}
	log.Debug().Dur("elapsed", result.Elapsed).Msg("Download completed successfully")
	return JobResult{Job: job, Result: result}
}

// Failed returns the results that carry an error.
func Failed(results []JobResult) []JobResult {
	var failed []JobResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
