package splithttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/tanq16/splitfetch/internal/utils"
)

// Segment is the temp file holding one range's bytes.
type Segment struct {
	Range   Range
	Path    string
	Written int64
}

type WorkerOutcome struct {
	Completed bool
	Err       error
}

type rangeWorker struct {
	client     utils.HTTPDoer
	url        string
	reconnects int
	totalSize  int64
	progress   *ProgressCounter
}

// chunkedDownload fetches one segment and records the result in outcome. A
// failure is logged here and never leaves a segment file behind.
func (w *rangeWorker) chunkedDownload(ctx context.Context, segment *Segment, outcome *WorkerOutcome, wg *sync.WaitGroup) {
	defer wg.Done()
	log := utils.GetLogger("worker").With().Int("chunkId", segment.Range.Index).Logger()
	log.Debug().Str("range", segment.Range.Header()).Str("file", segment.Path).Msg("Starting range download")
	if err := w.downloadSegment(ctx, segment); err != nil {
		os.Remove(segment.Path)
		outcome.Err = err
		log.Error().Err(err).Msg("Failed to download range")
		return
	}
	outcome.Completed = true
	log.Debug().Int64("bytes", segment.Written).Msg("Range download completed")
}

func (w *rangeWorker) downloadSegment(ctx context.Context, segment *Segment) error {
	expected := segment.Range.ExpectedLength(w.totalSize)
	if expected == 0 {
		// range starts past the last byte, nothing to request
		return createEmptySegment(segment)
	}
	resp, err := getWithReconnects(ctx, w.client, w.url, w.reconnects, func(req *http.Request) {
		req.Header.Set("Range", segment.Range.Header())
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	wholeResource := segment.Range.FirstByte == 0 && expected == w.totalSize
	if resp.StatusCode != http.StatusPartialContent && !(resp.StatusCode == http.StatusOK && wholeResource) {
		return &NetworkError{URL: w.url, Attempts: 1, StatusCode: resp.StatusCode, Reason: "unexpected response to range request"}
	}

	tempFile, err := os.OpenFile(segment.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &FilesystemError{Op: "create segment", Path: segment.Path, Err: err}
	}
	written, copyErr := copyChunks(ctx, tempFile, resp.Body, w.progress)
	if err := tempFile.Close(); err != nil && copyErr == nil {
		copyErr = &FilesystemError{Op: "close segment", Path: segment.Path, Err: err}
	}
	if copyErr != nil {
		return copyErr
	}
	if written != expected {
		return &IntegrityError{
			Index:  segment.Range.Index,
			Path:   segment.Path,
			Reason: fmt.Sprintf("size mismatch: expected %d bytes, got %d bytes", expected, written),
		}
	}
	segment.Written = written
	return nil
}

// copyChunks streams body into dst in DefaultBufferSize reads, checking ctx
// before every read and adding each chunk to progress.
func copyChunks(ctx context.Context, dst io.Writer, body io.Reader, progress *ProgressCounter) (int64, error) {
	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			if _, err := dst.Write(buffer[:bytesRead]); err != nil {
				return written, fmt.Errorf("error writing segment: %w", err)
			}
			written += int64(bytesRead)
			progress.Add(int64(bytesRead))
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("error reading response body: %w", readErr)
		}
	}
}

func createEmptySegment(segment *Segment) error {
	tempFile, err := os.Create(segment.Path)
	if err != nil {
		return &FilesystemError{Op: "create segment", Path: segment.Path, Err: err}
	}
	if err := tempFile.Close(); err != nil {
		return &FilesystemError{Op: "close segment", Path: segment.Path, Err: err}
	}
	return nil
}
