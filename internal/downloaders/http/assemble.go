package splithttp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/tanq16/splitfetch/internal/utils"
)

// assembleFile concatenates segments in index order into dest and then
// removes the segments and tempDir. Nothing is written to dest unless every
// segment is present, and a failed copy discards what was written.
func assembleFile(segments []Segment, dest *destination, tempDir string, totalSize int64) error {
	log := utils.GetLogger("assembler")
	outputPath := dest.path
	ordered := slices.Clone(segments)
	slices.SortFunc(ordered, func(a, b Segment) int {
		return a.Range.Index - b.Range.Index
	})
	for _, segment := range ordered {
		info, err := os.Stat(segment.Path)
		if err != nil {
			return &IntegrityError{Index: segment.Range.Index, Path: segment.Path, Reason: "segment file is missing", Err: err}
		}
		if !info.Mode().IsRegular() {
			return &IntegrityError{Index: segment.Range.Index, Path: segment.Path, Reason: "segment is not a regular file"}
		}
	}
	log.Debug().Int("count", len(ordered)).Str("output", outputPath).Msg("Assembling segments in order")

	destFile, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &FilesystemError{Op: "create output", Path: outputPath, Err: err}
	}
	var totalWritten int64
	for _, segment := range ordered {
		written, err := appendSegment(destFile, segment)
		if err != nil {
			destFile.Close()
			dest.discard()
			return err
		}
		totalWritten += written
	}
	if err := destFile.Close(); err != nil {
		dest.discard()
		return &FilesystemError{Op: "close output", Path: outputPath, Err: err}
	}
	if totalWritten != totalSize {
		dest.discard()
		return &IntegrityError{
			Index:  -1,
			Path:   outputPath,
			Reason: fmt.Sprintf("assembled %d bytes but resource has %d bytes", totalWritten, totalSize),
		}
	}

	for _, segment := range ordered {
		if err := os.Remove(segment.Path); err != nil {
			return &FilesystemError{Op: "remove segment", Path: segment.Path, Err: err}
		}
	}
	if err := os.Remove(tempDir); err != nil {
		return &FilesystemError{Op: "remove temp directory", Path: tempDir, Err: err}
	}
	if err := utils.RemoveIfEmpty(filepath.Dir(tempDir)); err != nil {
		log.Warn().Err(err).Str("dir", filepath.Dir(tempDir)).Msg("Could not remove shared temp root")
	}
	log.Debug().Int64("totalBytes", totalWritten).Str("outputFile", outputPath).Msg("File assembly completed")
	return nil
}

func appendSegment(dst io.Writer, segment Segment) (int64, error) {
	tempFile, err := os.Open(segment.Path)
	if err != nil {
		return 0, &IntegrityError{Index: segment.Range.Index, Path: segment.Path, Reason: "segment file is unreadable", Err: err}
	}
	defer tempFile.Close()
	written, err := io.Copy(dst, tempFile)
	if err != nil {
		return written, &IntegrityError{Index: segment.Range.Index, Path: segment.Path, Reason: "error copying segment data", Err: err}
	}
	return written, nil
}
