package splithttp

import "fmt"

// SizeError reports an unusable or unobtainable content length.
type SizeError struct {
	URL        string
	Size       int64 // declared length, when the server sent one
	StatusCode int   // HTTP status, if the probe got a non-success response
	Reason     string
	Err        error
}

func (e *SizeError) Error() string {
	msg := fmt.Sprintf("size error for %s: %s", e.URL, e.Reason)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *SizeError) Unwrap() error {
	return e.Err
}

// PlanningError is returned when the size cannot be split into at least one
// byte per worker.
type PlanningError struct {
	Size    int64
	Workers int
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning error: %d bytes cannot be split across %d workers", e.Size, e.Workers)
}

// FilesystemError covers directory/file creation and deletion failures.
type FilesystemError struct {
	Op   string // e.g. "create directory", "remove segment"
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error during %s on %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// NetworkError covers exhausted reconnects, connection failures and
// unexpected statuses on range requests.
type NetworkError struct {
	URL        string
	Attempts   int
	StatusCode int
	Reason     string
	Err        error
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("network error for %s after %d attempt(s): %s", e.URL, e.Attempts, e.Reason)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IntegrityError reports a segment that is missing, unreadable or of the
// wrong length.
type IntegrityError struct {
	Index  int
	Path   string
	Reason string
	Err    error
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("integrity error for segment %d (%s): %s", e.Index, e.Path, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}
