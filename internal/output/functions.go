package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// ProgressLine renders the "downloaded/total KB" progress format.
func ProgressLine(label string, downloaded, total int64) string {
	line := fmt.Sprintf("%d/%d KB", downloaded/1024, total/1024)
	if label != "" {
		line = fmt.Sprintf("%s %s %s", label, StyleSymbols["arrow"], line)
	}
	return line
}

// ProgressPrinter writes one progress line per update. Lines from several
// printers on the same writer may interleave.
type ProgressPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	label  string
	styled bool
}

func NewProgressPrinter(out io.Writer, label string) *ProgressPrinter {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &ProgressPrinter{out: out, label: label, styled: styled}
}

func (p *ProgressPrinter) Update(downloaded, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := ProgressLine(p.label, downloaded, total)
	if p.styled {
		line = FDebug(line)
	}
	fmt.Fprintln(p.out, line)
}

type Report struct {
	OutputPath  string
	TotalSize   int64
	Elapsed     time.Duration
	Connections int
	CPUs        int
}

func RenderReport(r Report) []string {
	return []string{
		fmt.Sprintf("%s Downloaded %s (%s)", StyleSymbols["pass"], r.OutputPath, humanize.Bytes(uint64(r.TotalSize))),
		fmt.Sprintf("Download time: %.3f sec.", r.Elapsed.Seconds()),
		fmt.Sprintf("Workers used: %d", r.Connections),
		fmt.Sprintf("Logical processors: %d", r.CPUs),
	}
}

func PrintReport(r Report) {
	lines := RenderReport(r)
	PrintSuccess(lines[0])
	for _, line := range lines[1:] {
		PrintDetail(line)
	}
}
