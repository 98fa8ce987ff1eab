package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tanq16/splitfetch/internal/output"
	"github.com/tanq16/splitfetch/internal/scheduler"
	"github.com/tanq16/splitfetch/internal/utils"
)

var debug bool

var SplitfetchVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "splitfetch [WORKERS]",
	Short:   "Splitfetch downloads a file over parallel HTTP range requests",
	Version: SplitfetchVersion,
	Args:    cobra.MaximumNArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		connections, err := parseWorkerCount(args)
		if err != nil {
			output.PrintError(err.Error())
			os.Exit(1)
		}
		job := utils.DownloadJob{
			URL:              utils.DefaultSourceURL,
			OutputPath:       utils.DefaultOutputPath,
			Connections:      connections,
			Reconnects:       utils.DefaultReconnects,
			HTTPClientConfig: utils.HTTPClientConfig{UserAgent: utils.DefaultUserAgent},
		}
		results := scheduler.Run(cmd.Context(), []utils.DownloadJob{job}, scheduler.Options{Parallel: 1, Progress: os.Stdout})
		if err := results[0].Err; err != nil {
			output.PrintError(fmt.Sprintf("Download failed: %v", err))
			os.Exit(1)
		}
		printResult(results[0])
	},
}

// parseWorkerCount reads the optional positional worker count. A missing
// value means one worker; a malformed one is an input error.
func parseWorkerCount(args []string) (int, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("worker count must be an integer, got %q", args[0])
	}
	return n, nil
}

func printResult(r scheduler.JobResult) {
	output.PrintReport(output.Report{
		OutputPath:  r.Result.OutputPath,
		TotalSize:   r.Result.TotalSize,
		Elapsed:     r.Result.Elapsed,
		Connections: r.Result.Connections,
		CPUs:        runtime.NumCPU(),
	})
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCleanCmd())
}
