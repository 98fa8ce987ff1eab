package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/splitfetch/internal/output"
	"github.com/tanq16/splitfetch/internal/scheduler"
	"github.com/tanq16/splitfetch/internal/utils"
	"gopkg.in/yaml.v3"
)

type batchOptions struct {
	parallel    int
	connections int
	reconnects  int
	timeout     time.Duration
	kaTimeout   time.Duration
	userAgent   string
	proxyURL    string
	headers     []string
	s3Profile   string
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download every entry of a YAML job list",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := readBatchFile(args[0])
			if err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}
			jobs := buildJobsFromBatch(entries, opts)
			if len(jobs) == 0 {
				output.PrintError("No valid jobs found in the batch file")
				os.Exit(1)
			}
			results := scheduler.Run(cmd.Context(), jobs, scheduler.Options{
				Parallel:  opts.parallel,
				S3Profile: opts.s3Profile,
				Progress:  os.Stdout,
			})
			for _, r := range results {
				if r.Err == nil {
					printResult(r)
				}
			}
			if failed := scheduler.Failed(results); len(failed) > 0 {
				for _, r := range failed {
					output.PrintError(fmt.Sprintf("%s %s: %v", output.StyleSymbols["fail"], r.Job.OutputPath, r.Err))
				}
				output.PrintError(fmt.Sprintf("%d of %d downloads failed", len(failed), len(results)))
				os.Exit(1)
			}
			output.PrintInfo(fmt.Sprintf("%s %d downloads completed", output.StyleSymbols["info"], len(results)))
		},
	}
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 1, "Number of files to download at the same time")
	cmd.Flags().IntVarP(&opts.connections, "connections", "c", 4, "Default number of range workers per file")
	cmd.Flags().IntVarP(&opts.reconnects, "reconnects", "r", utils.DefaultReconnects, "Default reconnect limit on redirect responses")
	cmd.Flags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Whole-request timeout (eg. 5m), 0 disables it")
	cmd.Flags().DurationVarP(&opts.kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client")
	cmd.Flags().StringVarP(&opts.userAgent, "user-agent", "a", utils.DefaultUserAgent, "User agent (\"randomize\" picks one per job)")
	cmd.Flags().StringVar(&opts.proxyURL, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", []string{}, "Custom headers (like 'X-Key: value'); can be specified multiple times")
	cmd.Flags().StringVar(&opts.s3Profile, "s3-profile", "", "AWS profile used for s3:// links")
	return cmd
}

func readBatchFile(yamlFile string) ([]utils.DownloadEntry, error) {
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var entries []utils.DownloadEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %w", err)
	}
	return entries, nil
}

func buildJobsFromBatch(entries []utils.DownloadEntry, opts batchOptions) []utils.DownloadJob {
	headers := utils.ParseHeaderArgs(opts.headers)
	var jobs []utils.DownloadJob
	for i, entry := range entries {
		if entry.URL == "" {
			output.PrintWarning(fmt.Sprintf("%s Entry %d has an empty link, skipping", output.StyleSymbols["warning"], i+1))
			continue
		}
		userAgent := opts.userAgent
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		job := utils.DownloadJob{
			URL:         entry.URL,
			OutputPath:  entry.OutputPath,
			Connections: opts.connections,
			Reconnects:  opts.reconnects,
			HTTPClientConfig: utils.HTTPClientConfig{
				Timeout:     opts.timeout,
				KATimeout:   opts.kaTimeout,
				ProxyURL:    opts.proxyURL,
				UserAgent:   userAgent,
				BearerToken: entry.Token,
				Headers:     headers,
			},
		}
		if entry.Connections > 0 {
			job.Connections = entry.Connections
		}
		if entry.Reconnects > 0 {
			job.Reconnects = entry.Reconnects
		}
		if job.OutputPath == "" {
			job.OutputPath = outputNameFromURL(entry.URL)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func outputNameFromURL(link string) string {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return "download"
	}
	name := path.Base(parsedURL.Path)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}
