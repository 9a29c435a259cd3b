package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"opuskit/internal/config"
	"opuskit/internal/deps"
	"opuskit/internal/faillog"
	"opuskit/internal/fetch"
	"opuskit/internal/history"
	"opuskit/internal/services/ffmpeg"
	"opuskit/internal/services/ytdlp"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string
	var retryFlag bool

	cmd := &cobra.Command{
		Use:   "fetch [url...]",
		Short: "Download YouTube Music tracks and playlists as tagged Opus files",
		Long: `Downloads the given URLs into the configured output folder. Playlist
URLs are expanded into a subfolder named after the playlist. Without
arguments an interactive prompt reads URLs until 'exit'; the keywords
'failed' and 'retry' inspect and replay the failure log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := append([]string{}, args...)
			if fileFlag != "" {
				fromFile, err := readURLFile(fileFlag)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}

			return withFetcher(ctx, cmd, func(fetcher *fetch.Fetcher) error {
				if retryFlag {
					summary, err := fetcher.Retry(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Retried %d URL(s): %d succeeded, %d failed again.\n",
						summary.Attempted, summary.Succeeded, summary.Failed)
					if len(urls) == 0 {
						return nil
					}
				}
				if len(urls) == 0 {
					if !stdinIsInteractive() {
						return errors.New("no URLs given: pass arguments, --file, or run interactively")
					}
					return runInteractiveFetch(cmd, fetcher)
				}
				for _, url := range urls {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					if err := fetcher.ProcessURL(cmd.Context(), url); err != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "Failed: %s (%v)\n", url, err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read URLs from a file, one per line")
	cmd.Flags().BoolVar(&retryFlag, "retry", false, "Replay the failure log before processing any URLs")

	cmd.AddCommand(newFetchRetryCommand(ctx))
	cmd.AddCommand(newFetchHistoryCommand(ctx))
	return cmd
}

func newFetchRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Re-attempt every URL in the failure log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFetcher(ctx, cmd, func(fetcher *fetch.Fetcher) error {
				summary, err := fetcher.Retry(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if summary.Attempted == 0 {
					fmt.Fprintln(out, "Failure log is empty; nothing to retry.")
					return nil
				}
				fmt.Fprintf(out, "Retried %d URL(s): %d succeeded, %d failed again.\n",
					summary.Attempted, summary.Succeeded, summary.Failed)
				return nil
			})
		},
	}
}

func newFetchHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently archived downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.ArchivePath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No archived downloads yet.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CompletedAt.Local().Format("2006-01-02 15:04"),
					entry.Title,
					entry.Artist,
					entry.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Completed", "Title", "Artist", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

// withFetcher assembles the download pipeline, holds the session lock for
// the duration of fn, and prints a failure report afterwards.
func withFetcher(ctx *commandContext, cmd *cobra.Command, fn func(*fetch.Fetcher) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := deps.Require(deps.Fetcher(cfg)); err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	ytdlpClient, err := ytdlp.New(cfg.Tools.YtDlp)
	if err != nil {
		return err
	}
	ffmpegClient, err := ffmpeg.New(cfg.Tools.FFmpeg)
	if err != nil {
		return err
	}

	session := fetch.NewSession(cfg.FailLogPath(), cfg.LockPath())
	if err := session.Acquire(); err != nil {
		return err
	}
	defer session.Release()

	var archive *history.Store
	if cfg.Fetch.ArchiveEnabled {
		archive, err = history.Open(cfg.ArchivePath())
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	out := cmd.OutOrStdout()
	fetcher := fetch.New(cfg, ytdlpClient, ffmpegClient, session, archive, logger, out)
	if err := fetcher.CheckFreeSpace(); err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	}

	runErr := fn(fetcher)
	reportFailures(out, session)
	return runErr
}

const interactiveBannerRule = "=================================================="

func printFetchBanner(out io.Writer) {
	fmt.Fprintln(out, interactiveBannerRule)
	fmt.Fprintln(out, "opuskit fetch - interactive mode")
	fmt.Fprintln(out, interactiveBannerRule)
	fmt.Fprintln(out, "Paste a track, playlist, or album URL to download it.")
	fmt.Fprintln(out, "Keywords:")
	fmt.Fprintln(out, "  exit    quit the session")
	fmt.Fprintln(out, "  failed  show this session's failed downloads")
	fmt.Fprintln(out, "  retry   replay every URL in the failure log")
	fmt.Fprintln(out, interactiveBannerRule)
}

func runInteractiveFetch(cmd *cobra.Command, fetcher *fetch.Fetcher) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	printFetchBanner(out)

	for {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		line, err := promptLine(reader, out, "> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		case "failed":
			if failures := fetcher.Session().Failures(); len(failures) == 0 {
				fmt.Fprintln(out, "No failures this session.")
			} else {
				fmt.Fprintln(out, renderFailureTable(failures))
			}
			continue
		case "retry":
			summary, err := fetcher.Retry(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Retry failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Retried %d URL(s): %d succeeded, %d failed again.\n",
				summary.Attempted, summary.Succeeded, summary.Failed)
			continue
		}

		if err := fetcher.ProcessURL(cmd.Context(), line); err != nil {
			fmt.Fprintf(out, "Failed: %v\n", err)
		}
	}
}

func reportFailures(out io.Writer, session *fetch.Session) {
	failures := session.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(out, renderFailureTable(failures))
	fmt.Fprintf(out, "%d download(s) failed; details in %s (run `opuskit fetch retry` to replay).\n",
		len(failures), session.FailLogPath())
}

func renderFailureTable(failures []faillog.Record) string {
	rows := make([][]string, 0, len(failures))
	for _, rec := range failures {
		rows = append(rows, []string{rec.Title, rec.Artist, truncateCell(rec.Error, 60)})
	}
	return renderTable(
		[]string{"Title", "Artist", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	)
}

// truncateCell shortens long cell text on rune boundaries so multi-byte
// characters in error messages never get split.
func truncateCell(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}

// readURLFile reads one URL per line, skipping blanks and '#' comments.
func readURLFile(path string) ([]string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}
