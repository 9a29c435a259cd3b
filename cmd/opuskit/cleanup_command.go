package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"opuskit/internal/cleanup"
	"opuskit/internal/config"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var allFlag bool
	var matchedFlag bool
	var dryRunFlag bool
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "cleanup [folder]",
		Short: "Delete leftover image files from a music folder",
		Long: `Scans a folder, splits its files into audio and images, and deletes
images either wholesale or only where an image name overlaps an audio
filename. Without mode flags an interactive menu is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if allFlag && matchedFlag {
				return errors.New("--all and --matched are mutually exclusive")
			}

			folder := "."
			if len(args) == 1 {
				folder = args[0]
			}
			folder, err := config.ExpandPath(folder)
			if err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			cleaner := cleanup.New(logger)

			plan, err := cleaner.Scan(folder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %s: %d audio files, %d images, %d matched\n",
				folder, len(plan.Audio), len(plan.Images), len(plan.Matched))
			if len(plan.Images) == 0 {
				fmt.Fprintln(out, "Nothing to clean up.")
				return nil
			}

			mode := cleanup.ModeAll
			switch {
			case matchedFlag:
				mode = cleanup.ModeMatched
			case allFlag:
				mode = cleanup.ModeAll
			case dryRunFlag:
				// Dry run without a mode flag previews the full deletion.
			default:
				if !stdinIsInteractive() {
					return errors.New("not a terminal: specify --all, --matched, or --dry-run")
				}
				choice, err := runCleanupMenu(cmd, plan)
				if err != nil {
					return err
				}
				switch choice {
				case "a":
					mode = cleanup.ModeAll
				case "m":
					mode = cleanup.ModeMatched
				case "d":
					dryRunFlag = true
				case "c":
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			targets := plan.Targets(mode)
			if len(targets) == 0 {
				fmt.Fprintln(out, "No images selected for deletion.")
				return nil
			}

			if dryRunFlag {
				fmt.Fprintln(out, renderCleanupTargets(plan, mode))
				fmt.Fprintf(out, "Dry run: %d image(s) would be deleted.\n", len(targets))
				return nil
			}

			if !yesFlag {
				if !stdinIsInteractive() {
					return errors.New("refusing to delete without --yes on a non-interactive run")
				}
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, err := promptChoice(reader, out,
					fmt.Sprintf("Delete %d image(s)? [y/n]: ", len(targets)), "y", "n")
				if err != nil {
					return err
				}
				if answer == "n" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			summary := cleaner.Delete(plan, mode)
			fmt.Fprintf(out, "Deleted %d image(s), %d error(s); %d image(s) remain.\n",
				summary.Deleted, summary.Errors, len(plan.Images)-summary.Deleted)
			if summary.Errors > 0 {
				return fmt.Errorf("%d image(s) could not be deleted", summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "Delete every image in the folder")
	cmd.Flags().BoolVar(&matchedFlag, "matched", false, "Delete only images matching an audio filename")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "List what would be deleted without deleting")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runCleanupMenu(cmd *cobra.Command, plan cleanup.Plan) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderCleanupTargets(plan, cleanup.ModeAll))
	fmt.Fprintln(out, "  [a] delete all images")
	fmt.Fprintf(out, "  [m] delete matched images only (%d)\n", len(plan.Matched))
	fmt.Fprintln(out, "  [d] dry run")
	fmt.Fprintln(out, "  [c] cancel")
	reader := bufio.NewReader(cmd.InOrStdin())
	return promptChoice(reader, out, "Choice: ", "a", "m", "d", "c")
}

func renderCleanupTargets(plan cleanup.Plan, mode cleanup.Mode) string {
	matchByImage := make(map[string]string, len(plan.Matched))
	for _, pair := range plan.Matched {
		matchByImage[pair.Image] = pair.Audio
	}

	rows := make([][]string, 0, len(plan.Images))
	for _, name := range plan.Targets(mode) {
		match := matchByImage[name]
		if match == "" {
			match = "-"
		}
		rows = append(rows, []string{name, match, strconv.FormatFloat(imageSizeMiB(plan.Dir, name), 'f', 1, 64)})
	}
	return renderTable(
		[]string{"Image", "Matches Audio", "MiB"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func imageSizeMiB(dir, name string) float64 {
	info, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}
