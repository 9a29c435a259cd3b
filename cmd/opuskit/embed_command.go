package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"opuskit/internal/config"
	"opuskit/internal/cover"
	"opuskit/internal/deps"
	"opuskit/internal/services/ffmpeg"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string
	var coverFlag string

	cmd := &cobra.Command{
		Use:   "embed [folder]",
		Short: "Embed cover art into audio files",
		Long: `Embeds artwork into every audio file in a folder. For each track the
artwork is looked up as a same-named image first, then the conventional
cover filenames, then any image in the folder. Use --file to process a
single track, optionally with --cover as a fallback image.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileFlag == "" && coverFlag != "" {
				return errors.New("--cover requires --file")
			}
			if fileFlag == "" && len(args) == 0 {
				return errors.New("provide a folder or --file")
			}
			if fileFlag != "" && len(args) > 0 {
				return errors.New("--file and a folder argument are mutually exclusive")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := deps.Require(deps.Embedder(cfg)); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			ffmpegClient, err := ffmpeg.New(cfg.Tools.FFmpeg)
			if err != nil {
				return err
			}
			embedder := cover.NewEmbedder(ffmpegClient, cfg.Embed.CoverNames, logger)

			out := cmd.OutOrStdout()

			if fileFlag != "" {
				audioPath, err := config.ExpandPath(fileFlag)
				if err != nil {
					return err
				}
				fallback := ""
				if coverFlag != "" {
					if fallback, err = config.ExpandPath(coverFlag); err != nil {
						return err
					}
				}
				err = embedder.ProcessFile(cmd.Context(), audioPath, fallback)
				if errors.Is(err, cover.ErrNoCover) && fallback == "" && stdinIsInteractive() {
					reader := bufio.NewReader(cmd.InOrStdin())
					answer, promptErr := promptLine(reader, out, "No artwork found. Cover image path (empty to abort): ")
					if promptErr != nil {
						return promptErr
					}
					if answer == "" {
						return err
					}
					if fallback, err = config.ExpandPath(answer); err != nil {
						return err
					}
					err = embedder.ProcessFile(cmd.Context(), audioPath, fallback)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Embedded cover into %s\n", audioPath)
				return nil
			}

			folder, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			summary, err := embedder.ProcessFolder(cmd.Context(), folder)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Embedded %d, skipped %d, failed %d (of %d audio files).\n",
				summary.Processed, summary.Skipped, summary.Failed, summary.Total())
			if summary.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Embed into a single audio file instead of a folder")
	cmd.Flags().StringVar(&coverFlag, "cover", "", "Fallback cover image when no artwork is found next to --file")
	return cmd
}
