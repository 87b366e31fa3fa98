package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// transformCommand creates the transform command.
func (a *app) transformCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform a CSV file",
		Long: "Transform a CSV file with the campaign's rules. Without --out the result " +
			"is written next to the input using the campaign's output filename template. " +
			"Use --out - to write to stdout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCampaign(cmd)
			if err != nil {
				return err
			}
			in, raw, err := a.readInput(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			data, stats, err := core.TransformCSV(raw, c.Config())
			if err != nil {
				return fmt.Errorf("transform %s: %w", in, err)
			}

			out, _ := cmd.Flags().GetString("out")
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if out == "" {
				out = filepath.Join(filepath.Dir(in), c.OutputFilename(filepath.Base(in), a.now()))
			}

			if err := afero.WriteFile(a.fs, out, data, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			a.logger.Info("file transformed",
				"input", in,
				"output", out,
				"rows", stats.Rows,
				"rules_applied", stats.RulesApplied,
				"rules_skipped", stats.RulesSkipped,
				"duration", time.Since(start),
			)
			printf(cmd.OutOrStdout(), "wrote %s (%d rows, %d columns)\n", out, stats.Rows, stats.Columns)
			return nil
		},
	}

	cmd.Flags().StringP("in", "i", "", "Input CSV file")
	cmd.Flags().StringP("out", "o", "", "Output file (default: derived from the campaign template)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
