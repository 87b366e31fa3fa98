package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/JonMunkholm/reorganizer/internal/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// app carries what every subcommand shares.
type app struct {
	fs     afero.Fs
	now    func() time.Time
	logger *slog.Logger
}

// newRootCommand creates the root command. Subcommands read and write
// through fs and use now to render {date} in output names.
func newRootCommand(fs afero.Fs, now func() time.Time) *cobra.Command {
	a := &app{fs: fs, now: now}

	rootCmd := &cobra.Command{
		Use:           "reorganize",
		Short:         "Reorganize CSV files with campaign column rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			a.logger = logging.New(cmd.ErrOrStderr(), level, "text")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringP("campaign", "c", "campaign.yaml", "Path to campaign file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		a.transformCommand(),
		a.validateCommand(),
	)

	return rootCmd
}

// loadCampaign reads and validates the campaign named by the --campaign flag.
// JSON is a subset of YAML, so both formats decode here.
func (a *app) loadCampaign(cmd *cobra.Command) (core.Campaign, error) {
	path, err := cmd.Flags().GetString("campaign")
	if err != nil {
		return core.Campaign{}, fmt.Errorf("campaign flag error: %w", err)
	}

	raw, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return core.Campaign{}, fmt.Errorf("read campaign: %w", err)
	}

	var c core.Campaign
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return core.Campaign{}, fmt.Errorf("decode campaign %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return core.Campaign{}, err
	}

	a.logger.Debug("campaign loaded", "path", path, "name", c.Name, "fields", len(c.Fields))
	return c, nil
}

// readInput reads the --in file.
func (a *app) readInput(cmd *cobra.Command) (string, []byte, error) {
	in, err := cmd.Flags().GetString("in")
	if err != nil {
		return "", nil, fmt.Errorf("in flag error: %w", err)
	}

	raw, err := afero.ReadFile(a.fs, in)
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return in, raw, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
