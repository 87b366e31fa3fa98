package main

import (
	"fmt"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/spf13/cobra"
)

// validateCommand creates the validate command.
func (a *app) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a CSV file against a campaign",
		Long:  "Check that a CSV file parses and has every column the campaign configures. Nothing is written.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCampaign(cmd)
			if err != nil {
				return err
			}
			in, raw, err := a.readInput(cmd)
			if err != nil {
				return err
			}

			table, err := core.ParseBytes(raw)
			if err != nil {
				return fmt.Errorf("parse %s: %w", in, err)
			}
			if missing := c.Config().Missing(table); len(missing) > 0 {
				return &core.ValidationError{MissingColumns: missing}
			}

			printf(cmd.OutOrStdout(), "%s: ok (%d rows, %d columns, campaign %q)\n",
				in, table.RowCount(), len(table.Columns()), c.Name)
			return nil
		},
	}

	cmd.Flags().StringP("in", "i", "", "Input CSV file")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
