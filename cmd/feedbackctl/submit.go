package main

import (
	"fmt"

	"github.com/feedbackdesk/feedback-backend/models/feedback"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/spf13/cobra"
)

func newValidateCmd(g *globals) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a draft against the current form configuration without submitting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft types.Draft
			if err := readYAMLFile(file, &draft); err != nil {
				return err
			}

			cfg, err := g.client().GetFormConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch form configuration: %w", err)
			}

			if errs := feedback.Validate(draft, cfg.Roster, cfg.Capabilities); !errs.Empty() {
				return errs
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Draft is valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Draft YAML file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSubmitCmd(g *globals) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate and submit a draft, then request the confirmation email",
		RunE: func(cmd *cobra.Command, args []string) error {
			var draft types.Draft
			if err := readYAMLFile(file, &draft); err != nil {
				return err
			}

			c := g.client()
			cfg, err := c.GetFormConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch form configuration: %w", err)
			}

			result, err := c.SubmitFeedback(cmd.Context(), draft, cfg.Roster, cfg.Capabilities)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Feedback submitted (id %s)\n", result.Record.ID)
			if result.EmailErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: confirmation email was not sent: %s\n", describe(result.EmailErr))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Draft YAML file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
