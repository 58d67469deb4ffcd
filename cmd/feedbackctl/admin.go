package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/feedbackdesk/feedback-backend/client"
	"github.com/feedbackdesk/feedback-backend/types"
	"github.com/spf13/cobra"
)

func newLoginCmd(g *globals) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an administrator and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FEEDBACKCTL_PASSWORD")
			}
			if password == "" {
				p, err := promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			resp, err := g.client().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s until %s\n", email, formatTime(resp.ExpiresAt))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Password (defaults to $FEEDBACKCTL_PASSWORD, then a prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.client().Logout()
		},
	}
}

func newLookupCmd(g *globals) *cobra.Command {
	var email string
	var local, asJSON bool
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show the feedback submitted with an exact email",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec *types.FeedbackRecord
			var found bool
			if local {
				snap, err := g.client().Snapshot(cmd.Context(), time.Local)
				if err != nil {
					return err
				}
				rec, found = snap.FindByEmail(email)
			} else {
				var err error
				rec, found, err = g.client().FindByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
			}
			if !found {
				fmt.Fprintf(cmd.OutOrStdout(), "No feedback found for %s\n", email)
				return nil
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			printRecord(cmd.OutOrStdout(), *rec)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Submitter email")
	cmd.Flags().BoolVar(&local, "local", false, "Fetch all records once and search them here")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw record")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func printRecord(w io.Writer, rec types.FeedbackRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", rec.ID)
	fmt.Fprintf(tw, "Submitted\t%s\n", formatTime(rec.CreatedAt))
	fmt.Fprintf(tw, "From\t%s <%s>\n", rec.FullName(), rec.Email)
	fmt.Fprintf(tw, "Organization\t%s\n", rec.OrganizationName)
	fmt.Fprintf(tw, "Services\t%s\n", strings.Join(rec.Services, ", "))
	for _, name := range rec.Individuals {
		fmt.Fprintf(tw, "%s\t%s\n", name, ratingsFor(rec, name))
	}
	for _, e := range client.FeedbackByIndividual(rec) {
		label := "Feedback"
		if e.Key != "" {
			label = "Feedback for " + e.Key
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, e.Value)
	}
	fmt.Fprintf(tw, "Recommend\t%s\n", rec.Recommend)
	_ = tw.Flush()
}

func ratingsFor(rec types.FeedbackRecord, name string) string {
	parts := make([]string, 0, len(types.RatingDimensions))
	for _, dim := range types.RatingDimensions {
		if v, ok := rec.Rating(dim).Get(name); ok {
			parts = append(parts, fmt.Sprintf("%s %d", dim.Label(), v))
		}
	}
	return strings.Join(parts, ", ")
}

func newSuggestCmd(g *globals) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "suggest <partial-email>",
		Short: "List submitter emails containing the given text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var emails []string
			if local {
				snap, err := g.client().Snapshot(cmd.Context(), time.Local)
				if err != nil {
					return err
				}
				emails = snap.SuggestEmails(args[0])
			} else {
				var err error
				emails, err = g.client().SuggestEmails(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}
			for _, e := range emails {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Fetch all records once and search them here")
	return cmd
}

func newRangeCmd(g *globals) *cobra.Command {
	var start, end string
	var local bool
	cmd := &cobra.Command{
		Use:   "range",
		Short: "List feedback submitted between two days, inclusive",
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []types.FeedbackRecord
			if local {
				snap, err := g.client().Snapshot(cmd.Context(), time.Local)
				if err != nil {
					return err
				}
				if records, err = snap.ByDateRange(start, end); err != nil {
					return err
				}
			} else {
				var err error
				records, err = g.client().FeedbackByDateRange(cmd.Context(), start, end)
				if err != nil {
					return err
				}
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD")
	cmd.Flags().BoolVar(&local, "local", false, "Filter by days in the local time zone instead of the server's")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func printRecords(w io.Writer, records []types.FeedbackRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tEMAIL\tNAME\tRECOMMEND")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, formatTime(r.CreatedAt), r.Email, r.FullName(), r.Recommend)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d record(s)\n", len(records))
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show recommendation counts and per-individual averages",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := g.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newExportCmd(g *globals) *cobra.Command {
	var start, end, output string
	var upload bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download feedback as CSV, or store it server-side with --upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := g.client()
			if upload {
				resp, err := c.UploadExport(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			n, err := c.Export(cmd.Context(), start, end, w)
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD (optional)")
	cmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD (optional)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Store the export server-side and print its link")
	return cmd
}

func newPasswordCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the administrator password",
	}

	var current, next string
	change := &cobra.Command{
		Use:   "change",
		Short: "Change the password of the logged in administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.client().ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		},
	}
	change.Flags().StringVar(&current, "current", "", "Current password")
	change.Flags().StringVar(&next, "new", "", "New password, at least 8 characters")
	_ = change.MarkFlagRequired("current")
	_ = change.MarkFlagRequired("new")

	cmd.AddCommand(change)
	return cmd
}
